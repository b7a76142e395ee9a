package config

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/tmp/trackcut", cfg.TempDir)
	assert.Equal(t, "tracks", cfg.OutputDir)
	assert.Equal(t, "ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, "ffprobe", cfg.FFprobePath)
	assert.Equal(t, 3, cfg.MaxConcurrentProbes)
	assert.Equal(t, 500, cfg.MinSilenceMs)
	assert.InDelta(t, -30, cfg.SilenceThreshDB, 1e-9)
	assert.InDelta(t, 60, cfg.MinTrackSec, 1e-9)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("TEMP_DIR", "/custom/temp")
	t.Setenv("OUTPUT_DIR", "/custom/tracks")
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("MAX_CONCURRENT_PROBES", "5")
	t.Setenv("MIN_SILENCE_MS", "750")
	t.Setenv("SILENCE_THRESH_DB", "-40")
	t.Setenv("MIN_TRACK_SEC", "90")
	t.Setenv("TRACKLIST_API_KEY", "list-key")
	t.Setenv("S3_BUCKET", "my-bucket")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-key")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "/custom/temp", cfg.TempDir)
	assert.Equal(t, "/custom/tracks", cfg.OutputDir)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.Equal(t, 5, cfg.MaxConcurrentProbes)
	assert.Equal(t, 750, cfg.MinSilenceMs)
	assert.InDelta(t, -40, cfg.SilenceThreshDB, 1e-9)
	assert.InDelta(t, 90, cfg.MinTrackSec, 1e-9)
	assert.Equal(t, "list-key", cfg.TracklistAPIKey)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidIntegerDefaults(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("MIN_SILENCE_MS", "invalid")

	// go-envconfig returns an error when parsing fails
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsBadProcessingSettings(t *testing.T) {
	t.Run("non-positive MIN_TRACK_SEC", func(t *testing.T) {
		t.Setenv("MIN_TRACK_SEC", "0")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidMinTrack)
	})

	t.Run("non-positive MIN_SILENCE_MS", func(t *testing.T) {
		t.Setenv("MIN_SILENCE_MS", "-10")

		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidMinSilence)
	})
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		TempDir:            "/tmp/test",
		OutputDir:          "tracks",
		FFmpegPath:         "ffmpeg",
		MinTrackSec:        60,
		TracklistAPIKey:    "secret-key",
		AWSSecretAccessKey: "aws-secret",
		S3Bucket:           "bucket",
		S3Region:           "region",
		LogFormat:          "json",
		LogLevel:           "info",
	}

	str := cfg.String()

	// Should contain non-sensitive values
	assert.Contains(t, str, "8080")
	assert.Contains(t, str, "/tmp/test")
	assert.Contains(t, str, "bucket")

	// Should NOT contain sensitive values
	assert.NotContains(t, str, "secret-key")
	assert.NotContains(t, str, "aws-secret")
}

func TestConfig_NewLogger_JSON(t *testing.T) {
	cfg := &Config{
		LogFormat: "json",
		LogLevel:  "info",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)

	// Capture output to verify it's JSON
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	testLogger := slog.New(handler)
	testLogger.Info("test message")

	// Should have JSON structure
	assert.Contains(t, buf.String(), `"msg"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestConfig_NewLogger_Text(t *testing.T) {
	cfg := &Config{
		LogFormat: "text",
		LogLevel:  "debug",
	}

	logger := cfg.NewLogger()
	require.NotNil(t, logger)
	// Just verify it returns a valid logger
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo}, // defaults to info
		{"", slog.LevelInfo},        // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{MinTrackSec: 60, MinSilenceMs: 500}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad min track", func(t *testing.T) {
		cfg := &Config{MinTrackSec: -1, MinSilenceMs: 500}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidMinTrack)
	})

	t.Run("bad min silence", func(t *testing.T) {
		cfg := &Config{MinTrackSec: 60, MinSilenceMs: 0}
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidMinSilence)
	})
}
