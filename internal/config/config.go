// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrInvalidMinTrack is returned when MIN_TRACK_SEC is not positive.
	ErrInvalidMinTrack = errors.New("config: MIN_TRACK_SEC must be positive")
	// ErrInvalidMinSilence is returned when MIN_SILENCE_MS is not positive.
	ErrInvalidMinSilence = errors.New("config: MIN_SILENCE_MS must be positive")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Storage settings
	TempDir   string `env:"TEMP_DIR, default=/tmp/trackcut" json:"temp_dir"`
	OutputDir string `env:"OUTPUT_DIR, default=tracks" json:"output_dir"`

	// ffmpeg settings
	FFmpegPath  string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	FFprobePath string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path"`

	// Processing settings
	MaxConcurrentProbes int     `env:"MAX_CONCURRENT_PROBES, default=3" json:"max_concurrent_probes"`
	MinSilenceMs        int     `env:"MIN_SILENCE_MS, default=500" json:"min_silence_ms"`
	SilenceThreshDB     float64 `env:"SILENCE_THRESH_DB, default=-30" json:"silence_thresh_db"`
	MinTrackSec         float64 `env:"MIN_TRACK_SEC, default=60" json:"min_track_sec"`

	// Track list service settings
	TracklistAPIKey string `env:"TRACKLIST_API_KEY" json:"-"` // Masked in JSON

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the processing settings are usable.
func (c *Config) Validate() error {
	if c.MinTrackSec <= 0 {
		return ErrInvalidMinTrack
	}
	if c.MinSilenceMs <= 0 {
		return ErrInvalidMinSilence
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TempDir: %s, OutputDir: %s, FFmpegPath: %s, MaxConcurrentProbes: %d, MinSilenceMs: %d, SilenceThreshDB: %.1f, MinTrackSec: %.1f, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TempDir,
		c.OutputDir,
		c.FFmpegPath,
		c.MaxConcurrentProbes,
		c.MinSilenceMs,
		c.SilenceThreshDB,
		c.MinTrackSec,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
