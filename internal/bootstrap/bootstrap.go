// Package bootstrap provides dependency initialization for the trackcut API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/soundclash/trackcut-api/internal/archive"
	"github.com/soundclash/trackcut-api/internal/config"
	"github.com/soundclash/trackcut-api/internal/cutter"
	"github.com/soundclash/trackcut-api/internal/job"
	"github.com/soundclash/trackcut-api/internal/probe"
	"github.com/soundclash/trackcut-api/internal/storage"
	"github.com/soundclash/trackcut-api/internal/tracklist"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	SplitService *job.SplitService
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	prober := probe.NewFFmpegProber(cfg.FFmpegPath, cfg.FFprobePath)
	cut := cutter.NewFFmpegCutter(cfg.FFmpegPath)
	fetcher := archive.NewFetcher(nil)

	var listOpts []tracklist.ClientOption
	if cfg.TracklistAPIKey != "" {
		listOpts = append(listOpts, tracklist.WithAPIKey(cfg.TracklistAPIKey))
	}
	lists := tracklist.NewClient(listOpts...)

	repo := job.NewMemoryRepository()

	svc := job.NewSplitService(
		repo,
		store,
		prober,
		cut,
		job.WithLogger(logger),
		job.WithArchiveFetcher(fetcher),
		job.WithTracklistFetcher(lists),
		job.WithDetectOpts(probe.DetectOpts{
			MinSilenceMs:    cfg.MinSilenceMs,
			SilenceThreshDB: cfg.SilenceThreshDB,
		}),
		job.WithDefaultMinTrack(cfg.MinTrackSec),
		job.WithMaxConcurrentProbes(cfg.MaxConcurrentProbes),
	)

	return &Dependencies{
		SplitService: svc,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, cfg.OutputDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
		slog.String("output_dir", cfg.OutputDir),
	)
	return localStore, nil
}
