// Package storage provides temporary and persistent file storage capabilities.
// It defines the Storage interface (port) for hexagonal architecture and
// implementations for local disk and S3 delivery of finished tracks.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for temporary and persistent file storage.
// Implementations hold intermediate files during a split job and publish the
// finished tracks to their final destination.
type Storage interface {
	// TempDir returns the scratch directory used for intermediate files.
	TempDir() string

	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// PublishTrack stores a finished track under name and returns the URL
	// where it can be retrieved.
	PublishTrack(ctx context.Context, name string, data io.Reader) (url string, err error)
}
