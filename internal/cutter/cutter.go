// Package cutter executes cut directives by extracting and concatenating
// stream ranges with ffmpeg.
package cutter

import (
	"context"

	"github.com/soundclash/trackcut-api/internal/segment"
)

// Cutter turns an ordered directive list into track files on disk.
type Cutter interface {
	// Cut extracts every directive from its source stream (the directive's
	// StreamID is the source file path) and writes one file per output index
	// into outputDir, concatenating directives that share an index in
	// emission order. Returns the written track paths in index order.
	Cut(ctx context.Context, directives []segment.Directive, outputDir string) ([]string, error)
}
