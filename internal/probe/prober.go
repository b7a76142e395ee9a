// Package probe gathers the raw inputs the segmenters consume: per-stream
// durations and silence intervals, obtained by running ffmpeg/ffprobe against
// the recording files.
package probe

import (
	"context"

	"github.com/soundclash/trackcut-api/internal/segment"
)

// DetectOpts configures silence detection.
type DetectOpts struct {
	// MinSilenceMs is the minimum silence duration in milliseconds
	// to report as a gap.
	MinSilenceMs int

	// SilenceThreshDB is the volume threshold in dBFS below which
	// audio is considered silence.
	SilenceThreshDB float64
}

// DefaultDetectOpts returns the default silence detection options.
func DefaultDetectOpts() DetectOpts {
	return DetectOpts{
		MinSilenceMs:    500,
		SilenceThreshDB: -30,
	}
}

// Result is the silence analysis of one input file.
type Result struct {
	Path     string
	Duration float64
	Silences []segment.Interval
}

// Stream converts the analysis into the segmenter's stream form, using the
// file path as the stream identifier.
func (r Result) Stream() segment.Stream {
	return segment.Stream{ID: r.Path, Duration: r.Duration, Silences: r.Silences}
}

// Prober analyzes audio files ahead of segmentation.
type Prober interface {
	// Probe returns the duration of the file at path and the silences
	// detected in it, in file-local seconds.
	Probe(ctx context.Context, path string, opts DetectOpts) (Result, error)
}

// ProbeChunks analyzes a recording that was pre-split into fixed-size chunk
// files (in playback order) and merges the per-chunk results into one logical
// stream labeled id: durations are summed and silences are re-offset into
// recording coordinates, with gaps straddling a chunk seam stitched back into
// a single interval.
func ProbeChunks(ctx context.Context, p Prober, id string, chunkPaths []string, opts DetectOpts) (Result, error) {
	chunks := make([]segment.Chunk, 0, len(chunkPaths))
	total := 0.0
	for _, path := range chunkPaths {
		res, err := p.Probe(ctx, path, opts)
		if err != nil {
			return Result{}, err
		}
		chunks = append(chunks, segment.Chunk{Duration: res.Duration, Silences: res.Silences})
		total += res.Duration
	}
	return Result{
		Path:     id,
		Duration: total,
		Silences: segment.StitchSilences(chunks),
	}, nil
}
