package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/soundclash/trackcut-api/internal/segment"
)

// Static errors for probe operations.
var (
	// ErrFFprobeExecution is returned when the ffprobe command fails.
	ErrFFprobeExecution = errors.New("probe: ffprobe execution failed")
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("probe: input file does not exist")
)

// FFmpegProber implements Prober using the ffmpeg and ffprobe CLIs.
type FFmpegProber struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegProber creates a new FFmpegProber. Empty paths default to "ffmpeg"
// and "ffprobe" (found via PATH).
func NewFFmpegProber(ffmpegPath, ffprobePath string) *FFmpegProber {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegProber{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Probe implements Prober.
func (p *FFmpegProber) Probe(ctx context.Context, path string, opts DetectOpts) (Result, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}

	duration, err := p.duration(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("get duration: %w", err)
	}

	silences, err := p.detectSilences(ctx, path, opts)
	if err != nil {
		return Result{}, fmt.Errorf("detect silences: %w", err)
	}

	return Result{Path: path, Duration: duration, Silences: clampSilences(silences, duration)}, nil
}

// clampSilences trims detector output into [0, duration]. silencedetect
// reports sub-millisecond overshoot at file edges which would otherwise
// violate the segmenter's input contract.
func clampSilences(silences []segment.Interval, duration float64) []segment.Interval {
	out := silences[:0]
	for _, sil := range silences {
		if sil.Start < 0 {
			sil.Start = 0
		}
		if sil.End > duration {
			sil.End = duration
		}
		if sil.End > sil.Start {
			out = append(out, sil)
		}
	}
	return out
}

// duration returns the length of a media file in seconds, via ffprobe.
func (p *FFmpegProber) duration(ctx context.Context, path string) (float64, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return 0, fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	return parseProbeDuration(stdout.String())
}

// parseProbeDuration parses ffprobe's noprint_wrappers duration output.
func parseProbeDuration(out string) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(out), err)
	}
	return duration, nil
}

// detectSilences runs ffmpeg's silencedetect filter and parses its stderr.
func (p *FFmpegProber) detectSilences(ctx context.Context, path string, opts DetectOpts) ([]segment.Interval, error) {
	filter := fmt.Sprintf("silencedetect=noise=%ddB:d=%.3f",
		int(opts.SilenceThreshDB),
		float64(opts.MinSilenceMs)/1000.0,
	)

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-hide_banner",
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// ffmpeg writes silencedetect output to stderr and exits non-zero with
	// the null muxer; the parse below is the real success signal.
	_ = cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
	}

	return parseSilenceOutput(stderr.String())
}

// Regex patterns for silencedetect stderr lines.
var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// parseSilenceOutput parses ffmpeg silencedetect output into intervals.
// Starts without a matching end (a silence still open at EOF) are dropped;
// the segmenters treat trailing audio via the stream duration instead.
func parseSilenceOutput(output string) ([]segment.Interval, error) {
	var intervals []segment.Interval

	var currentStart float64
	hasStart := false

	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			currentStart = val
			hasStart = true
		}

		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			val, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			intervals = append(intervals, segment.Interval{Start: currentStart, End: val})
			hasStart = false
		}
	}

	return intervals, nil
}

// Verify interface implementation at compile time.
var _ Prober = (*FFmpegProber)(nil)
