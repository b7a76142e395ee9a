package cutter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/soundclash/trackcut-api/internal/segment"
)

// ErrNoDirectives is returned when Cut is called with an empty directive list.
var ErrNoDirectives = errors.New("cutter: no directives provided")

// FFmpegCutter implements Cutter using the ffmpeg CLI. Extractions are stream
// copies; nothing is re-encoded.
type FFmpegCutter struct {
	ffmpegPath string
}

// NewFFmpegCutter creates a new FFmpegCutter.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegCutter(ffmpegPath string) *FFmpegCutter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegCutter{ffmpegPath: ffmpegPath}
}

// track is one output file: the directives that reconstruct it, in emission
// order, all sharing the same output index.
type track struct {
	index      int
	directives []segment.Directive
}

// groupTracks groups directives by output index, preserving emission order
// both across tracks and within each track.
func groupTracks(directives []segment.Directive) []track {
	var tracks []track
	byIndex := map[int]int{}
	for _, d := range directives {
		pos, ok := byIndex[d.OutputIndex]
		if !ok {
			pos = len(tracks)
			byIndex[d.OutputIndex] = pos
			tracks = append(tracks, track{index: d.OutputIndex})
		}
		tracks[pos].directives = append(tracks[pos].directives, d)
	}
	return tracks
}

// trackName returns the output filename for a track, reusing the extension of
// its first source file so stream copies stay in their native container.
func trackName(tr track) string {
	ext := filepath.Ext(tr.directives[0].StreamID)
	if ext == "" {
		ext = ".mp3"
	}
	return fmt.Sprintf("track_%03d%s", tr.index, ext)
}

func partName(tr track, part int) string {
	ext := filepath.Ext(trackName(tr))
	return fmt.Sprintf("track_%03d_part_%03d%s", tr.index, part, ext)
}

func concatListName(tr track) string {
	return fmt.Sprintf("track_%03d_concat.txt", tr.index)
}

// Cut implements Cutter.
func (c *FFmpegCutter) Cut(ctx context.Context, directives []segment.Directive, outputDir string) ([]string, error) {
	if len(directives) == 0 {
		return nil, ErrNoDirectives
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var outputs []string
	for _, tr := range groupTracks(directives) {
		out, err := c.cutTrack(ctx, tr, outputDir)
		if err != nil {
			for _, path := range outputs {
				_ = os.Remove(path)
			}
			return nil, fmt.Errorf("cut track %d: %w", tr.index, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// cutTrack writes one track. A single-directive track is one extraction; a
// multi-directive track extracts each part and joins them with the concat
// demuxer, then removes the intermediate files.
func (c *FFmpegCutter) cutTrack(ctx context.Context, tr track, outputDir string) (string, error) {
	out := filepath.Join(outputDir, trackName(tr))

	if len(tr.directives) == 1 {
		d := tr.directives[0]
		return out, c.run(ctx, extractArgs(d, out))
	}

	var parts []string
	defer func() {
		for _, p := range parts {
			_ = os.Remove(p)
		}
	}()

	for i, d := range tr.directives {
		part := filepath.Join(outputDir, partName(tr, i))
		if err := c.run(ctx, extractArgs(d, part)); err != nil {
			return "", fmt.Errorf("extract part %d: %w", i, err)
		}
		parts = append(parts, part)
	}

	listPath := filepath.Join(outputDir, concatListName(tr))
	if err := writeConcatList(listPath, parts); err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(listPath) }()

	return out, c.run(ctx, concatArgs(listPath, out))
}

// extractArgs builds the ffmpeg argv for copying [Start, End) of a source
// file into dst.
func extractArgs(d segment.Directive, dst string) []string {
	return []string{
		"-y",
		"-i", d.StreamID,
		"-ss", fmt.Sprintf("%.3f", d.Start),
		"-to", fmt.Sprintf("%.3f", d.End),
		"-c", "copy",
		dst,
	}
}

// concatArgs builds the ffmpeg argv for joining the files listed in listPath
// with the concat demuxer, stream-copying into dst.
func concatArgs(listPath, dst string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		dst,
	}
}

// Commands returns the ffmpeg argv sequences Cut would execute, in order,
// without touching the filesystem. Used for dry runs and stats output.
func (c *FFmpegCutter) Commands(directives []segment.Directive, outputDir string) [][]string {
	var cmds [][]string
	for _, tr := range groupTracks(directives) {
		if len(tr.directives) == 1 {
			cmds = append(cmds, extractArgs(tr.directives[0], filepath.Join(outputDir, trackName(tr))))
			continue
		}
		for i, d := range tr.directives {
			cmds = append(cmds, extractArgs(d, filepath.Join(outputDir, partName(tr, i))))
		}
		cmds = append(cmds, concatArgs(
			filepath.Join(outputDir, concatListName(tr)),
			filepath.Join(outputDir, trackName(tr)),
		))
	}
	return cmds
}

// writeConcatList writes the concat demuxer file list, escaping single quotes
// in paths.
func writeConcatList(listPath string, parts []string) error {
	var b strings.Builder
	for _, p := range parts {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("get absolute path for %s: %w", p, err)
		}
		escaped := strings.ReplaceAll(abs, "'", "'\\''")
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// run executes ffmpeg with the given arguments, wrapping failures with the
// captured stderr.
func (c *FFmpegCutter) run(ctx context.Context, args []string) error {
	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &FFmpegError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr
// output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}

// Verify interface implementation at compile time.
var _ Cutter = (*FFmpegCutter)(nil)
