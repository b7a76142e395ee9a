// Package tracklist parses published track lists into the target durations
// that anchor multi-file segmentation.
package tracklist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrBadTimestamp is returned when a duration string cannot be parsed.
var ErrBadTimestamp = errors.New("tracklist: malformed timestamp")

// Track is one entry of a published track list.
type Track struct {
	Title    string
	Duration float64 // seconds
}

// ParseDuration converts a published track length into seconds. Accepted
// forms are "m:ss" and "h:mm:ss"; the seconds part may carry a fraction
// ("3:45.5"). Published lists are sloppy about zero padding, so "3:5" is
// read as 3m05s.
func ParseDuration(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
	}

	total := 0.0
	for i, part := range parts {
		if part == "" {
			return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		val, err := strconv.ParseFloat(part, 64)
		if err != nil || val < 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
		}
		if i > 0 && val >= 60 {
			return 0, fmt.Errorf("%w: %q: field %d out of range", ErrBadTimestamp, s, i)
		}
		total = total*60 + val
	}
	return total, nil
}

// ParseDurations converts a list of published track lengths into seconds,
// preserving order.
func ParseDurations(raw []string) ([]float64, error) {
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		d, err := ParseDuration(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Parse reads a plain-text track list, one track per line in the form
// "<duration> <title>". Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]Track, error) {
	var tracks []Track
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		duration, err := ParseDuration(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		title := ""
		if len(fields) > 1 {
			title = strings.TrimSpace(fields[1])
		}
		tracks = append(tracks, Track{Title: title, Duration: duration})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tracklist: read: %w", err)
	}
	return tracks, nil
}

// Durations extracts the target durations from a track list, in order.
func Durations(tracks []Track) []float64 {
	out := make([]float64, len(tracks))
	for i, tr := range tracks {
		out[i] = tr.Duration
	}
	return out
}
