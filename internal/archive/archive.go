// Package archive downloads and unpacks recording bundles. Long events are
// commonly distributed as a single zip of numbered audio files; this package
// turns such a bundle URL into local files ready for probing.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Static errors for archive operations.
var (
	// ErrURLRequired is returned when no archive URL is provided.
	ErrURLRequired = errors.New("archive: URL is required")
	// ErrDownloadFailed is returned when the archive cannot be fetched.
	ErrDownloadFailed = errors.New("archive: download failed")
	// ErrUnsafePath is returned when a zip entry would escape the
	// destination directory.
	ErrUnsafePath = errors.New("archive: entry path escapes destination")
	// ErrNoAudioFiles is returned when the archive contains no audio entries.
	ErrNoAudioFiles = errors.New("archive: no audio files in bundle")
)

// audioExts lists the file extensions extracted as recordings.
var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

// Fetcher downloads zip bundles over HTTP and extracts their audio entries.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a Fetcher. A nil client gets a default with a generous
// timeout; recordings run to gigabytes.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Minute}
	}
	return &Fetcher{httpClient: client}
}

// Download fetches the zip at url into destDir and extracts its audio
// entries there, returning their paths sorted by name so numbered recordings
// keep playback order. The zip itself is removed after extraction.
func (f *Fetcher) Download(ctx context.Context, url, destDir string) ([]string, error) {
	if url == "" {
		return nil, ErrURLRequired
	}
	if err := os.MkdirAll(destDir, 0750); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	zipPath, err := f.fetch(ctx, url, destDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(zipPath) }()

	return extractAudio(zipPath, destDir)
}

// fetch streams the archive to disk and returns its path.
func (f *Fetcher) fetch(ctx context.Context, url, destDir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("archive: build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	out, err := os.CreateTemp(destDir, "bundle_*.zip")
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	zipPath := out.Name()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(zipPath)
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(zipPath)
		return "", fmt.Errorf("close archive file: %w", err)
	}
	return zipPath, nil
}

// extractAudio unpacks the audio entries of a zip into destDir.
func extractAudio(zipPath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("archive: open zip: %w", err)
	}
	defer func() { _ = r.Close() }()

	var paths []string
	for _, entry := range r.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if !audioExts[strings.ToLower(filepath.Ext(entry.Name))] {
			continue
		}

		dst, err := safeJoin(destDir, entry.Name)
		if err != nil {
			return nil, err
		}
		if err := extractEntry(entry, dst); err != nil {
			return nil, fmt.Errorf("archive: extract %s: %w", entry.Name, err)
		}
		paths = append(paths, dst)
	}

	if len(paths) == 0 {
		return nil, ErrNoAudioFiles
	}
	sort.Strings(paths)
	return paths, nil
}

// safeJoin flattens a zip entry name onto destDir, rejecting traversal.
func safeJoin(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	// Bundles nest files under a top-level folder; keep only the base name
	// so downstream stream IDs stay short.
	return filepath.Join(destDir, filepath.Base(cleaned)), nil
}

func extractEntry(entry *zip.File, dst string) error {
	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
