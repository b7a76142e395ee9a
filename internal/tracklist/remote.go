package tracklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Static errors for remote track list fetching.
var (
	// ErrURLRequired is returned when no track list URL is provided.
	ErrURLRequired = errors.New("tracklist: URL is required")
	// ErrEmptyTrackList is returned when the fetched list contains no tracks.
	ErrEmptyTrackList = errors.New("tracklist: fetched list contains no tracks")
	// ErrServerError is returned when the server keeps answering 5xx.
	ErrServerError = errors.New("tracklist: server error")
	// ErrRateLimited is returned when the server keeps answering 429.
	ErrRateLimited = errors.New("tracklist: rate limited")
	// ErrRequestFailed is returned when the request fails with any other
	// non-2xx status code.
	ErrRequestFailed = errors.New("tracklist: request failed")
)

// Client fetches published track lists over HTTP. The expected payload is
// JSON: {"tracks": [{"title": "...", "duration": "3:45"}, ...]}.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	maxRetries  int
	baseBackoff time.Duration
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets a bearer token sent with every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxRetries sets the maximum number of retries for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBaseBackoff sets the initial backoff duration between retries.
func WithBaseBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.baseBackoff = d
	}
}

// NewClient creates a new track list client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  2,
		baseBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// remoteTrack is the wire form of one track list entry.
type remoteTrack struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

type remotePayload struct {
	Tracks []remoteTrack `json:"tracks"`
}

// Fetch downloads and parses the track list at url. Responses with 429 or
// 5xx status are retried with exponential backoff up to the configured limit.
func (c *Client) Fetch(ctx context.Context, url string) ([]Track, error) {
	if url == "" {
		return nil, ErrURLRequired
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tracklist: fetch cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		tracks, retryable, err := c.fetchOnce(ctx, url)
		if err == nil {
			return tracks, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// fetchOnce performs a single request; retryable reports whether the caller
// should try again.
func (c *Client) fetchOnce(ctx context.Context, url string) (tracks []Track, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("tracklist: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("tracklist: do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, false, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, string(body))
	}

	var payload remotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("tracklist: decode response: %w", err)
	}
	if len(payload.Tracks) == 0 {
		return nil, false, ErrEmptyTrackList
	}

	out := make([]Track, 0, len(payload.Tracks))
	for i, rt := range payload.Tracks {
		duration, err := ParseDuration(rt.Duration)
		if err != nil {
			return nil, false, fmt.Errorf("track %d: %w", i, err)
		}
		out = append(out, Track{Title: rt.Title, Duration: duration})
	}
	return out, false, nil
}
