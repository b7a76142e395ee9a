package tracklist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":[
			{"title":"Opening Dub","duration":"1:00"},
			{"title":"Version Excursion","duration":"2:30"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIKey("secret"))
	tracks, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	want := []Track{
		{Title: "Opening Dub", Duration: 60},
		{Title: "Version Excursion", Duration: 150},
	}
	assert.Equal(t, want, tracks)
}

func TestClient_Fetch_RetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"tracks":[{"title":"a","duration":"0:30"}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithMaxRetries(3), WithBaseBackoff(time.Millisecond))
	tracks, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, tracks, 1)
}

func TestClient_Fetch_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithMaxRetries(1), WithBaseBackoff(time.Millisecond))
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrServerError)
}

func TestClient_Fetch_ClientErrorNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithMaxRetries(3), WithBaseBackoff(time.Millisecond))
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 1, attempts)
}

func TestClient_Fetch_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":[]}`))
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrEmptyTrackList)
}

func TestClient_Fetch_BadDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":[{"title":"a","duration":"junk"}]}`))
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBadTimestamp)
}

func TestClient_Fetch_URLRequired(t *testing.T) {
	c := NewClient()
	_, err := c.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrURLRequired)
}
