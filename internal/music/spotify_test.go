package music

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

const trackPayload = `{
	"id": "4uLU6hMCjMI75M1A2tKUQC",
	"name": "Never Gonna Give You Up",
	"duration_ms": 213573,
	"artists": [{"name": "Rick Astley"}, {"name": " "}],
	"album": {"images": [{"url": "https://i.scdn.co/image/large"}, {"url": "https://i.scdn.co/image/small"}]}
}`

func newTestSpotify(t *testing.T, handler http.HandlerFunc) *SpotifyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newSpotifyClient(spotify.New(srv.Client(), spotify.WithBaseURL(srv.URL+"/")), 100)
}

func TestSpotifyTrack(t *testing.T) {
	var path string
	c := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(trackPayload))
	})

	track, err := c.Track(context.Background(), "4uLU6hMCjMI75M1A2tKUQC")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "/tracks/4uLU6hMCjMI75M1A2tKUQC"), path)
	assert.Equal(t, "Never Gonna Give You Up", track.Title)
	assert.Equal(t, []string{"Rick Astley"}, track.Artists)
	assert.Equal(t, "https://i.scdn.co/image/large", track.Thumbnail)
	assert.Equal(t, 213, track.Duration)
	assert.Equal(t, "Never Gonna Give You Up Rick Astley", track.SearchTerms())
}

func TestSpotifyTrackNotFound(t *testing.T) {
	c := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"status": 404, "message": "Non existing id"}}`))
	})

	_, err := c.Track(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCatalogLookupFailed)
}

func TestSpotifyTrackCancelled(t *testing.T) {
	c := newTestSpotify(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Track(ctx, "abc")
	assert.ErrorIs(t, err, ErrCatalogLookupFailed)
}
