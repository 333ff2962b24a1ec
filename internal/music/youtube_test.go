package music

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	name  string
	res   SearchResult
	err   error
	calls int
}

func (s *stubSearcher) Name() string { return s.name }

func (s *stubSearcher) Search(context.Context, string) (SearchResult, error) {
	s.calls++
	return s.res, s.err
}

type stubExtractor struct {
	name  string
	media Media
	err   error
	calls int
}

func (e *stubExtractor) Name() string { return e.name }

func (e *stubExtractor) Extract(context.Context, string) (Media, error) {
	e.calls++
	return e.media, e.err
}

func TestYouTubeSearchFallsBack(t *testing.T) {
	first := &stubSearcher{name: "first", err: errors.New("blocked")}
	second := &stubSearcher{name: "second", res: SearchResult{PageURL: "https://www.youtube.com/watch?v=b"}}
	y := NewYouTubeWith([]Searcher{first, second}, nil)

	res, err := y.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=b", res.PageURL)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestYouTubeSearchStopsAtFirstHit(t *testing.T) {
	first := &stubSearcher{name: "first", res: SearchResult{PageURL: "https://www.youtube.com/watch?v=a"}}
	second := &stubSearcher{name: "second"}
	y := NewYouTubeWith([]Searcher{first, second}, nil)

	_, err := y.Search(context.Background(), "query")
	require.NoError(t, err)
	assert.Zero(t, second.calls)
}

func TestYouTubeSearchAllFail(t *testing.T) {
	y := NewYouTubeWith([]Searcher{
		&stubSearcher{name: "empty"},
		&stubSearcher{name: "broken", err: errors.New("boom")},
	}, nil)

	_, err := y.Search(context.Background(), "query")
	assert.ErrorIs(t, err, ErrNoResultsFound)
	assert.Contains(t, err.Error(), "boom")
}

func TestYouTubeSearchProvidersDown(t *testing.T) {
	y := NewYouTubeWith([]Searcher{
		&stubSearcher{name: "ytsearch", err: errors.New("dial tcp: connection refused")},
		&stubSearcher{name: "yt-dlp", err: errors.New("executable file not found")},
	}, nil)

	_, err := y.Search(context.Background(), "query")
	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.NotErrorIs(t, err, ErrNoResultsFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestYouTubeExtractFallsBack(t *testing.T) {
	primary := &stubExtractor{name: "yt-dlp", err: errors.New("sign in to confirm")}
	fallback := &stubExtractor{name: "kkdai", media: Media{StreamURL: "https://stream", Title: "T"}}
	y := NewYouTubeWith(nil, []Extractor{primary, fallback})

	media, err := y.Extract(context.Background(), "https://www.youtube.com/watch?v=a")
	require.NoError(t, err)
	assert.Equal(t, "https://stream", media.StreamURL)
	assert.Equal(t, 1, primary.calls)
}

func TestYouTubeExtractAllFail(t *testing.T) {
	y := NewYouTubeWith(nil, []Extractor{
		&stubExtractor{name: "a", err: errors.New("one")},
		&stubExtractor{name: "b", media: Media{Title: "no stream"}},
	})

	_, err := y.Extract(context.Background(), "https://www.youtube.com/watch?v=a")
	assert.ErrorIs(t, err, ErrStreamExtractionFailed)
	assert.Contains(t, err.Error(), "one")
}

func TestYouTubeExtractStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &stubExtractor{name: "a", err: context.Canceled}
	second := &stubExtractor{name: "b", media: Media{StreamURL: "https://stream"}}
	y := NewYouTubeWith(nil, []Extractor{first, second})

	_, err := y.Extract(ctx, "https://www.youtube.com/watch?v=a")
	assert.ErrorIs(t, err, ErrStreamExtractionFailed)
	assert.Zero(t, second.calls)
}

func TestYTSearchTopResult(t *testing.T) {
	s := &YTSearch{search: func(context.Context, string) ([]SearchResult, error) {
		return []SearchResult{
			{PageURL: watchURL("first"), Title: "First"},
			{PageURL: watchURL("second"), Title: "Second"},
		}, nil
	}}

	res, err := s.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=first", res.PageURL)

	empty := &YTSearch{search: func(context.Context, string) ([]SearchResult, error) { return nil, nil }}
	_, err = empty.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoResultsFound)
}

func TestParseYTDLPPrint(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    Media
		wantErr bool
	}{
		{
			name: "full",
			out:  "https://rr1.googlevideo.com/x\t213.0\thttps://i.ytimg.com/t.jpg\thttps://www.youtube.com/watch?v=a\tSome\tTitle\n",
			want: Media{
				StreamURL: "https://rr1.googlevideo.com/x",
				Duration:  213,
				Thumbnail: "https://i.ytimg.com/t.jpg",
				PageURL:   "https://www.youtube.com/watch?v=a",
				Title:     "Some\tTitle",
			},
		},
		{
			name: "live stream without duration",
			out:  "https://stream\tNA\tNA\thttps://www.youtube.com/watch?v=b\tLive",
			want: Media{StreamURL: "https://stream", PageURL: "https://www.youtube.com/watch?v=b", Title: "Live"},
		},
		{name: "missing url", out: "NA\t1\tx\ty\tz", wantErr: true},
		{name: "garbage", out: "ERROR: unavailable", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseYTDLPPrint(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
