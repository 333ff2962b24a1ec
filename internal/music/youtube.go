package music

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hxnx/jukebox/internal/logging"
	"github.com/kkdai/youtube/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/ppalone/ytsearch"
)

const ytdlpPrintTemplate = "%(url)s\t%(duration)s\t%(thumbnail)s\t%(webpage_url)s\t%(title)s"

type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) (SearchResult, error)
}

type Extractor interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (Media, error)
}

// YouTube tries each searcher and extractor in order until one succeeds.
type YouTube struct {
	searchers  []Searcher
	extractors []Extractor
}

func NewYouTube(ytdlpPath string) *YouTube {
	backend := &YTDLP{Binary: ytdlpPath}
	return &YouTube{
		searchers:  []Searcher{NewYTSearch(), backend},
		extractors: []Extractor{backend, &Kkdai{}},
	}
}

func NewYouTubeWith(searchers []Searcher, extractors []Extractor) *YouTube {
	return &YouTube{searchers: searchers, extractors: extractors}
}

// Search returns the first hit across searchers. ErrNoResultsFound means a
// searcher answered with zero candidates; ErrSearchFailed means none answered.
func (y *YouTube) Search(ctx context.Context, query string) (SearchResult, error) {
	var (
		errs  []error
		empty bool
	)
	for _, s := range y.searchers {
		res, err := s.Search(ctx, query)
		if err == nil && res.PageURL != "" {
			return res, nil
		}
		if err == nil {
			err = ErrNoResultsFound
		}
		if errors.Is(err, ErrNoResultsFound) {
			empty = true
		}
		logging.Log.WithError(err).WithField("searcher", s.Name()).Debug("youtube: search attempt failed")
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if empty {
		return SearchResult{}, fmt.Errorf("%w: %w", ErrNoResultsFound, errors.Join(errs...))
	}
	return SearchResult{}, fmt.Errorf("%w: %w", ErrSearchFailed, errors.Join(errs...))
}

func (y *YouTube) Extract(ctx context.Context, pageURL string) (Media, error) {
	var errs []error
	for _, e := range y.extractors {
		media, err := e.Extract(ctx, pageURL)
		if err == nil && media.StreamURL != "" {
			return media, nil
		}
		if err == nil {
			err = errors.New("empty stream url")
		}
		logging.Log.WithError(err).WithField("extractor", e.Name()).Warn("youtube: extraction attempt failed")
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return Media{}, fmt.Errorf("%w: %w", ErrStreamExtractionFailed, errors.Join(errs...))
}

type YTSearch struct {
	search func(ctx context.Context, query string) ([]SearchResult, error)
}

func NewYTSearch() *YTSearch {
	client := ytsearch.NewClient(nil)
	return &YTSearch{search: func(ctx context.Context, query string) ([]SearchResult, error) {
		res, err := client.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		out := make([]SearchResult, 0, len(res.Results))
		for _, v := range res.Results {
			if v.VideoID == "" {
				continue
			}
			out = append(out, SearchResult{PageURL: watchURL(v.VideoID), Title: v.Title})
		}
		return out, nil
	}}
}

func (s *YTSearch) Name() string { return "ytsearch" }

func (s *YTSearch) Search(ctx context.Context, query string) (SearchResult, error) {
	results, err := s.search(ctx, query)
	if err != nil {
		return SearchResult{}, err
	}
	if len(results) == 0 {
		return SearchResult{}, ErrNoResultsFound
	}
	return results[0], nil
}

// YTDLP shells out to yt-dlp through go-ytdlp.
type YTDLP struct {
	Binary string
}

func (y *YTDLP) Name() string { return "yt-dlp" }

func (y *YTDLP) command() *ytdlp.Command {
	cmd := ytdlp.New().
		NoWarnings().
		IgnoreConfig().
		NoPlaylist()
	if y.Binary != "" {
		cmd.SetExecutable(y.Binary)
	}
	return cmd
}

func (y *YTDLP) Search(ctx context.Context, query string) (SearchResult, error) {
	res, err := y.command().
		FlatPlaylist().
		Print("%(id)s\t%(title)s").
		Run(ctx, "ytsearch1:"+query)
	if err != nil {
		return SearchResult{}, err
	}

	for _, line := range strings.Split(strings.TrimSpace(res.Stdout), "\n") {
		id, title, _ := strings.Cut(line, "\t")
		if id = strings.TrimSpace(id); id != "" && id != "NA" {
			return SearchResult{PageURL: watchURL(id), Title: strings.TrimSpace(title)}, nil
		}
	}
	return SearchResult{}, ErrNoResultsFound
}

func (y *YTDLP) Extract(ctx context.Context, pageURL string) (Media, error) {
	res, err := y.command().
		Format("bestaudio/best").
		Print(ytdlpPrintTemplate).
		Run(ctx, pageURL)
	if err != nil {
		return Media{}, err
	}
	return parseYTDLPPrint(res.Stdout)
}

func parseYTDLPPrint(out string) (Media, error) {
	line := strings.TrimSpace(out)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	fields := strings.SplitN(line, "\t", 5)
	if len(fields) < 5 {
		return Media{}, fmt.Errorf("unexpected yt-dlp output %q", line)
	}

	streamURL := naToEmpty(fields[0])
	if streamURL == "" {
		return Media{}, errors.New("yt-dlp returned no stream url")
	}

	duration := 0
	if d, err := strconv.ParseFloat(naToEmpty(fields[1]), 64); err == nil && d > 0 {
		duration = int(d)
	}

	return Media{
		StreamURL: streamURL,
		Duration:  duration,
		Thumbnail: naToEmpty(fields[2]),
		PageURL:   naToEmpty(fields[3]),
		Title:     naToEmpty(fields[4]),
	}, nil
}

// Kkdai extracts through the YouTube player API without the yt-dlp binary.
type Kkdai struct {
	client youtube.Client
}

func (k *Kkdai) Name() string { return "kkdai" }

func (k *Kkdai) Extract(ctx context.Context, pageURL string) (Media, error) {
	video, err := k.client.GetVideoContext(ctx, pageURL)
	if err != nil {
		return Media{}, err
	}

	formats := video.Formats.WithAudioChannels()
	if audio := formats.Type("audio"); len(audio) > 0 {
		formats = audio
	}
	if len(formats) == 0 {
		return Media{}, errors.New("no audio formats")
	}
	formats.Sort()

	streamURL, err := k.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return Media{}, err
	}

	thumb := ""
	if n := len(video.Thumbnails); n > 0 {
		thumb = video.Thumbnails[n-1].URL
	}

	return Media{
		Title:     video.Title,
		StreamURL: streamURL,
		PageURL:   watchURL(video.ID),
		Duration:  int(video.Duration.Seconds()),
		Thumbnail: thumb,
	}, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

func naToEmpty(v string) string {
	v = strings.TrimSpace(v)
	if v == "NA" {
		return ""
	}
	return v
}
