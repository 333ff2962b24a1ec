package music

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
)

const DefaultResolveTimeout = 30 * time.Second

var (
	catalogTrackLink = regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com/(?:intl-[a-z-]+/)?track/([a-zA-Z0-9]+)`)
	catalogTrackURI  = regexp.MustCompile(`^spotify:track:([a-zA-Z0-9]+)$`)
)

type SearchResult struct {
	PageURL string
	Title   string
}

type Media struct {
	Title     string
	StreamURL string
	PageURL   string
	Duration  int
	Thumbnail string
}

type CatalogTrack struct {
	ID        string
	Title     string
	Artists   []string
	Thumbnail string
	Duration  int
}

// SearchTerms joins the title with every artist name.
func (c CatalogTrack) SearchTerms() string {
	parts := append([]string{c.Title}, c.Artists...)
	return strings.TrimSpace(strings.Join(parts, " "))
}

type MediaProvider interface {
	Search(ctx context.Context, query string) (SearchResult, error)
	Extract(ctx context.Context, pageURL string) (Media, error)
}

type CatalogProvider interface {
	Track(ctx context.Context, id string) (CatalogTrack, error)
}

// LookupCache stores lookups that stay valid longer than a stream URL.
type LookupCache interface {
	CatalogTrack(ctx context.Context, id string) (CatalogTrack, bool)
	StoreCatalogTrack(ctx context.Context, track CatalogTrack)
	SearchHit(ctx context.Context, query string) (string, bool)
	StoreSearchHit(ctx context.Context, query, pageURL string)
}

type Resolver struct {
	media   MediaProvider
	catalog CatalogProvider
	cache   LookupCache
	timeout time.Duration
}

func NewResolver(media MediaProvider, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	return &Resolver{
		media:   media,
		timeout: timeout,
	}
}

func (r *Resolver) WithCatalog(catalog CatalogProvider) *Resolver {
	r.catalog = catalog
	return r
}

func (r *Resolver) WithCache(cache LookupCache) *Resolver {
	r.cache = cache
	return r
}

// Resolve turns a search query, media link or catalog link into a playable Track.
// It never touches player state and may block up to the resolve timeout.
func (r *Resolver) Resolve(ctx context.Context, query string, requestedBy string) (Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Track{}, ErrMissingInput
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	origin := OriginPrimary
	terms := query
	var catalog *CatalogTrack

	if id, ok := ParseCatalogTrackID(query); ok {
		ct, err := r.lookupCatalog(ctx, id)
		if err != nil {
			return Track{}, err
		}
		catalog = ct
		origin = OriginCatalog
		terms = ct.SearchTerms()
	} else if IsCatalogLink(query) {
		return Track{}, fmt.Errorf("%w: only track links are supported", ErrCatalogLookupFailed)
	}

	pageURL := terms
	if catalog != nil || !looksLikeURL(terms) {
		hit, err := r.search(ctx, terms)
		if err != nil {
			return Track{}, err
		}
		pageURL = hit
	}

	media, err := r.media.Extract(ctx, pageURL)
	if err != nil {
		if errors.Is(err, ErrStreamExtractionFailed) {
			return Track{}, err
		}
		return Track{}, fmt.Errorf("%w: %v", ErrStreamExtractionFailed, err)
	}
	if media.StreamURL == "" {
		return Track{}, fmt.Errorf("%w: provider returned no stream", ErrStreamExtractionFailed)
	}

	track := Track{
		Title:       strings.TrimSpace(media.Title),
		StreamURL:   media.StreamURL,
		PageURL:     media.PageURL,
		Duration:    max(media.Duration, 0),
		Thumbnail:   media.Thumbnail,
		Origin:      origin,
		RequestedBy: requestedBy,
	}
	if track.PageURL == "" {
		track.PageURL = pageURL
	}

	if catalog != nil {
		track.Title = catalog.Title
		if catalog.Thumbnail != "" {
			track.Thumbnail = catalog.Thumbnail
		}
		if track.Duration == 0 {
			track.Duration = catalog.Duration
		}
	}
	if track.Title == "" {
		track.Title = "Unknown Title"
	}

	return track, nil
}

func (r *Resolver) lookupCatalog(ctx context.Context, id string) (*CatalogTrack, error) {
	if r.cache != nil {
		if ct, ok := r.cache.CatalogTrack(ctx, id); ok {
			return &ct, nil
		}
	}
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: spotify is not configured", ErrCatalogLookupFailed)
	}

	ct, err := r.catalog.Track(ctx, id)
	if err != nil {
		if errors.Is(err, ErrCatalogLookupFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCatalogLookupFailed, err)
	}
	if strings.TrimSpace(ct.Title) == "" {
		return nil, fmt.Errorf("%w: track %s has no title", ErrCatalogLookupFailed, id)
	}
	if ct.ID == "" {
		ct.ID = id
	}

	if r.cache != nil {
		r.cache.StoreCatalogTrack(ctx, ct)
	}
	return &ct, nil
}

func (r *Resolver) search(ctx context.Context, terms string) (string, error) {
	key := normalizeQuery(terms)
	if r.cache != nil {
		if pageURL, ok := r.cache.SearchHit(ctx, key); ok {
			return pageURL, nil
		}
	}

	hit, err := r.media.Search(ctx, terms)
	if err != nil {
		if errors.Is(err, ErrNoResultsFound) || errors.Is(err, ErrSearchFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	if hit.PageURL == "" {
		return "", fmt.Errorf("%w: %q", ErrNoResultsFound, terms)
	}

	if r.cache != nil {
		r.cache.StoreSearchHit(ctx, key, hit.PageURL)
	}
	logging.Log.WithField("query", terms).WithField("url", hit.PageURL).Debug("resolver: search hit")
	return hit.PageURL, nil
}

// ParseCatalogTrackID extracts the Spotify track id from a link or URI.
func ParseCatalogTrackID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if m := catalogTrackURI.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	if m := catalogTrackLink.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	return "", false
}

func IsCatalogLink(input string) bool {
	lower := strings.ToLower(strings.TrimSpace(input))
	return strings.HasPrefix(lower, "spotify:") || strings.Contains(lower, "open.spotify.com/")
}

func looksLikeURL(value string) bool {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return true
	}

	u, err := url.Parse(value)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func normalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
