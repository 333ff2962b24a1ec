package music

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

type SpotifyClient struct {
	client  *spotify.Client
	limiter *rate.Limiter
}

// NewSpotifyClient authenticates with the client-credentials flow; tokens are
// refreshed by the oauth2 transport.
func NewSpotifyClient(ctx context.Context, clientID, clientSecret string, perSecond float64) *SpotifyClient {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return newSpotifyClient(spotify.New(cfg.Client(ctx)), perSecond)
}

func newSpotifyClient(client *spotify.Client, perSecond float64) *SpotifyClient {
	if perSecond <= 0 {
		perSecond = 5
	}
	return &SpotifyClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (c *SpotifyClient) Track(ctx context.Context, id string) (CatalogTrack, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return CatalogTrack{}, fmt.Errorf("%w: %v", ErrCatalogLookupFailed, err)
	}

	track, err := c.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return CatalogTrack{}, fmt.Errorf("%w: %v", ErrCatalogLookupFailed, err)
	}

	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			artists = append(artists, name)
		}
	}

	thumb := ""
	if len(track.Album.Images) > 0 {
		thumb = track.Album.Images[0].URL
	}

	return CatalogTrack{
		ID:        id,
		Title:     strings.TrimSpace(track.Name),
		Artists:   artists,
		Thumbnail: thumb,
		Duration:  int(track.Duration) / 1000,
	}, nil
}
