package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hxnx/jukebox/internal/database"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
)

type Resolver interface {
	Resolve(ctx context.Context, query string, requestedBy string) (music.Track, error)
}

type History interface {
	Recent(guildID string, limit int) ([]database.HistoryEntry, error)
}

// Handlers implements the music commands against an injected registry.
type Handlers struct {
	Registry *music.Registry
	Resolver Resolver
	History  History
}

func New(registry *music.Registry, resolver Resolver) *Handlers {
	return &Handlers{Registry: registry, Resolver: resolver}
}

func (h *Handlers) WithHistory(history History) *Handlers {
	h.History = history
	return h
}

// errorMessage turns a command failure into the single line shown to the user.
func errorMessage(guildID string, err error) string {
	switch {
	case errors.Is(err, music.ErrMissingInput):
		return "Please tell me what to play."
	case errors.Is(err, music.ErrCatalogLookupFailed):
		return "Could not look up that Spotify track."
	case errors.Is(err, music.ErrNoResultsFound):
		return "No results found."
	case errors.Is(err, music.ErrStreamExtractionFailed):
		return "Could not get a playable stream for that track."
	case errors.Is(err, music.ErrVoiceJoinDenied):
		return "You need to be in a voice channel."
	case errors.Is(err, music.ErrQueueFull):
		return "The queue is full."
	case errors.Is(err, music.ErrIndexOutOfRange):
		return "There is no track at that position."
	case errors.Is(err, music.ErrNothingPlaying):
		return "Nothing is playing."
	case errors.Is(err, music.ErrNotPlaying):
		return "Playback is already paused."
	case errors.Is(err, music.ErrNotPaused):
		return "Playback is not paused."
	case errors.Is(err, music.ErrVoiceSessionLost):
		return "Lost the voice connection. Use play to start again."
	case errors.Is(err, context.DeadlineExceeded):
		return "That took too long, please try again."
	case errors.Is(err, music.ErrSearchFailed):
		return "Search is unavailable right now, please try again later."
	}

	logging.Guild(guildID).WithError(err).Error("command: unexpected failure")
	return fmt.Sprintf("Something went wrong: %v", err)
}
