package music

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput           = errors.New("input is required")
	ErrCatalogLookupFailed    = errors.New("catalog lookup failed")
	ErrNoResultsFound         = errors.New("no results found")
	ErrSearchFailed           = errors.New("search provider failed")
	ErrStreamExtractionFailed = errors.New("stream extraction failed")
	ErrVoiceJoinDenied        = errors.New("user is not in a voice channel")
	ErrIndexOutOfRange        = errors.New("queue index out of range")
	ErrStreamStartFailed      = errors.New("stream failed to start")
	ErrVoiceSessionLost       = errors.New("voice session lost")
	ErrQueueFull              = errors.New("queue is full")
	ErrNothingPlaying         = errors.New("nothing is playing")
	ErrNotPlaying             = errors.New("playback is not running")
	ErrNotPaused              = errors.New("playback is not paused")
)

type Origin string

const (
	OriginPrimary Origin = "youtube"
	OriginCatalog Origin = "spotify"
)

// Track is immutable once returned by the resolver.
type Track struct {
	Title       string `json:"title"`
	StreamURL   string `json:"-"`
	PageURL     string `json:"page_url"`
	Duration    int    `json:"duration"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Origin      Origin `json:"origin"`
	RequestedBy string `json:"requested_by"`
}

// DurationString renders the duration as m:ss, or "live" for unknown lengths.
func (t Track) DurationString() string {
	if t.Duration <= 0 {
		return "live"
	}
	return fmt.Sprintf("%d:%02d", t.Duration/60, t.Duration%60)
}

type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "idle"
	}
}

type State struct {
	Status      Status
	NowPlaying  *Track
	QueueLength int
	ChannelID   string
}

type EventKind string

const (
	EventNowPlaying  EventKind = "now_playing"
	EventFinished    EventKind = "finished"
	EventTrackFailed EventKind = "track_failed"
	EventQueueEnded  EventKind = "queue_ended"
	EventSessionLost EventKind = "session_lost"
	EventStopped     EventKind = "stopped"
)

type Event struct {
	GuildID string
	Kind    EventKind
	Track   *Track
	Err     error
}

// Observer receives player events outside the player lock.
type Observer interface {
	OnPlayerEvent(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) OnPlayerEvent(e Event) {
	f(e)
}
