package listeners

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
)

type ChannelStore interface {
	UpsertChannel(guildID, channelID string) error
	GetChannel(guildID string) (string, bool, error)
}

// Announcer posts player events to the text channel that last issued a
// command in the guild. It is registered as a music.Observer.
type Announcer struct {
	messenger shared.Messenger
	store     ChannelStore

	mu       sync.Mutex
	channels map[string]string

	sendMu  sync.Mutex
	pending []outgoing
	sending bool
}

type outgoing struct {
	guildID string
	reply   shared.Reply
}

func NewAnnouncer(messenger shared.Messenger, store ChannelStore) *Announcer {
	return &Announcer{
		messenger: messenger,
		store:     store,
		channels:  make(map[string]string),
	}
}

func (a *Announcer) Remember(guildID, channelID string) {
	if guildID == "" || channelID == "" {
		return
	}

	a.mu.Lock()
	prev := a.channels[guildID]
	a.channels[guildID] = channelID
	a.mu.Unlock()

	if prev == channelID || a.store == nil {
		return
	}
	go func() {
		if err := a.store.UpsertChannel(guildID, channelID); err != nil {
			logging.Guild(guildID).WithError(err).Warn("announcer: failed to persist channel")
		}
	}()
}

func (a *Announcer) Channel(guildID string) (string, bool) {
	a.mu.Lock()
	ch, ok := a.channels[guildID]
	a.mu.Unlock()
	if ok {
		return ch, true
	}
	if a.store == nil {
		return "", false
	}

	ch, ok, err := a.store.GetChannel(guildID)
	if err != nil {
		logging.Guild(guildID).WithError(err).Warn("announcer: failed to load channel")
		return "", false
	}
	if ok {
		a.mu.Lock()
		if _, exists := a.channels[guildID]; !exists {
			a.channels[guildID] = ch
		}
		a.mu.Unlock()
	}
	return ch, ok
}

// OnPlayerEvent queues the announcement and returns. A single sender goroutine
// drains the queue so messages keep the order the player emitted them in.
func (a *Announcer) OnPlayerEvent(e music.Event) {
	reply, ok := announcement(e)
	if !ok {
		return
	}

	a.sendMu.Lock()
	a.pending = append(a.pending, outgoing{guildID: e.GuildID, reply: reply})
	if a.sending {
		a.sendMu.Unlock()
		return
	}
	a.sending = true
	a.sendMu.Unlock()

	go a.drain()
}

func (a *Announcer) drain() {
	for {
		a.sendMu.Lock()
		if len(a.pending) == 0 {
			a.sending = false
			a.sendMu.Unlock()
			return
		}
		next := a.pending[0]
		a.pending = a.pending[1:]
		a.sendMu.Unlock()

		a.Notify(next.guildID, next.reply)
	}
}

func (a *Announcer) Notify(guildID string, reply shared.Reply) {
	ch, ok := a.Channel(guildID)
	if !ok {
		return
	}
	shared.Send(a.messenger, ch, reply)
}

func announcement(e music.Event) (shared.Reply, bool) {
	switch e.Kind {
	case music.EventNowPlaying:
		if e.Track == nil {
			return shared.Reply{}, false
		}
		embed := &discordgo.MessageEmbed{
			Description: fmt.Sprintf("Now playing: **%s** `%s`", e.Track.Title, e.Track.DurationString()),
			Color:       shared.AccentColor,
		}
		if e.Track.RequestedBy != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: "Requested by " + e.Track.RequestedBy}
		}
		if e.Track.Thumbnail != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Track.Thumbnail}
		}
		return shared.Reply{Embed: embed}, true
	case music.EventTrackFailed:
		if e.Track == nil {
			return shared.Reply{}, false
		}
		return shared.Text(fmt.Sprintf("Could not play **%s**, skipping.", e.Track.Title)), true
	case music.EventQueueEnded:
		return shared.Text("Queue is empty. Disconnecting..."), true
	case music.EventSessionLost:
		return shared.Text("Lost the voice connection. Playback stopped."), true
	}
	return shared.Reply{}, false
}
