package listeners

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
)

// AutoLeave stops a guild's player once the bot has been alone in its voice
// channel for the configured delay. A negative delay disables it.
type AutoLeave struct {
	registry  *music.Registry
	announcer *Announcer
	delay     time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewAutoLeave(registry *music.Registry, announcer *Announcer, delay time.Duration) *AutoLeave {
	return &AutoLeave{
		registry:  registry,
		announcer: announcer,
		delay:     delay,
		timers:    make(map[string]*time.Timer),
	}
}

func (a *AutoLeave) HandleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if a == nil || a.delay < 0 || s == nil || vs == nil || vs.GuildID == "" {
		return
	}

	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}
	if botID == "" {
		return
	}

	guild := getGuildWithVoiceStates(s, vs.GuildID)
	if guild == nil {
		return
	}

	a.Evaluate(vs.GuildID, guild.VoiceStates, botID)
}

// Evaluate arms or cancels the timer from the guild's current voice states.
func (a *AutoLeave) Evaluate(guildID string, states []*discordgo.VoiceState, botID string) {
	if _, alone := botAlone(states, botID); alone {
		a.schedule(guildID)
		return
	}
	a.cancel(guildID)
}

func (a *AutoLeave) Pending(guildID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.timers[guildID]
	return ok
}

func (a *AutoLeave) schedule(guildID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.timers[guildID]; ok {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		if a.timers[guildID] != timer {
			a.mu.Unlock()
			return
		}
		delete(a.timers, guildID)
		a.mu.Unlock()

		a.leave(guildID)
	})
	a.timers[guildID] = timer
}

func (a *AutoLeave) cancel(guildID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if timer, ok := a.timers[guildID]; ok {
		timer.Stop()
		delete(a.timers, guildID)
	}
}

func (a *AutoLeave) leave(guildID string) {
	player, ok := a.registry.Lookup(guildID)
	if !ok {
		return
	}

	player.Stop()
	logging.Guild(guildID).Info("voice: left empty channel")
	if a.announcer != nil {
		a.announcer.Notify(guildID, shared.Text("Everyone left the voice channel, so playback was stopped."))
	}
}

// botAlone reports the bot's voice channel and whether nobody else is in it.
func botAlone(states []*discordgo.VoiceState, botID string) (string, bool) {
	botChannelID := ""
	for _, state := range states {
		if state.UserID == botID && state.ChannelID != "" {
			botChannelID = state.ChannelID
			break
		}
	}
	if botChannelID == "" {
		return "", false
	}

	for _, state := range states {
		if state.ChannelID == botChannelID && state.UserID != botID {
			return botChannelID, false
		}
	}
	return botChannelID, true
}

func getGuildWithVoiceStates(s *discordgo.Session, guildID string) *discordgo.Guild {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}
