package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/database"
	"github.com/hxnx/jukebox/internal/features/music/queueview"
	"github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/logging"
)

const historyLimit = 10

// Queue shows the first page of the queue. An optional argument selects the page.
func (h *Handlers) Queue(_ context.Context, req shared.Request) shared.Reply {
	page := 1
	if arg := strings.TrimSpace(req.Args); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil {
			page = n
		}
	}
	return h.QueuePage(req.GuildID, page, queueview.DefaultPerPage)
}

func (h *Handlers) QueuePage(guildID string, page, perPage int) shared.Reply {
	player := h.Registry.Get(guildID)
	state := player.State()
	items := player.Queue()
	if state.NowPlaying == nil && len(items) == 0 {
		return shared.Text("The queue is empty.")
	}

	embed, components, _ := queueview.BuildQueueEmbed(state, items, page, perPage)
	return shared.Reply{Embed: embed, Components: components}
}

func (h *Handlers) Current(_ context.Context, req shared.Request) shared.Reply {
	card := queueview.BuildTrackCard(h.Registry.Get(req.GuildID).State())
	if card == nil {
		return shared.Text("Nothing is playing.")
	}
	return shared.Reply{Embed: card}
}

func (h *Handlers) ShowHistory(_ context.Context, req shared.Request) shared.Reply {
	if h.History == nil {
		return shared.Text("Playback history is not enabled.")
	}

	entries, err := h.History.Recent(req.GuildID, historyLimit)
	if err != nil {
		logging.Guild(req.GuildID).WithError(err).Warn("history: query failed")
		return shared.Text("Could not load playback history.")
	}
	if len(entries) == 0 {
		return shared.Text("Nothing has been played yet.")
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		mark := ""
		if e.Outcome == database.OutcomeFailed {
			mark = " (failed)"
		}
		title := e.Title
		if e.PageURL != "" {
			title = fmt.Sprintf("[%s](%s)", e.Title, e.PageURL)
		}
		lines = append(lines, fmt.Sprintf("%d. %s · %s <t:%d:R>%s", i+1, title, e.RequestedBy, e.PlayedAt.Unix(), mark))
	}

	return shared.Reply{Embed: &discordgo.MessageEmbed{
		Title:       "Recently played",
		Description: strings.Join(lines, "\n"),
		Color:       shared.AccentColor,
	}}
}
