package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
)

// Play resolves the query, then joins the caller's voice channel and enqueues
// the result. When the track starts right away the reply is left to the
// "Now playing" announcement.
func (h *Handlers) Play(ctx context.Context, req shared.Request) shared.Reply {
	query := strings.TrimSpace(req.Args)
	if query == "" {
		return shared.Text(errorMessage(req.GuildID, music.ErrMissingInput))
	}
	if req.VoiceChannelID == "" {
		return shared.Text(errorMessage(req.GuildID, music.ErrVoiceJoinDenied))
	}

	track, err := h.Resolver.Resolve(ctx, query, req.AuthorName)
	if err != nil {
		logging.Guild(req.GuildID).WithError(err).WithField("query", query).Info("play: resolve failed")
		return shared.Text(errorMessage(req.GuildID, err))
	}

	pos, err := h.Registry.Get(req.GuildID).Play(ctx, req.VoiceChannelID, track)
	if err != nil {
		if errors.Is(err, music.ErrQueueFull) || errors.Is(err, music.ErrVoiceSessionLost) {
			return shared.Text(errorMessage(req.GuildID, err))
		}
		logging.Guild(req.GuildID).WithError(err).Warn("play: voice join failed")
		return shared.Text(joinFailed(req.GuildID, err))
	}
	if pos == 0 {
		return shared.Reply{}
	}
	return shared.Text(fmt.Sprintf("Added to queue: **%s** (position %d)", track.Title, pos))
}

func (h *Handlers) Join(ctx context.Context, req shared.Request) shared.Reply {
	if req.VoiceChannelID == "" {
		return shared.Text(errorMessage(req.GuildID, music.ErrVoiceJoinDenied))
	}
	if err := h.Registry.Get(req.GuildID).Join(ctx, req.VoiceChannelID); err != nil {
		logging.Guild(req.GuildID).WithError(err).Warn("join: voice join failed")
		return shared.Text(joinFailed(req.GuildID, err))
	}
	return shared.Text(fmt.Sprintf("Joined <#%s>.", req.VoiceChannelID))
}

func joinFailed(guildID string, err error) string {
	if errors.Is(err, music.ErrVoiceJoinDenied) || errors.Is(err, context.DeadlineExceeded) {
		return errorMessage(guildID, err)
	}
	return "Could not join your voice channel."
}
