package commands

import (
	"context"

	"github.com/hxnx/jukebox/internal/features/shared"
)

func (h *Handlers) Skip(ctx context.Context, req shared.Request) shared.Reply {
	if err := h.Registry.Get(req.GuildID).Skip(ctx); err != nil {
		return shared.Text(errorMessage(req.GuildID, err))
	}
	return shared.Text("Skipped.")
}

func (h *Handlers) Pause(_ context.Context, req shared.Request) shared.Reply {
	if err := h.Registry.Get(req.GuildID).Pause(); err != nil {
		return shared.Text(errorMessage(req.GuildID, err))
	}
	return shared.Text("Paused.")
}

func (h *Handlers) Resume(_ context.Context, req shared.Request) shared.Reply {
	if err := h.Registry.Get(req.GuildID).Resume(); err != nil {
		return shared.Text(errorMessage(req.GuildID, err))
	}
	return shared.Text("Resumed.")
}
