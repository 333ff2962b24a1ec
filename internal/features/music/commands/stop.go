package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hxnx/jukebox/internal/features/shared"
)

func (h *Handlers) Stop(_ context.Context, req shared.Request) shared.Reply {
	h.Registry.Get(req.GuildID).Stop()
	return shared.Text("Stopped playback and cleared the queue.")
}

func (h *Handlers) Clear(_ context.Context, req shared.Request) shared.Reply {
	n := h.Registry.Get(req.GuildID).Clear()
	if n == 0 {
		return shared.Text("The queue is already empty.")
	}
	return shared.Text(fmt.Sprintf("Cleared %d track(s) from the queue.", n))
}

func (h *Handlers) Delete(_ context.Context, req shared.Request) shared.Reply {
	index, err := strconv.Atoi(strings.TrimSpace(req.Args))
	if err != nil {
		return shared.Text("Usage: delete <position>")
	}

	track, err := h.Registry.Get(req.GuildID).Delete(index)
	if err != nil {
		return shared.Text(errorMessage(req.GuildID, err))
	}
	return shared.Text(fmt.Sprintf("Removed **%s** from the queue.", track.Title))
}
