package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	musiccmd "github.com/hxnx/jukebox/internal/features/music/commands"
	"github.com/hxnx/jukebox/internal/features/music/queueview"
	"github.com/hxnx/jukebox/internal/features/shared"
)

type ComponentRouter struct {
	handlers *musiccmd.Handlers
}

func NewComponentRouter(handlers *musiccmd.Handlers) *ComponentRouter {
	return &ComponentRouter{handlers: handlers}
}

func (r *ComponentRouter) RouteMusicComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "music_") {
		return false
	}

	if strings.HasPrefix(customID, queueview.CustomIDPrefix) {
		r.handleQueuePagination(s, i, customID)
	}
	return true
}

func (r *ComponentRouter) handleQueuePagination(s *discordgo.Session, i *discordgo.InteractionCreate, customID string) {
	page, perPage, ok := queueview.ParseQueuePageCustomID(customID)
	if !ok {
		shared.RespondEphemeral(s, i, "That page does not exist.")
		return
	}
	if i.GuildID == "" {
		shared.RespondEphemeral(s, i, "This only works inside a server.")
		return
	}

	reply := r.handlers.QueuePage(i.GuildID, page, perPage)
	if reply.Embed == nil {
		// queue drained since the message was sent
		reply.Components = []discordgo.MessageComponent{}
	}
	shared.RespondUpdate(s, i, reply)
}
