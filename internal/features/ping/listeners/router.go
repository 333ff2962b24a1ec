package listeners

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/ping"
	"github.com/hxnx/jukebox/internal/features/shared"
)

func RoutePingComponent(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}

	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, "ping_") {
		return false
	}

	HandlePingComponent(s, i)
	return true
}

func HandlePingComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	if i.MessageComponentData().CustomID == ping.RefreshCustomID {
		shared.RespondUpdate(s, i, ping.BuildPingReply(ping.StatsFromSession(s), time.Now()))
	}
}
