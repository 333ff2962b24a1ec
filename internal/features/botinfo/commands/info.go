package commands

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/botinfo"
	"github.com/hxnx/jukebox/internal/features/shared"
)

func Info(s *discordgo.Session, players botinfo.PlayerCounter) func(context.Context, shared.Request) shared.Reply {
	return func(context.Context, shared.Request) shared.Reply {
		return botinfo.BuildBotInfoReply(botinfo.Collect(s, players))
	}
}
