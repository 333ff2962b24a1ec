package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/ping"
	"github.com/hxnx/jukebox/internal/features/shared"
)

func Ping(s *discordgo.Session) func(context.Context, shared.Request) shared.Reply {
	return func(context.Context, shared.Request) shared.Reply {
		return ping.BuildPingReply(ping.StatsFromSession(s), time.Now())
	}
}
