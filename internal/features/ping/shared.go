package ping

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/shared"
)

const RefreshCustomID = "ping_refresh"

type Stats struct {
	APILatency     time.Duration
	GatewayLatency time.Duration
	Guilds         int
	Shards         int
}

func StatsFromSession(s *discordgo.Session) Stats {
	latency := s.HeartbeatLatency().Round(time.Millisecond)

	gatewayLatency := latency
	if !s.LastHeartbeatAck.IsZero() {
		gatewayLatency = time.Since(s.LastHeartbeatAck).Round(time.Millisecond)
	}

	guilds := 0
	if s.State != nil {
		guilds = len(s.State.Guilds)
	}

	return Stats{
		APILatency:     latency,
		GatewayLatency: gatewayLatency,
		Guilds:         guilds,
		Shards:         max(1, s.ShardCount),
	}
}

func BuildPingReply(stats Stats, now time.Time) shared.Reply {
	embed := &discordgo.MessageEmbed{
		Title: "Pong!",
		Color: shared.AccentColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "API latency", Value: stats.APILatency.String(), Inline: true},
			{Name: "Gateway latency", Value: stats.GatewayLatency.String(), Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d on %d shard(s)", stats.Guilds, stats.Shards), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Updated"},
		Timestamp: now.UTC().Format(time.RFC3339),
	}

	return shared.Reply{
		Embed: embed,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Style:    discordgo.PrimaryButton,
						Label:    "Refresh",
						CustomID: RefreshCustomID,
					},
				},
			},
		},
	}
}
