package botinfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/ping"
	"github.com/hxnx/jukebox/internal/features/shared"
)

var botStartedAt = time.Now()

type Stats struct {
	ping.Stats
	Players       int
	ActivePlayers int
	Uptime        time.Duration
	MemoryBytes   uint64
}

// PlayerCounter is satisfied by *music.Registry.
type PlayerCounter interface {
	Len() int
	Active() int
}

func Collect(s *discordgo.Session, players PlayerCounter) Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := Stats{
		Stats:       ping.StatsFromSession(s),
		Uptime:      time.Since(botStartedAt).Round(time.Second),
		MemoryBytes: mem.Alloc,
	}
	if players != nil {
		stats.Players = players.Len()
		stats.ActivePlayers = players.Active()
	}
	return stats
}

func BuildBotInfoReply(stats Stats) shared.Reply {
	return shared.Reply{Embed: &discordgo.MessageEmbed{
		Title: "Jukebox",
		Color: shared.AccentColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Gateway latency", Value: stats.GatewayLatency.String(), Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d on %d shard(s)", stats.Guilds, stats.Shards), Inline: true},
			{Name: "Players", Value: fmt.Sprintf("%d playing / %d total", stats.ActivePlayers, stats.Players), Inline: true},
			{Name: "Uptime", Value: stats.Uptime.String(), Inline: true},
			{Name: "Memory", Value: fmt.Sprintf("%.2f MB", float64(stats.MemoryBytes)/1024.0/1024.0), Inline: true},
		},
	}}
}
