package listeners

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/shared"
)

// ParseCommand splits "<prefix><name> <args>" into a lowercase name and the
// remaining text.
func ParseCommand(prefix, content string) (name string, args string, ok bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
	if rest == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(args), true
}

// RequestFromMessage builds a command request, looking up the author's voice
// channel in the state cache.
func RequestFromMessage(state *discordgo.State, m *discordgo.MessageCreate, args string) shared.Request {
	req := shared.Request{
		GuildID:    m.GuildID,
		ChannelID:  m.ChannelID,
		MessageID:  m.ID,
		AuthorID:   m.Author.ID,
		AuthorName: displayName(m),
		Args:       args,
	}

	if state != nil {
		if vs, err := state.VoiceState(m.GuildID, m.Author.ID); err == nil && vs != nil {
			req.VoiceChannelID = vs.ChannelID
		}
	}
	return req
}

func displayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
