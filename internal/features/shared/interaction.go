package shared

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/logging"
)

const AccentColor = 0xC9A0FF

// Messenger is the slice of *discordgo.Session used to talk back to a channel.
type Messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Request is a decoded prefix command.
type Request struct {
	GuildID        string
	ChannelID      string
	MessageID      string
	AuthorID       string
	AuthorName     string
	VoiceChannelID string
	Args           string
}

type Reply struct {
	Content    string
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

func Text(content string) Reply {
	return Reply{Content: content}
}

func (r Reply) Empty() bool {
	return r.Content == "" && r.Embed == nil
}

func Send(m Messenger, channelID string, r Reply) {
	if m == nil || channelID == "" || r.Empty() {
		return
	}

	data := &discordgo.MessageSend{
		Content:    r.Content,
		Components: r.Components,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}

	if _, err := m.ChannelMessageSendComplex(channelID, data); err != nil {
		logging.Log.WithError(err).WithField("channel", channelID).Warn("reply: send failed")
	}
}

func RespondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, r Reply) {
	if s == nil || i == nil {
		return
	}

	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Components: r.Components,
	}
	if r.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{r.Embed}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
	if err != nil {
		logging.Log.WithError(err).Warn("interaction: update failed")
	}
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if s == nil || i == nil {
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Log.WithError(err).Warn("interaction: respond failed")
	}
}

func GetInteractionUserID(i *discordgo.InteractionCreate) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// Handler runs one command and returns what to post back.
type Handler = func(ctx context.Context, req Request) Reply
