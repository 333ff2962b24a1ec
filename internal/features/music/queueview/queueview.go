package queueview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/features/shared"
	"github.com/hxnx/jukebox/internal/music"
)

const (
	CustomIDPrefix = "music_queue_page"
	DefaultPerPage = 10
	MaxPerPage     = 25
)

type PageInfo struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	StartIndex int
	EndIndex   int
}

// BuildQueueEmbed renders one page of the queue, with the now-playing track on
// top when there is one. Buttons are omitted when everything fits on one page.
func BuildQueueEmbed(state music.State, items []music.Track, page int, perPage int) (*discordgo.MessageEmbed, []discordgo.MessageComponent, PageInfo) {
	total := len(items)
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = clamp(perPage, 1, MaxPerPage)
	totalPages := max(1, int(math.Ceil(float64(total)/float64(perPage))))
	page = clamp(page, 1, totalPages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, fmt.Sprintf("%d. %s `%s` · %s", i+1, trackLink(items[i]), items[i].DurationString(), requester(items[i])))
	}

	description := "The queue is empty."
	if len(lines) > 0 {
		description = strings.Join(lines, "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: description,
		Color:       shared.AccentColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d · %d track(s) queued", page, totalPages, total),
		},
	}
	if state.NowPlaying != nil {
		label := "Now playing"
		if state.Status == music.StatusPaused {
			label = "Paused"
		}
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name:  label,
			Value: fmt.Sprintf("%s `%s` · %s", trackLink(*state.NowPlaying), state.NowPlaying.DurationString(), requester(*state.NowPlaying)),
		}}
	}

	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		StartIndex: start,
		EndIndex:   end,
	}

	if totalPages <= 1 {
		return embed, nil, info
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Previous",
					CustomID: MakeQueuePageCustomID(page-1, perPage),
					Disabled: page <= 1,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Label:    "Next",
					CustomID: MakeQueuePageCustomID(page+1, perPage),
					Disabled: page >= totalPages,
				},
			},
		},
	}
	return embed, components, info
}

// BuildTrackCard is the "current" card: title, duration, requester and artwork.
func BuildTrackCard(state music.State) *discordgo.MessageEmbed {
	t := state.NowPlaying
	if t == nil {
		return nil
	}

	title := "Now playing"
	if state.Status == music.StatusPaused {
		title = "Paused"
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: trackLink(*t),
		Color:       shared.AccentColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: t.DurationString(), Inline: true},
			{Name: "Requested by", Value: requester(*t), Inline: true},
			{Name: "Up next", Value: fmt.Sprintf("%d track(s)", state.QueueLength), Inline: true},
		},
	}
	if t.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.Thumbnail}
	}
	return embed
}

func trackLink(t music.Track) string {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Unknown title"
	}
	if t.PageURL != "" {
		return fmt.Sprintf("[%s](%s)", title, t.PageURL)
	}
	return title
}

func requester(t music.Track) string {
	if t.RequestedBy == "" {
		return "unknown"
	}
	return t.RequestedBy
}

func MakeQueuePageCustomID(page int, perPage int) string {
	if page < 1 {
		page = 1
	}
	perPage = clamp(perPage, 1, MaxPerPage)
	return fmt.Sprintf("%s:%d:%d", CustomIDPrefix, page, perPage)
}

func ParseQueuePageCustomID(customID string) (page int, perPage int, ok bool) {
	if !strings.HasPrefix(customID, CustomIDPrefix+":") {
		return 0, 0, false
	}

	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return 0, 0, false
	}

	pageVal, err := strconv.Atoi(parts[1])
	if err != nil || pageVal < 1 {
		return 0, 0, false
	}

	perPageVal, err := strconv.Atoi(parts[2])
	if err != nil || perPageVal < 1 {
		return 0, 0, false
	}

	return pageVal, clamp(perPageVal, 1, MaxPerPage), true
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
