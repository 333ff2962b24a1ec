package queueview

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/music"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracks(n int) []music.Track {
	out := make([]music.Track, n)
	for i := range out {
		out[i] = music.Track{
			Title:       fmt.Sprintf("Song %d", i+1),
			PageURL:     fmt.Sprintf("https://www.youtube.com/watch?v=%d", i+1),
			Duration:    65,
			RequestedBy: "alice",
		}
	}
	return out
}

func TestBuildQueueEmbedSinglePage(t *testing.T) {
	now := music.Track{Title: "Current", Duration: 200, RequestedBy: "bob"}
	state := music.State{Status: music.StatusPlaying, NowPlaying: &now, QueueLength: 2}

	embed, components, info := BuildQueueEmbed(state, tracks(2), 1, 10)

	assert.Nil(t, components)
	assert.Equal(t, 1, info.TotalPages)
	assert.Contains(t, embed.Description, "1. [Song 1](https://www.youtube.com/watch?v=1) `1:05` · alice")
	assert.Contains(t, embed.Description, "2. [Song 2]")
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Now playing", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "Current `3:20` · bob")
}

func TestBuildQueueEmbedEmpty(t *testing.T) {
	embed, _, info := BuildQueueEmbed(music.State{}, nil, 3, 10)

	assert.Equal(t, "The queue is empty.", embed.Description)
	assert.Empty(t, embed.Fields)
	assert.Equal(t, 1, info.Page)
}

func TestBuildQueueEmbedPagination(t *testing.T) {
	embed, components, info := BuildQueueEmbed(music.State{}, tracks(23), 3, 10)

	assert.Equal(t, 3, info.Page)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 20, info.StartIndex)
	assert.Equal(t, 23, info.EndIndex)
	assert.Contains(t, embed.Description, "21. [Song 21]")
	assert.NotContains(t, embed.Description, "20. ")
	assert.Equal(t, "Page 3/3 · 23 track(s) queued", embed.Footer.Text)

	require.Len(t, components, 1)
	row := components[0].(discordgo.ActionsRow)
	prev := row.Components[0].(discordgo.Button)
	next := row.Components[1].(discordgo.Button)
	assert.False(t, prev.Disabled)
	assert.True(t, next.Disabled)
	assert.Equal(t, "music_queue_page:2:10", prev.CustomID)
}

func TestBuildTrackCard(t *testing.T) {
	assert.Nil(t, BuildTrackCard(music.State{}))

	now := music.Track{Title: "Song", PageURL: "https://x", Duration: 0, Thumbnail: "https://img", RequestedBy: "carol"}
	card := BuildTrackCard(music.State{Status: music.StatusPaused, NowPlaying: &now, QueueLength: 4})

	assert.Equal(t, "Paused", card.Title)
	assert.Equal(t, "[Song](https://x)", card.Description)
	assert.Equal(t, "live", card.Fields[0].Value)
	assert.Equal(t, "carol", card.Fields[1].Value)
	assert.Equal(t, "4 track(s)", card.Fields[2].Value)
	assert.Equal(t, "https://img", card.Thumbnail.URL)
}

func TestQueuePageCustomID(t *testing.T) {
	id := MakeQueuePageCustomID(0, 100)
	assert.Equal(t, "music_queue_page:1:25", id)

	page, perPage, ok := ParseQueuePageCustomID("music_queue_page:4:10")
	require.True(t, ok)
	assert.Equal(t, 4, page)
	assert.Equal(t, 10, perPage)

	for _, bad := range []string{"ping_refresh", "music_queue_page:x:10", "music_queue_page:1", "music_queue_page:0:10"} {
		_, _, ok := ParseQueuePageCustomID(bad)
		assert.False(t, ok, bad)
	}
}
