package music

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShardForGuild(t *testing.T) {
	tests := []struct {
		name    string
		guildID string
		shards  int
		want    int
	}{
		{name: "single shard", guildID: "81384788765712384", shards: 1, want: 0},
		{name: "two shards", guildID: "81384788765712384", shards: 2, want: int((uint64(81384788765712384) >> 22) % 2)},
		{name: "four shards", guildID: "41771983423143937", shards: 4, want: int((uint64(41771983423143937) >> 22) % 4)},
		{name: "invalid id", guildID: "abc", shards: 4, want: 0},
		{name: "no shards", guildID: "81384788765712384", shards: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShardForGuild(tt.guildID, tt.shards))
		})
	}
}

func TestDiscordVoiceConnectValidation(t *testing.T) {
	d := NewDiscordVoice(nil)

	_, err := d.Connect(context.Background(), "1", "")
	assert.ErrorIs(t, err, ErrVoiceJoinDenied)

	_, err = d.Connect(context.Background(), "1", "2")
	require.Error(t, err)
}

func TestAudioStreamControls(t *testing.T) {
	cancelled := false
	s := &audioStream{stop: make(chan struct{}), cancel: func() { cancelled = true }}

	s.Pause()
	assert.True(t, s.paused.Load())
	s.Resume()
	assert.False(t, s.paused.Load())

	s.Stop()
	s.Stop()
	assert.True(t, s.stopped())
	assert.True(t, cancelled)

	select {
	case <-s.stop:
	default:
		t.Fatal("stop channel not closed")
	}
}

func TestAudioStreamPauseInterruptedByStop(t *testing.T) {
	s := &audioStream{stop: make(chan struct{}), cancel: func() {}}
	s.Pause()

	go s.Stop()

	assert.False(t, s.waitWhilePaused(nil))
}

func TestFfmpegArgsEmitOggOpus(t *testing.T) {
	args := ffmpegArgs("https://example.com/audio")

	assert.Contains(t, args, "https://example.com/audio")
	assert.Contains(t, args, "libopus")
	assert.Equal(t, "pipe:1", args[len(args)-1])
}

func TestPumpLogsDroppedFrames(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var stream bytes.Buffer
	stream.Write(buildOggPage(0x02, []byte{8}, []byte("OpusHead")))
	stream.Write(buildOggPage(0x00, []byte{3, 2}, []byte("abcde")))

	// nobody reads OpusSend, so every frame times out while the connection stays ready
	vc := &discordgo.VoiceConnection{Ready: true, OpusSend: make(chan []byte)}
	s := &audioStream{
		stop:        make(chan struct{}),
		cancel:      func() {},
		log:         logrus.NewEntry(logger),
		sendTimeout: 10 * time.Millisecond,
	}

	frames, err := s.pump(vc, &stream)
	require.NoError(t, err)
	assert.Zero(t, frames)

	var drops []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "voice: opus send timed out, frame dropped" {
			drops = append(drops, e)
		}
	}
	require.Len(t, drops, 2)
	assert.Equal(t, logrus.DebugLevel, drops[1].Level)
	assert.Equal(t, 2, drops[1].Data["dropped"])
}

func TestPumpReportsLostConnection(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(buildOggPage(0x00, []byte{3}, []byte("abc")))

	vc := &discordgo.VoiceConnection{OpusSend: make(chan []byte)}
	s := &audioStream{stop: make(chan struct{}), cancel: func() {}, sendTimeout: 10 * time.Millisecond}

	_, err := s.pump(vc, &stream)
	assert.ErrorIs(t, err, ErrVoiceSessionLost)
}
