package music

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	opusFrameInterval = 20 * time.Millisecond
	opusSendTimeout   = time.Second
	pausePollInterval = 50 * time.Millisecond
)

// DiscordVoice joins voice channels through the gateway shard that owns the guild.
type DiscordVoice struct {
	sessions   []*discordgo.Session
	ffmpegPath string
}

func NewDiscordVoice(sessions []*discordgo.Session) *DiscordVoice {
	return &DiscordVoice{
		sessions:   sessions,
		ffmpegPath: "ffmpeg",
	}
}

func (d *DiscordVoice) Connect(ctx context.Context, guildID, channelID string) (VoiceSession, error) {
	if channelID == "" {
		return nil, ErrVoiceJoinDenied
	}
	if len(d.sessions) == 0 {
		return nil, fmt.Errorf("no discord session available")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := d.sessions[ShardForGuild(guildID, len(d.sessions))]
	vc, err := s.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	return &discordVoiceSession{vc: vc, guildID: guildID, ffmpegPath: d.ffmpegPath}, nil
}

// ShardForGuild applies the gateway sharding formula (guild_id >> 22) % shards.
func ShardForGuild(guildID string, shardCount int) int {
	if shardCount <= 1 {
		return 0
	}
	id, err := strconv.ParseUint(guildID, 10, 64)
	if err != nil {
		return 0
	}
	return int((id >> 22) % uint64(shardCount))
}

type discordVoiceSession struct {
	vc         *discordgo.VoiceConnection
	guildID    string
	ffmpegPath string
}

func (v *discordVoiceSession) ChannelID() string {
	return v.vc.ChannelID
}

func (v *discordVoiceSession) Connected() bool {
	return v.vc != nil && v.vc.Ready
}

func (v *discordVoiceSession) Move(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.vc.ChangeChannel(channelID, false, true)
}

func (v *discordVoiceSession) Disconnect() error {
	return v.vc.Disconnect()
}

func (v *discordVoiceSession) Play(track Track, done func(error)) (Stream, error) {
	if !v.Connected() {
		return nil, ErrVoiceSessionLost
	}
	if track.StreamURL == "" {
		return nil, fmt.Errorf("%w: empty stream url", ErrStreamStartFailed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, v.ffmpegPath, ffmpegArgs(track.StreamURL)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: ffmpeg stdout pipe: %v", ErrStreamStartFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: ffmpeg stderr pipe: %v", ErrStreamStartFailed, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrStreamStartFailed, err)
	}

	log := logging.Guild(v.guildID)
	stream := &audioStream{stop: make(chan struct{}), cancel: cancel, log: log}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				log.WithField("source", "ffmpeg").Debug(line)
			}
		}
	}()

	go func() {
		frames, err := stream.pump(v.vc, stdout)
		interrupted := stream.stopped()
		stream.Stop()
		waitErr := cmd.Wait()
		if err == nil && frames == 0 && waitErr != nil && !interrupted {
			err = fmt.Errorf("%w: ffmpeg exited: %v", ErrStreamStartFailed, waitErr)
		}
		log.WithField("frames", frames).Debug("voice: stream ended")
		done(err)
	}()

	return stream, nil
}

func ffmpegArgs(url string) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-c:a", "libopus",
		"-ar", "48000",
		"-ac", "2",
		"-b:a", "96k",
		"-vbr", "on",
		"-frame_duration", "20",
		"-application", "audio",
		"-f", "ogg",
		"-loglevel", "warning",
		"pipe:1",
	}
}

type audioStream struct {
	stop        chan struct{}
	stopOnce    sync.Once
	cancel      context.CancelFunc
	paused      atomic.Bool
	halted      atomic.Bool
	log         *logrus.Entry
	sendTimeout time.Duration
}

func (a *audioStream) Pause() {
	a.paused.Store(true)
}

func (a *audioStream) Resume() {
	a.paused.Store(false)
}

func (a *audioStream) Stop() {
	a.stopOnce.Do(func() {
		a.halted.Store(true)
		close(a.stop)
		a.cancel()
	})
}

func (a *audioStream) stopped() bool {
	return a.halted.Load()
}

// waitWhilePaused reports false when the stream was stopped during the pause.
func (a *audioStream) waitWhilePaused(vc *discordgo.VoiceConnection) bool {
	if !a.paused.Load() {
		return true
	}

	safeSpeaking(vc, false)
	for a.paused.Load() {
		select {
		case <-a.stop:
			return false
		case <-time.After(pausePollInterval):
		}
	}
	safeSpeaking(vc, true)
	return true
}

func (a *audioStream) pump(vc *discordgo.VoiceConnection, r io.Reader) (int, error) {
	log := a.log
	if log == nil {
		log = logrus.NewEntry(logging.Log)
	}
	timeout := a.sendTimeout
	if timeout <= 0 {
		timeout = opusSendTimeout
	}

	reader := newOggReader(r)
	ticker := time.NewTicker(opusFrameInterval)
	defer ticker.Stop()

	safeSpeaking(vc, true)
	defer safeSpeaking(vc, false)

	frames, dropped := 0, 0
	for {
		select {
		case <-a.stop:
			return frames, nil
		default:
		}

		page, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || a.stopped() {
				return frames, nil
			}
			return frames, err
		}
		if page.isHeader {
			continue
		}

		for _, packet := range page.packets {
			if !a.waitWhilePaused(vc) {
				return frames, nil
			}

			select {
			case <-a.stop:
				return frames, nil
			case <-ticker.C:
			}

			select {
			case vc.OpusSend <- packet:
				frames++
			case <-a.stop:
				return frames, nil
			case <-time.After(timeout):
				if !vc.Ready {
					return frames, ErrVoiceSessionLost
				}
				dropped++
				log.WithFields(logrus.Fields{"sent": frames, "dropped": dropped}).Debug("voice: opus send timed out, frame dropped")
			}
		}
	}
}

func safeSpeaking(vc *discordgo.VoiceConnection, speaking bool) {
	if vc == nil || !vc.Ready {
		return
	}
	_ = vc.Speaking(speaking)
}
