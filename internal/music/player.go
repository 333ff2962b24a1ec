package music

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAdvanceTimeout = 30 * time.Second
	finishedBuffer        = 8
)

type Options struct {
	MaxQueueSize   int
	AdvanceTimeout time.Duration
	Observers      []Observer
}

// playback identifies one stream lifecycle. Completion events carry its id so
// that a late event from a stopped or replaced stream is ignored.
type playback struct {
	id      uuid.UUID
	track   Track
	stream  Stream
	settled chan struct{}
	once    sync.Once
}

func newPlayback(track Track) *playback {
	return &playback{
		id:      uuid.New(),
		track:   track,
		settled: make(chan struct{}),
	}
}

func (pb *playback) settle() {
	pb.once.Do(func() { close(pb.settled) })
}

type finished struct {
	id  uuid.UUID
	err error
}

type Player struct {
	guildID   string
	connector VoiceConnector
	opts      Options
	log       *logrus.Entry

	joinMu sync.Mutex

	mu         sync.Mutex
	queue      *trackQueue
	nowPlaying *Track
	status     Status
	session    VoiceSession
	current    *playback

	finished  chan finished
	quit      chan struct{}
	closeOnce sync.Once
}

func NewPlayer(guildID string, connector VoiceConnector, opts Options) *Player {
	if opts.AdvanceTimeout <= 0 {
		opts.AdvanceTimeout = DefaultAdvanceTimeout
	}

	p := &Player{
		guildID:   guildID,
		connector: connector,
		opts:      opts,
		log:       logging.Guild(guildID),
		queue:     newTrackQueue(opts.MaxQueueSize),
		status:    StatusIdle,
		finished:  make(chan finished, finishedBuffer),
		quit:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Player) GuildID() string {
	return p.guildID
}

// Join connects the player to channelID, moving an existing session if needed.
func (p *Player) Join(ctx context.Context, channelID string) error {
	if channelID == "" {
		return ErrVoiceJoinDenied
	}

	p.joinMu.Lock()
	defer p.joinMu.Unlock()
	return p.joinLocked(ctx, channelID)
}

func (p *Player) joinLocked(ctx context.Context, channelID string) error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session != nil && session.Connected() {
		if session.ChannelID() == channelID {
			return nil
		}
		return session.Move(ctx, channelID)
	}

	vs, err := p.connector.Connect(ctx, p.guildID, channelID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.session = vs
	p.mu.Unlock()

	p.log.WithField("channel", channelID).Info("player: voice connected")
	return nil
}

// Play joins channelID and enqueues track as one step. A session released
// because the queue ran out between the join and the push is reconnected once.
func (p *Player) Play(ctx context.Context, channelID string, track Track) (int, error) {
	if channelID == "" {
		return 0, ErrVoiceJoinDenied
	}

	p.joinMu.Lock()
	defer p.joinMu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		if err := p.joinLocked(ctx, channelID); err != nil {
			return 0, err
		}

		p.mu.Lock()
		if p.session == nil || !p.session.Connected() {
			p.mu.Unlock()
			p.log.Debug("player: session released before enqueue, reconnecting")
			continue
		}
		pos, events, err := p.enqueueLocked(track)
		p.mu.Unlock()

		p.emit(events)
		return pos, err
	}
	return 0, ErrVoiceSessionLost
}

// Enqueue appends the track and starts playback when idle. The returned
// position is 1-based, or 0 when the track was handed straight to the stream.
func (p *Player) Enqueue(track Track) (int, error) {
	p.mu.Lock()
	pos, events, err := p.enqueueLocked(track)
	p.mu.Unlock()

	p.emit(events)
	return pos, err
}

func (p *Player) enqueueLocked(track Track) (int, []Event, error) {
	pos, err := p.queue.Push(track)
	if err != nil {
		return 0, nil, err
	}

	var events []Event
	if p.status == StatusIdle {
		events, err = p.advanceLocked()
		pos = 0
	}
	return pos, events, err
}

// Skip stops the active stream and waits for the next track to be started.
// A wait that exceeds the advance timeout is logged and treated as success.
func (p *Player) Skip(ctx context.Context) error {
	p.mu.Lock()
	if p.status == StatusIdle || p.current == nil {
		p.mu.Unlock()
		return ErrNothingPlaying
	}
	pb := p.current
	pb.stream.Stop()
	p.mu.Unlock()

	timer := time.NewTimer(p.opts.AdvanceTimeout)
	defer timer.Stop()

	select {
	case <-pb.settled:
		return nil
	case <-timer.C:
		p.log.WithField("timeout", p.opts.AdvanceTimeout).Warn("player: skip timed out waiting for advance")
		return nil
	case <-ctx.Done():
		p.log.WithError(ctx.Err()).Warn("player: skip wait cancelled")
		return ctx.Err()
	}
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.status {
	case StatusIdle:
		return ErrNothingPlaying
	case StatusPaused:
		return ErrNotPlaying
	}

	p.current.stream.Pause()
	p.status = StatusPaused
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.status {
	case StatusIdle:
		return ErrNothingPlaying
	case StatusPlaying:
		return ErrNotPaused
	}

	p.current.stream.Resume()
	p.status = StatusPlaying
	return nil
}

// Stop is terminal for the session: the queue is dropped, the stream is halted
// without advancing, and voice is disconnected. Calling it again is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	wasActive := p.status != StatusIdle || p.session != nil || p.queue.Len() > 0
	p.queue.Clear()
	p.haltLocked()
	p.mu.Unlock()

	if wasActive {
		p.emit([]Event{{Kind: EventStopped}})
	}
}

// Delete removes the queue entry at the 1-based index.
func (p *Player) Delete(index int) (Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Remove(index)
}

// Clear empties the queue without touching the track that is playing.
func (p *Player) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Clear()
}

func (p *Player) Queue() []Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.List()
}

func (p *Player) Current() (Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nowPlaying == nil {
		return Track{}, false
	}
	return *p.nowPlaying, true
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		Status:      p.status,
		QueueLength: p.queue.Len(),
	}
	if p.nowPlaying != nil {
		t := *p.nowPlaying
		st.NowPlaying = &t
	}
	if p.session != nil && p.session.Connected() {
		st.ChannelID = p.session.ChannelID()
	}
	return st
}

// Close stops playback and the event worker. The player must not be used afterwards.
func (p *Player) Close() {
	p.Stop()
	p.closeOnce.Do(func() { close(p.quit) })
}

func (p *Player) run() {
	for {
		select {
		case <-p.quit:
			return
		case ev := <-p.finished:
			p.handleFinished(ev)
		}
	}
}

func (p *Player) completion(id uuid.UUID) func(error) {
	return func(err error) {
		select {
		case p.finished <- finished{id: id, err: err}:
		case <-p.quit:
		}
	}
}

func (p *Player) handleFinished(ev finished) {
	p.mu.Lock()
	pb := p.current
	if pb == nil || pb.id != ev.id {
		p.mu.Unlock()
		p.log.WithField("playback", ev.id).Debug("player: ignoring stale completion")
		return
	}
	p.current = nil

	done := pb.track
	events := []Event{{Kind: EventFinished, Track: &done, Err: ev.err}}

	if errors.Is(ev.err, ErrVoiceSessionLost) {
		p.log.WithError(ev.err).Warn("player: voice session lost during playback")
		events = append(events, p.resetLocked(nil)...)
	} else {
		if ev.err != nil {
			p.log.WithError(ev.err).WithField("title", done.Title).Warn("player: stream ended with error")
		}
		more, _ := p.advanceLocked()
		events = append(events, more...)
	}
	p.mu.Unlock()

	pb.settle()
	p.emit(events)
}

// advanceLocked pops tracks until one starts streaming. Each failed start
// consumes a queue entry, so the loop is bounded by the queue length.
func (p *Player) advanceLocked() ([]Event, error) {
	var events []Event

	for {
		next, ok := p.queue.Pop()
		if !ok {
			p.nowPlaying = nil
			p.status = StatusIdle
			p.disconnectLocked()
			events = append(events, Event{Kind: EventQueueEnded})
			return events, nil
		}

		if p.session == nil || !p.session.Connected() {
			return append(events, p.resetLocked(&next)...), ErrVoiceSessionLost
		}

		pb := newPlayback(next)
		stream, err := p.session.Play(next, p.completion(pb.id))
		if err != nil {
			if errors.Is(err, ErrVoiceSessionLost) {
				return append(events, p.resetLocked(&next)...), ErrVoiceSessionLost
			}

			p.log.WithError(err).WithField("title", next.Title).Warn("player: stream start failed, skipping track")
			failed := next
			events = append(events, Event{Kind: EventTrackFailed, Track: &failed, Err: err})
			continue
		}

		pb.stream = stream
		p.current = pb
		p.nowPlaying = &pb.track
		p.status = StatusPlaying

		started := next
		events = append(events, Event{Kind: EventNowPlaying, Track: &started})
		return events, nil
	}
}

// resetLocked handles an unusable voice session: all state is dropped.
func (p *Player) resetLocked(failed *Track) []Event {
	p.queue.Clear()
	p.haltLocked()

	var track *Track
	if failed != nil {
		t := *failed
		track = &t
	}
	return []Event{{Kind: EventSessionLost, Track: track, Err: ErrVoiceSessionLost}}
}

func (p *Player) haltLocked() {
	if pb := p.current; pb != nil {
		p.current = nil
		pb.stream.Stop()
		pb.settle()
	}
	p.nowPlaying = nil
	p.status = StatusIdle
	p.disconnectLocked()
}

func (p *Player) disconnectLocked() {
	if p.session == nil {
		return
	}
	if err := p.session.Disconnect(); err != nil {
		p.log.WithError(err).Warn("player: voice disconnect failed")
	}
	p.session = nil
}

func (p *Player) emit(events []Event) {
	for _, ev := range events {
		ev.GuildID = p.guildID
		for _, o := range p.opts.Observers {
			o.OnPlayerEvent(ev)
		}
	}
}
