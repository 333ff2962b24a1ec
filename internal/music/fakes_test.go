package music

import (
	"context"
	"sync"
)

type fakeStream struct {
	mu           sync.Mutex
	title        string
	paused       bool
	stopped      bool
	finishOnStop bool
	done         func(error)
	once         sync.Once
}

func (s *fakeStream) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

func (s *fakeStream) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

func (s *fakeStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	finish := s.finishOnStop
	s.mu.Unlock()

	if finish {
		go s.finish(nil)
	}
}

func (s *fakeStream) isPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *fakeStream) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *fakeStream) finish(err error) {
	s.once.Do(func() { s.done(err) })
}

type fakeSession struct {
	mu           sync.Mutex
	channelID    string
	connected    bool
	failures     map[string]error
	finishOnStop bool
	streams      []*fakeStream
	moves        []string
	disconnects  int
}

func newFakeSession(channelID string) *fakeSession {
	return &fakeSession{
		channelID:    channelID,
		connected:    true,
		failures:     map[string]error{},
		finishOnStop: true,
	}
}

func (s *fakeSession) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

func (s *fakeSession) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *fakeSession) Move(_ context.Context, channelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID = channelID
	s.moves = append(s.moves, channelID)
	return nil
}

func (s *fakeSession) Play(track Track, done func(error)) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil, ErrVoiceSessionLost
	}
	if err, ok := s.failures[track.Title]; ok {
		return nil, err
	}

	stream := &fakeStream{title: track.Title, finishOnStop: s.finishOnStop, done: done}
	s.streams = append(s.streams, stream)
	return stream, nil
}

func (s *fakeSession) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.disconnects++
	return nil
}

func (s *fakeSession) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = v
}

func (s *fakeSession) failOn(title string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[title] = err
}

func (s *fakeSession) played() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.streams))
	for _, st := range s.streams {
		out = append(out, st.title)
	}
	return out
}

func (s *fakeSession) stream(i int) *fakeStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.streams) {
		return nil
	}
	return s.streams[i]
}

func (s *fakeSession) lastStream() *fakeStream {
	s.mu.Lock()
	n := len(s.streams)
	s.mu.Unlock()
	return s.stream(n - 1)
}

func (s *fakeSession) disconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnects
}

type fakeConnector struct {
	mu       sync.Mutex
	sessions []*fakeSession
	err      error
}

func (c *fakeConnector) Connect(_ context.Context, _ string, channelID string) (VoiceSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	s := newFakeSession(channelID)
	c.sessions = append(c.sessions, s)
	return s, nil
}

func (c *fakeConnector) last() *fakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sessions) == 0 {
		return nil
	}
	return c.sessions[len(c.sessions)-1]
}

func (c *fakeConnector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) OnPlayerEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func (r *eventRecorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}
