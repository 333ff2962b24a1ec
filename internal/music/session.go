package music

import "context"

type VoiceConnector interface {
	Connect(ctx context.Context, guildID, channelID string) (VoiceSession, error)
}

type VoiceSession interface {
	ChannelID() string
	Connected() bool
	Move(ctx context.Context, channelID string) error
	// Play starts streaming the track. When it returns a nil error, done is
	// called exactly once from another goroutine after the stream ends.
	Play(track Track, done func(error)) (Stream, error)
	Disconnect() error
}

// Stream controls must not block; the player calls them while holding its lock.
type Stream interface {
	Pause()
	Resume()
	Stop()
}
