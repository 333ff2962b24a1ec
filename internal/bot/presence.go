package bot

import (
	"fmt"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
)

const presenceUpdateInterval = 60 * time.Second

func (b *Bot) startPresenceUpdater() {
	if b.presenceStop != nil {
		return
	}
	b.presenceStop = make(chan struct{})
	stop := b.presenceStop
	go func() {
		ticker := time.NewTicker(presenceUpdateInterval)
		defer ticker.Stop()

		b.updatePresence()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.updatePresence()
			}
		}
	}()
}

func (b *Bot) stopPresenceUpdater() {
	if b.presenceStop == nil {
		return
	}
	close(b.presenceStop)
	b.presenceStop = nil
}

func (b *Bot) updatePresence() {
	guildCount := 0
	for _, s := range b.sessions {
		if s.State != nil {
			guildCount += len(s.State.Guilds)
		}
	}

	status := presenceText(guildCount, b.registry.Active())
	for _, s := range b.sessions {
		if err := s.UpdateGameStatus(0, status); err != nil {
			logging.Log.WithError(err).WithField("shard", s.ShardID).Debug("failed to update presence")
		}
	}
}

func presenceText(guilds, playing int) string {
	return fmt.Sprintf("%d servers / %d playing", guilds, playing)
}
