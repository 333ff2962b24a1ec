package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
)

type Outcome string

const (
	OutcomeStarted Outcome = "started"
	OutcomeFailed  Outcome = "failed"
)

type HistoryEntry struct {
	Title       string
	PageURL     string
	Origin      string
	RequestedBy string
	Outcome     Outcome
	PlayedAt    time.Time
}

// HistoryRepository records every track a guild started or failed to start.
// It satisfies music.Observer; writes happen off the player goroutine.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) OnPlayerEvent(e music.Event) {
	outcome, ok := outcomeFor(e)
	if !ok || r == nil || r.db == nil {
		return
	}
	track := *e.Track
	go func() {
		if err := r.Record(e.GuildID, track, outcome); err != nil {
			logging.Guild(e.GuildID).WithError(err).Warn("history: failed to record track")
		}
	}()
}

func outcomeFor(e music.Event) (Outcome, bool) {
	if e.Track == nil {
		return "", false
	}
	switch e.Kind {
	case music.EventNowPlaying:
		return OutcomeStarted, true
	case music.EventTrackFailed:
		return OutcomeFailed, true
	}
	return "", false
}

func (r *HistoryRepository) Record(guildID string, track music.Track, outcome Outcome) error {
	if r == nil || r.db == nil || guildID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO playback_history (guild_id, title, page_url, origin, requested_by, duration_seconds, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		guildID, track.Title, track.PageURL, string(track.Origin), track.RequestedBy, track.Duration, string(outcome),
	)
	return err
}

// Recent returns the latest entries for a guild, newest first.
func (r *HistoryRepository) Recent(guildID string, limit int) ([]HistoryEntry, error) {
	if r == nil || r.db == nil || guildID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		SELECT title, page_url, origin, requested_by, outcome, played_at
		FROM playback_history
		WHERE guild_id = $1
		ORDER BY played_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e       HistoryEntry
			outcome string
		)
		if err := rows.Scan(&e.Title, &e.PageURL, &e.Origin, &e.RequestedBy, &outcome, &e.PlayedAt); err != nil {
			return nil, err
		}
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
