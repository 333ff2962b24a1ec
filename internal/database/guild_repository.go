package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const repoTimeout = 2 * time.Second

// GuildRepository remembers the text channel each guild last used for commands,
// so announcements survive restarts. A nil repository or database is a no-op.
type GuildRepository struct {
	db *sql.DB
}

func NewGuildRepository(db *sql.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) UpsertChannel(guildID, channelID string) error {
	if r == nil || r.db == nil {
		return nil
	}
	if guildID == "" || channelID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		INSERT INTO guild_channels (guild_id, channel_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (guild_id)
		DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, guildID, channelID)
	return err
}

func (r *GuildRepository) GetChannel(guildID string) (string, bool, error) {
	if r == nil || r.db == nil {
		return "", false, nil
	}
	if guildID == "" {
		return "", false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), repoTimeout)
	defer cancel()

	const query = `
		SELECT channel_id
		FROM guild_channels
		WHERE guild_id = $1
	`

	var channelID string
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	return channelID, true, nil
}
