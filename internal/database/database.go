package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
	_ "github.com/lib/pq"
)

var (
	db   *sql.DB
	once sync.Once
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (cfg *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, cfg.SSLMode,
	)

	if cfg.Password != "" {
		connStr += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return connStr
}

func Initialize(cfg *Config) error {
	var initError error

	once.Do(func() {
		conn, err := sql.Open("postgres", cfg.ConnectionString())
		if err != nil {
			initError = fmt.Errorf("failed to open database: %w", err)
			return
		}

		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			initError = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		if err := runMigrations(ctx, conn); err != nil {
			_ = conn.Close()
			initError = fmt.Errorf("failed to run migrations: %w", err)
			return
		}

		db = conn
		logging.Log.Info("database: connection established")
	})

	return initError
}

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS guild_channels (
		guild_id TEXT PRIMARY KEY,
		channel_id TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
	`
	CREATE TABLE IF NOT EXISTS playback_history (
		id BIGSERIAL PRIMARY KEY,
		guild_id TEXT NOT NULL,
		title TEXT NOT NULL,
		page_url TEXT NOT NULL DEFAULT '',
		origin TEXT NOT NULL,
		requested_by TEXT NOT NULL DEFAULT '',
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		played_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
	`CREATE INDEX IF NOT EXISTS playback_history_guild_idx ON playback_history (guild_id, played_at DESC);`,
}

func runMigrations(ctx context.Context, conn *sql.DB) error {
	for _, m := range migrations {
		if _, err := conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("failed to execute migration: %w\nQuery: %s", err, m)
		}
	}
	logging.Log.WithField("count", len(migrations)).Info("database: migrations completed")
	return nil
}

func GetDB() *sql.DB {
	return db
}

func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
