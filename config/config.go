package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	ShardCount int `env:"SHARD_COUNT" envDefault:"0"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	AutoLeaveTimeout int           `env:"AUTO_LEAVE_TIMEOUT" envDefault:"300"`
	MaxQueueSize     int           `env:"MAX_QUEUE_SIZE" envDefault:"500"`
	ResolveTimeout   time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"30s"`
	AdvanceTimeout   time.Duration `env:"ADVANCE_TIMEOUT" envDefault:"30s"`

	DBHost     string `env:"DB_HOST"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SpotifyClientID     string  `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string  `env:"SPOTIFY_CLIENT_SECRET"`
	SpotifyRateLimit    float64 `env:"SPOTIFY_RATE_LIMIT" envDefault:"5"`

	YTDLPPath string `env:"YTDLP_PATH" envDefault:"yt-dlp"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN is required")
	}

	if strings.TrimSpace(c.CommandPrefix) == "" {
		return errors.New("COMMAND_PREFIX must not be blank")
	}

	if c.MaxQueueSize < 1 {
		return errors.New("MAX_QUEUE_SIZE must be at least 1")
	}

	if c.ResolveTimeout <= 0 {
		return errors.New("RESOLVE_TIMEOUT must be positive")
	}

	if c.AdvanceTimeout <= 0 {
		return errors.New("ADVANCE_TIMEOUT must be positive")
	}

	if c.SpotifyRateLimit <= 0 {
		return errors.New("SPOTIFY_RATE_LIMIT must be positive")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	return nil
}

func (c *Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != ""
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// AutoLeaveDelay is negative when auto-leave is disabled.
func (c *Config) AutoLeaveDelay() time.Duration {
	if c.AutoLeaveTimeout < 0 {
		return -1
	}
	return time.Duration(c.AutoLeaveTimeout) * time.Second
}
