package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, 500, cfg.MaxQueueSize)
	assert.Equal(t, 30*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, 30*time.Second, cfg.AdvanceTimeout)
	assert.Equal(t, 300*time.Second, cfg.AutoLeaveDelay())
	assert.Equal(t, "yt-dlp", cfg.YTDLPPath)
	assert.False(t, cfg.SpotifyEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("ADVANCE_TIMEOUT", "5s")
	t.Setenv("AUTO_LEAVE_TIMEOUT", "-1")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "?", cfg.CommandPrefix)
	assert.Equal(t, 5*time.Second, cfg.AdvanceTimeout)
	assert.Less(t, cfg.AutoLeaveDelay(), time.Duration(0))
	assert.True(t, cfg.SpotifyEnabled())
	assert.True(t, cfg.RedisEnabled())
	assert.False(t, cfg.DatabaseEnabled())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DiscordToken:     "token",
			CommandPrefix:    "!",
			MaxQueueSize:     10,
			ResolveTimeout:   time.Second,
			AdvanceTimeout:   time.Second,
			SpotifyRateLimit: 1,
			LogFormat:        "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.DiscordToken = "" }, wantErr: "DISCORD_TOKEN"},
		{name: "blank prefix", mutate: func(c *Config) { c.CommandPrefix = " " }, wantErr: "COMMAND_PREFIX"},
		{name: "zero queue", mutate: func(c *Config) { c.MaxQueueSize = 0 }, wantErr: "MAX_QUEUE_SIZE"},
		{name: "zero advance timeout", mutate: func(c *Config) { c.AdvanceTimeout = 0 }, wantErr: "ADVANCE_TIMEOUT"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
