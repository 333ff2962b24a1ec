package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hxnx/jukebox/config"
	"github.com/hxnx/jukebox/internal/bot"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Log.WithError(err).Error("failed to load configuration")
		logging.Log.Info("required: DISCORD_TOKEN")
		logging.Log.Info("optional: COMMAND_PREFIX, SHARD_COUNT, LOG_LEVEL, LOG_FORMAT, MAX_QUEUE_SIZE, AUTO_LEAVE_TIMEOUT, RESOLVE_TIMEOUT, ADVANCE_TIMEOUT, YTDLP_PATH")
		logging.Log.Info("database: DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSLMODE")
		logging.Log.Info("redis: REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB")
		logging.Log.Info("spotify: SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_RATE_LIMIT")
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	autoLeave := "disabled"
	if d := cfg.AutoLeaveDelay(); d >= 0 {
		autoLeave = d.String()
	}
	var shards any = "auto"
	if cfg.ShardCount > 0 {
		shards = cfg.ShardCount
	}

	logging.Log.WithFields(logrus.Fields{
		"prefix":          cfg.CommandPrefix,
		"max_queue":       cfg.MaxQueueSize,
		"auto_leave":      autoLeave,
		"resolve_timeout": cfg.ResolveTimeout,
		"advance_timeout": cfg.AdvanceTimeout,
		"shards":          shards,
		"database":        cfg.DatabaseEnabled(),
		"redis":           cfg.RedisEnabled(),
		"spotify":         cfg.SpotifyEnabled(),
	}).Info("configuration loaded")

	b, err := bot.New(cfg)
	if err != nil {
		logging.Log.WithError(err).Fatal("failed to create bot")
	}

	if err := b.Start(); err != nil {
		logging.Log.WithError(err).Fatal("failed to start bot")
	}

	logging.Log.Info("bot is running, press CTRL+C to exit")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logging.Log.Info("shutting down")
	if err := b.Stop(); err != nil {
		logging.Log.WithError(err).Error("failed to stop bot")
	}
}
