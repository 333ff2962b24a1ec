package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/jukebox/config"
	"github.com/hxnx/jukebox/internal/database"
	commands "github.com/hxnx/jukebox/internal/features"
	musiccmd "github.com/hxnx/jukebox/internal/features/music/commands"
	musiclisteners "github.com/hxnx/jukebox/internal/features/music/listeners"
	"github.com/hxnx/jukebox/internal/logging"
	"github.com/hxnx/jukebox/internal/music"
	"github.com/hxnx/jukebox/internal/redis"
)

type Bot struct {
	config       *config.Config
	sessions     []*discordgo.Session
	registry     *music.Registry
	dispatcher   *commands.Dispatcher
	started      bool
	presenceStop chan struct{}
}

func New(cfg *config.Config) (*Bot, error) {
	var (
		guilds  *database.GuildRepository
		history *database.HistoryRepository
	)
	if cfg.DatabaseEnabled() {
		dbConfig := &database.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}

		if err := database.Initialize(dbConfig); err != nil {
			logging.Log.WithError(err).Warn("database initialization failed, history disabled")
		} else {
			guilds = database.NewGuildRepository(database.GetDB())
			history = database.NewHistoryRepository(database.GetDB())
		}
	}

	resolver := music.NewResolver(music.NewYouTube(cfg.YTDLPPath), cfg.ResolveTimeout)

	if cfg.RedisEnabled() {
		redisConfig := redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}

		if client, err := redis.Init(redisConfig); err != nil {
			logging.Log.WithError(err).Warn("redis initialization failed, lookup cache disabled")
		} else {
			resolver.WithCache(music.NewRedisCache(client))
		}
	}

	if cfg.SpotifyEnabled() {
		resolver.WithCatalog(music.NewSpotifyClient(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRateLimit))
	} else {
		logging.Log.Info("spotify credentials not set, spotify links are disabled")
	}

	sessions, err := newSessions(cfg)
	if err != nil {
		return nil, err
	}

	announcer := musiclisteners.NewAnnouncer(sessions[0], guilds)
	observers := []music.Observer{announcer}
	if history != nil {
		observers = append(observers, history)
	}

	registry := music.NewRegistry(music.NewDiscordVoice(sessions), music.Options{
		MaxQueueSize:   cfg.MaxQueueSize,
		AdvanceTimeout: cfg.AdvanceTimeout,
		Observers:      observers,
	})

	handlers := musiccmd.New(registry, resolver)
	if history != nil {
		handlers.WithHistory(history)
	}

	dispatcher := commands.New(handlers, announcer, commands.Options{
		Prefix:         cfg.CommandPrefix,
		AutoLeaveDelay: cfg.AutoLeaveDelay(),
	})

	return &Bot{
		config:     cfg,
		sessions:   sessions,
		registry:   registry,
		dispatcher: dispatcher,
	}, nil
}

func newSessions(cfg *config.Config) ([]*discordgo.Session, error) {
	shardCount := cfg.ShardCount
	if shardCount < 1 {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		if gw, err := s.GatewayBot(); err == nil && gw.Shards > 0 {
			shardCount = gw.Shards
		} else {
			logging.Log.WithError(err).Warn("failed to auto-detect shard count, defaulting to 1")
			shardCount = 1
		}
	}

	sessions := make([]*discordgo.Session, 0, shardCount)
	for shard := 0; shard < shardCount; shard++ {
		s, err := discordgo.New("Bot " + cfg.DiscordToken)
		if err != nil {
			return nil, err
		}

		s.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildVoiceStates |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsMessageContent

		if shardCount > 1 {
			s.Identify.Shard = &[2]int{shard, shardCount}
			s.ShardID = shard
			s.ShardCount = shardCount
		}

		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (b *Bot) Start() error {
	if b.started {
		return nil
	}

	for _, s := range b.sessions {
		b.registerHandlers(s)
		b.dispatcher.AddHandlers(s)
	}

	for _, s := range b.sessions {
		if err := s.Open(); err != nil {
			return err
		}
	}

	b.startPresenceUpdater()
	b.started = true
	logging.Log.WithField("shards", len(b.sessions)).Info("bot session opened")
	return nil
}

func (b *Bot) registerHandlers(s *discordgo.Session) {
	s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		if s.State != nil && s.State.User != nil {
			logging.Log.WithField("user", s.State.User.Username).WithField("shard", s.ShardID).Info("bot ready")
		} else {
			logging.Log.Info("bot ready")
		}
		b.updatePresence()
	})
}

func (b *Bot) Stop() error {
	if !b.started {
		return nil
	}

	b.started = false
	b.stopPresenceUpdater()

	// players first so voice connections close while the gateway is still up
	b.registry.Close()

	for _, s := range b.sessions {
		if err := s.Close(); err != nil {
			return err
		}
	}

	if err := database.Close(); err != nil {
		logging.Log.WithError(err).Warn("failed to close database")
	}

	if err := redis.Close(); err != nil {
		logging.Log.WithError(err).Warn("failed to close redis")
	}

	logging.Log.WithField("shards", len(b.sessions)).Info("bot session closed")
	return nil
}
