package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
	redislib "github.com/redis/go-redis/v9"
)

var (
	client *redislib.Client
	once   sync.Once
)

type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

const (
	connectAttempts = 5
	initialBackoff  = 200 * time.Millisecond
	pingTimeout     = 3 * time.Second
)

// Init connects the shared client used by the lookup cache. The first call wins.
func Init(cfg Config) (*redislib.Client, error) {
	var initErr error

	once.Do(func() {
		c := redislib.NewClient(&redislib.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		})

		if err := ping(c, connectAttempts, initialBackoff); err != nil {
			_ = c.Close()
			initErr = err
			return
		}
		client = c
		logging.Log.WithField("addr", cfg.Addr()).Info("redis: connection established")
	})

	if client == nil && initErr == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	return client, initErr
}

func ping(c *redislib.Client, attempts int, backoff time.Duration) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = c.Ping(ctx).Err()
		cancel()

		if err == nil {
			return nil
		}

		logging.Log.WithError(err).WithField("attempt", attempt).Warn("redis: ping failed")
		if attempt < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	return fmt.Errorf("redis unreachable after %d attempts: %w", attempts, err)
}

func Client() *redislib.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
