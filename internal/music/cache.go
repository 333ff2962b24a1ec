package music

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hxnx/jukebox/internal/logging"
	redislib "github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix = "music:catalog:"
	searchKeyPrefix  = "music:search:"
	catalogCacheTTL  = 24 * time.Hour
	searchCacheTTL   = time.Hour
)

// RedisCache is a LookupCache. Failures are logged and reported as misses.
type RedisCache struct {
	client *redislib.Client
}

func NewRedisCache(client *redislib.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) CatalogTrack(ctx context.Context, id string) (CatalogTrack, bool) {
	raw, ok := c.get(ctx, catalogKeyPrefix+id)
	if !ok {
		return CatalogTrack{}, false
	}

	var track CatalogTrack
	if err := json.Unmarshal([]byte(raw), &track); err != nil {
		logging.Log.WithError(err).WithField("id", id).Warn("cache: dropping corrupt catalog entry")
		_ = c.client.Del(ctx, catalogKeyPrefix+id).Err()
		return CatalogTrack{}, false
	}
	return track, true
}

func (c *RedisCache) StoreCatalogTrack(ctx context.Context, track CatalogTrack) {
	if track.ID == "" {
		return
	}
	payload, err := json.Marshal(track)
	if err != nil {
		return
	}
	c.set(ctx, catalogKeyPrefix+track.ID, string(payload), catalogCacheTTL)
}

func (c *RedisCache) SearchHit(ctx context.Context, query string) (string, bool) {
	return c.get(ctx, searchKeyPrefix+query)
}

func (c *RedisCache) StoreSearchHit(ctx context.Context, query, pageURL string) {
	c.set(ctx, searchKeyPrefix+query, pageURL, searchCacheTTL)
}

func (c *RedisCache) get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			logging.Log.WithError(err).WithField("key", key).Warn("cache: get failed")
		}
		return "", false
	}
	return v, true
}

func (c *RedisCache) set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		logging.Log.WithError(err).WithField("key", key).Warn("cache: set failed")
	}
}
