package music

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCacheCatalogTrack(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.CatalogTrack(ctx, "abc")
	assert.False(t, ok)

	want := CatalogTrack{ID: "abc", Title: "Song", Artists: []string{"Band"}, Thumbnail: "https://img", Duration: 180}
	c.StoreCatalogTrack(ctx, want)

	got, ok := c.CatalogTrack(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, catalogCacheTTL, mr.TTL(catalogKeyPrefix+"abc"))

	mr.FastForward(catalogCacheTTL + time.Second)
	_, ok = c.CatalogTrack(ctx, "abc")
	assert.False(t, ok)
}

func TestRedisCacheSkipsTrackWithoutID(t *testing.T) {
	c, mr := newTestCache(t)

	c.StoreCatalogTrack(context.Background(), CatalogTrack{Title: "orphan"})
	assert.Empty(t, mr.Keys())
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(catalogKeyPrefix+"bad", "{not json"))

	_, ok := c.CatalogTrack(context.Background(), "bad")
	assert.False(t, ok)
	assert.False(t, mr.Exists(catalogKeyPrefix+"bad"))
}

func TestRedisCacheSearchHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.StoreSearchHit(ctx, "song band", "https://www.youtube.com/watch?v=a")

	got, ok := c.SearchHit(ctx, "song band")
	require.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", got)
	assert.Equal(t, searchCacheTTL, mr.TTL(searchKeyPrefix+"song band"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	c.StoreSearchHit(ctx, "q", "u")
	_, ok := c.SearchHit(ctx, "q")
	assert.False(t, ok)
}
