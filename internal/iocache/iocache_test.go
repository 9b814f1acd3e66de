package iocache

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move the memory cache through its TTL.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemoryCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewMemoryCache(ttl)
	cache.now = clock.Now
	return cache, clock
}

func TestNewResponseCache(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.CacheBackend
		expectType  any
		expectError string
	}{
		{name: "memory", backend: schema.MemoryCache, expectType: &MemoryCache{}},
		{name: "empty defaults to memory", backend: "", expectType: &MemoryCache{}},
		{name: "none", backend: schema.NoCache, expectType: NoopCache{}},
		{name: "unknown", backend: "memcached", expectError: "unsupported cache backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache, err := NewResponseCache(tt.backend, 0, "")
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expectType, cache)
		})
	}
}

func TestNewResponseCache_RedisInvalidURL(t *testing.T) {
	_, err := NewResponseCache(schema.RedisCache, time.Minute, "not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestMemoryCache(time.Minute)

	_, ok := cache.Get(ctx, "/api/firms")
	assert.False(t, ok)

	cache.Set(ctx, "/api/firms", []byte(`[{"firm_name":"Acme"}]`))
	got, ok := cache.Get(ctx, "/api/firms")
	require.True(t, ok)
	assert.Equal(t, `[{"firm_name":"Acme"}]`, string(got))

	stats := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(60), stats.TTLSeconds)
	assert.True(t, stats.Connected)
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestMemoryCache(time.Minute)

	value := []byte("original")
	cache.Set(ctx, "k", value)
	value[0] = 'X'

	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "original", string(got))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	cache, clock := newTestMemoryCache(5 * time.Minute)

	cache.Set(ctx, "k", []byte("v"))
	clock.Advance(4*time.Minute + 59*time.Second)
	_, ok := cache.Get(ctx, "k")
	assert.True(t, ok, "entry is live just before the TTL")

	clock.Advance(time.Second)
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok, "entry expires at the TTL")

	cache.mu.RLock()
	_, present := cache.entries["k"]
	cache.mu.RUnlock()
	assert.False(t, present, "expired entry is removed on read")
}

func TestMemoryCache_StatsSkipsExpired(t *testing.T) {
	ctx := context.Background()
	cache, clock := newTestMemoryCache(time.Minute)

	cache.Set(ctx, "old", []byte("1"))
	clock.Advance(30 * time.Second)
	setAt := clock.Now()
	cache.Set(ctx, "new", []byte("2"))
	clock.Advance(45 * time.Second)

	stats := cache.Stats(ctx)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, setAt, stats.OldestSet)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestMemoryCache(time.Minute)

	cache.Set(ctx, "a", []byte("1"))
	cache.Set(ctx, "b", []byte("2"))
	require.NoError(t, cache.Invalidate(ctx))

	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Stats(ctx).Entries)
	assert.NoError(t, cache.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%4))
			for range 100 {
				cache.Set(ctx, key, []byte{byte(i)})
				cache.Get(ctx, key)
			}
			if i == 0 {
				_ = cache.Invalidate(ctx)
			}
		}(i)
	}
	wg.Wait()

	stats := cache.Stats(ctx)
	assert.Equal(t, int64(1600), stats.Hits+stats.Misses)
	assert.LessOrEqual(t, stats.Entries, 4)
}

func TestNoopCache(t *testing.T) {
	ctx := context.Background()
	cache := NoopCache{}

	cache.Set(ctx, "k", []byte("v"))
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, cache.Invalidate(ctx))
	assert.Equal(t, schema.CacheStatus{Backend: "none"}, cache.Stats(ctx))
	assert.NoError(t, cache.Close())
}

// TestRedisCache runs against a live server named by FOSDASH_TEST_REDIS_URL.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("FOSDASH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FOSDASH_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	cache, err := NewRedisCache(url, time.Minute)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()
	require.NoError(t, cache.Invalidate(ctx))

	_, ok := cache.Get(ctx, "/api/overview")
	assert.False(t, ok)

	cache.Set(ctx, "/api/overview", []byte(`{"total_complaints":3}`))
	got, ok := cache.Get(ctx, "/api/overview")
	require.True(t, ok)
	assert.Equal(t, `{"total_complaints":3}`, string(got))

	ttl, err := cache.client.TTL(ctx, redisKeyPrefix+"/api/overview").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	stats := cache.Stats(ctx)
	assert.True(t, stats.Connected)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok = cache.Get(ctx, "/api/overview")
	assert.False(t, ok)
}
