package iocache

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

type memoryEntry struct {
	value []byte
	setAt time.Time
}

// MemoryCache keeps responses in process memory. Expired entries are
// dropped lazily when they are read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	hits    int64
	misses  int64
	now     func() time.Time
}

var _ contract.ResponseCache = &MemoryCache{} // Compile-time check

// NewMemoryCache creates an empty in-memory cache with the given TTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the value for key if it has not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	// Counters and lazy expiry both mutate, so reads take the write lock.
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(entry) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.value, true
}

// Set stores a copy of value under key.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: stored, setAt: c.now()}
}

// Invalidate drops every entry.
func (c *MemoryCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}

// Stats reports the live entries and hit counters.
func (c *MemoryCache) Stats(_ context.Context) schema.CacheStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := schema.CacheStatus{
		Backend:    string(schema.MemoryCache),
		Connected:  true,
		Hits:       c.hits,
		Misses:     c.misses,
		TTLSeconds: int64(c.ttl / time.Second),
	}
	for _, entry := range c.entries {
		if c.expired(entry) {
			continue
		}
		status.Entries++
		if status.OldestSet.IsZero() || entry.setAt.Before(status.OldestSet) {
			status.OldestSet = entry.setAt
		}
	}
	return status
}

// Close releases nothing; the cache lives as long as the process.
func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) expired(entry memoryEntry) bool {
	return c.now().Sub(entry.setAt) >= c.ttl
}
