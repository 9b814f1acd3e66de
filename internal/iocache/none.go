package iocache

import (
	"context"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// NoopCache never stores anything.
type NoopCache struct{}

var _ contract.ResponseCache = NoopCache{} // Compile-time check

// Get always misses.
func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }

// Set discards the value.
func (NoopCache) Set(context.Context, string, []byte) {}

// Invalidate is a no-op.
func (NoopCache) Invalidate(context.Context) error { return nil }

// Stats reports a disabled cache.
func (NoopCache) Stats(context.Context) schema.CacheStatus {
	return schema.CacheStatus{Backend: string(schema.NoCache)}
}

// Close is a no-op.
func (NoopCache) Close() error { return nil }
