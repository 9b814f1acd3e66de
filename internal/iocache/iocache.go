// Package iocache is for caching serialized API responses.
package iocache

import (
	"fmt"
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// NewResponseCache returns the response cache for the given backend.
func NewResponseCache(backend schema.CacheBackend, ttl time.Duration, redisURL string) (contract.ResponseCache, error) {
	switch backend {
	case schema.MemoryCache, "":
		if ttl <= 0 {
			ttl = contract.DefaultCacheTTL
		}
		return NewMemoryCache(ttl), nil

	case schema.RedisCache:
		if ttl <= 0 {
			ttl = contract.DefaultCacheTTL
		}
		return NewRedisCache(redisURL, ttl)

	case schema.NoCache:
		return NoopCache{}, nil

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be memory, redis, or none", backend)
	}
}
