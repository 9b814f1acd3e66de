package cmd

import (
	"fmt"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheCmd focused on cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the API response cache",
	Long: `Manage the cache of serialized API responses used by 'fosdash serve'.

Successful GET responses under /api are cached by request URI for
--cache-ttl. Loading new data through 'fosdash ingest' invalidates them.

Supported backends: Memory (default, per server process), Redis (shared),
or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached responses

Examples:
  # Check a shared redis cache
  fosdash cache status --cache-backend redis --redis-url redis://localhost:6379/0

  # Clear it after fixing data by hand
  FOSDASH_CACHE_BACKEND=redis FOSDASH_REDIS_URL=redis://localhost:6379/0 fosdash cache clear`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, connection state, entry count and hit ratio of the
response cache.

The memory cache lives inside a running server, so from the CLI it always
reports zero entries. Use the redis backend to inspect a shared cache.

Examples:
  fosdash cache status --cache-backend redis --redis-url redis://localhost:6379/0`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache, err := iocache.NewResponseCache(cfg.CacheBackend, cfg.CacheTTL, cfg.RedisURL)
		if err != nil {
			contract.LogFatal("Failed to open response cache", err)
		}
		status := cache.Stats(rootCtx)
		_ = cache.Close()
		if err := writer.WriteCacheStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write cache status", err)
		}
	},
}

// cacheClearCmd drops every cached response.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached API responses",
	Long: `Delete every cached response from the shared redis cache.

A memory cache belongs to its server process; clear it with
POST /api/cache/invalidate on that server instead.

Examples:
  fosdash cache clear --cache-backend redis --redis-url redis://localhost:6379/0`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache, err := sharedCache()
		if err != nil {
			contract.LogFatal("Failed to open response cache", err)
		}
		if cache == nil {
			fmt.Printf("The %s cache is not shared. Use POST /api/cache/invalidate on the running server.\n", cfg.CacheBackend)
			return
		}
		defer func() { _ = cache.Close() }()

		if err := cache.Invalidate(rootCtx); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}
