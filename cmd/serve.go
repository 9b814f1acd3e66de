package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/api"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/iocache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the dashboard HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API over HTTP.",
	Long: `Start the HTTP API that backs the complaints dashboard.

Routes:
  GET  /api/overview              headline figures, benchmark and movers
  GET  /api/firms                 one summary per firm
  GET  /api/firms/{firm}/trends   trends for one firm
  GET  /api/trends/benchmark      industry benchmark
  GET  /api/trends/rank           significance ranking (?metric=&filter=&limit=)
  GET  /api/cases                 decisions (?firm=&product=&outcome=&limit=&offset=)
  GET  /api/scale                 chart axis (?metric=&chart=)
  GET  /api/ingestion/status      store and ingestion history
  POST /api/cache/invalidate      drop cached responses
  GET  /health, /ready, /livez    probes

Successful GET responses under /api are cached for --cache-ttl in the
memory or redis cache. The server stops gracefully on SIGINT or SIGTERM.

Examples:
  # Serve on the default address
  fosdash serve

  # Share cached responses between replicas
  fosdash serve --cache-backend redis --redis-url redis://localhost:6379/0

  # Development logging on another port
  fosdash serve --addr :8080 --debug`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		logger, err := api.NewLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		s, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		cache, err := iocache.NewResponseCache(cfg.CacheBackend, cfg.CacheTTL, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create response cache: %w", err)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				contract.LogWarn("Cannot close response cache", err)
			}
		}()

		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting dashboard",
			zap.String("version", version),
			zap.String("db_backend", string(s.Backend())),
			zap.String("cache_backend", string(cfg.CacheBackend)),
			zap.Duration("cache_ttl", cfg.CacheTTL),
		)

		router := api.NewRouter(core.NewDashboard(s, cfg), cache, logger)
		return api.Serve(ctx, api.NewServer(cfg.ListenAddr, router), cfg.ShutdownTimeout, logger)
	},
}
