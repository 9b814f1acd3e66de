// Package api serves the dashboard over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/huangsam/fosdash/internal/contract"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// requestTimeout bounds every API request.
const requestTimeout = 30 * time.Second

// NewLogger returns the server logger: development output with debug, JSON otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// NewRouter builds the root handler. API responses are cached by request URI;
// health probes always reach the handlers.
func NewRouter(dash contract.Dashboard, cache contract.ResponseCache, logger *zap.Logger) http.Handler {
	h := &Handler{dash: dash, cache: cache, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)

	r.Route("/api", func(r chi.Router) {
		r.Post("/cache/invalidate", h.InvalidateCache)

		r.Group(func(r chi.Router) {
			r.Use(responseCache(cache, logger))
			r.Get("/overview", h.Overview)
			r.Get("/firms", h.Firms)
			r.Get("/firms/{firm}/trends", h.FirmTrends)
			r.Get("/trends/benchmark", h.BenchmarkTrends)
			r.Get("/trends/rank", h.RankedFirms)
			r.Get("/cases", h.Cases)
			r.Get("/scale", h.MetricScale)
			r.Get("/ingestion/status", h.IngestionStatus)
		})
	})

	return r
}

// NewServer wraps handler in an http.Server listening on addr.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down within shutdownTimeout.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down", zap.Duration("timeout", shutdownTimeout))
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
