package api

import (
	"context"
	"net/http"
	"time"

	"github.com/huangsam/fosdash/schema"
	"go.uber.org/zap"
)

// probeTimeout bounds the store ping behind health probes.
const probeTimeout = 5 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Health checks the store and the response cache.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Services: make(map[string]string)}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.dash.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Services["store"] = "unavailable"
		h.logger.Warn("health check: store ping failed", zap.Error(err))
	} else {
		resp.Services["store"] = "ok"
	}

	cacheStatus := h.cache.Stats(ctx)
	switch {
	case cacheStatus.Connected:
		resp.Services["cache"] = "ok"
	case cacheStatus.Backend == string(schema.NoCache):
		resp.Services["cache"] = "disabled"
	default:
		resp.Status = "degraded"
		resp.Services["cache"] = "unavailable"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// Ready reports whether the store accepts queries.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	if err := h.dash.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Live reports that the process is serving requests.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
