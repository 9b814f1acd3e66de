package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"go.uber.org/zap"
)

// Handler serves the dashboard endpoints.
type Handler struct {
	dash   contract.Dashboard
	cache  contract.ResponseCache
	logger *zap.Logger
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps dashboard errors to status codes. Unexpected errors are
// logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contract.ErrInvalidArgument):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contract.ErrFirmNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Overview handles GET /api/overview.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dash.GetOverview(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, overview)
}

// Firms handles GET /api/firms.
func (h *Handler) Firms(w http.ResponseWriter, r *http.Request) {
	firms, err := h.dash.GetFirms(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if firms == nil {
		firms = []schema.FirmSummary{}
	}
	h.writeJSON(w, http.StatusOK, firms)
}

// FirmTrends handles GET /api/firms/{firm}/trends.
func (h *Handler) FirmTrends(w http.ResponseWriter, r *http.Request) {
	firm := chi.URLParam(r, "firm")
	if unescaped, err := url.PathUnescape(firm); err == nil {
		firm = unescaped
	}
	trend, err := h.dash.GetFirmTrends(r.Context(), firm)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trend)
}

// BenchmarkTrends handles GET /api/trends/benchmark.
func (h *Handler) BenchmarkTrends(w http.ResponseWriter, r *http.Request) {
	bench, err := h.dash.GetBenchmarkTrends(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bench)
}

// RankedFirms handles GET /api/trends/rank?metric=&filter=&limit=.
func (h *Handler) RankedFirms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", contract.DefaultResultLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit < 1 || limit > contract.MaxResultLimit {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", contract.MaxResultLimit))
		return
	}
	metric := schema.Metric(stringParam(q, "metric", string(schema.UpholdRateMetric)))
	filter := schema.RankFilter(stringParam(q, "filter", string(schema.AllFilter)))

	ranked, err := h.dash.GetRankedFirms(r.Context(), metric, filter, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ranked)
}

// Cases handles GET /api/cases?firm=&product=&outcome=&limit=&offset=.
func (h *Handler) Cases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", contract.DefaultCaseLimit)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(q, "offset", 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit < 1 || limit > contract.MaxCaseLimit {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", contract.MaxCaseLimit))
		return
	}
	if offset < 0 {
		h.writeError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	listing, err := h.dash.GetCases(r.Context(), schema.CaseFilter{
		FirmName: strings.TrimSpace(q.Get("firm")),
		Product:  strings.TrimSpace(q.Get("product")),
		Outcome:  schema.Outcome(strings.ToLower(strings.TrimSpace(q.Get("outcome")))),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, listing)
}

// MetricScale handles GET /api/scale?metric=&chart=.
func (h *Handler) MetricScale(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metric := schema.Metric(stringParam(q, "metric", string(schema.UpholdRateMetric)))
	chart := schema.ChartType(stringParam(q, "chart", string(schema.PercentageChart)))

	scale, err := h.dash.GetMetricScale(r.Context(), metric, chart)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, scale)
}

// IngestionStatus handles GET /api/ingestion/status.
func (h *Handler) IngestionStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.dash.GetIngestionStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// InvalidateCache handles POST /api/cache/invalidate.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.writeServiceError(w, r, fmt.Errorf("failed to invalidate cache: %w", err))
		return
	}
	h.logger.Info("response cache invalidated")
	h.writeJSON(w, http.StatusOK, h.cache.Stats(r.Context()))
}

func stringParam(q url.Values, name, fallback string) string {
	if v := strings.TrimSpace(q.Get(name)); v != "" {
		return strings.ToLower(v)
	}
	return fallback
}

func intParam(q url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, raw)
	}
	return v, nil
}
