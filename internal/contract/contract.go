// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/fosdash/schema"
)

// ErrFirmNotFound is returned when a firm has no complaint rows.
var ErrFirmNotFound = errors.New("firm not found")

// ErrInvalidArgument is returned when a query names an unknown metric, filter, outcome or chart type.
var ErrInvalidArgument = errors.New("invalid argument")

// Store defines the read and write operations over complaint data, decisions and ingestion runs.
// This allows the dashboard service to be tested without a real database.
type Store interface {
	// --- Dashboard reads ---

	// Overview returns dataset-wide totals and averages.
	Overview(ctx context.Context) (schema.OverviewMetrics, error)

	// ListFirms returns one summary per firm, ordered by firm name.
	ListFirms(ctx context.Context) ([]schema.FirmSummary, error)

	// FirmRows returns the metric rows of a single firm, matched case-insensitively.
	FirmRows(ctx context.Context, firm string) ([]schema.FirmYearRow, error)

	// AllFirmRows returns the metric rows of every firm, ordered by firm and year.
	AllFirmRows(ctx context.Context) ([]schema.FirmYearRow, error)

	// BenchmarkRows returns the industry-wide yearly averages.
	BenchmarkRows(ctx context.Context) ([]schema.BenchmarkRow, error)

	// ListCases returns a page of decisions matching the filter.
	ListCases(ctx context.Context, filter schema.CaseFilter) (schema.CaseListing, error)

	// --- Ingestion ---

	// InsertComplaints stores complaint rows and returns how many were written.
	InsertComplaints(ctx context.Context, records []schema.ComplaintRecord) (int, error)

	// InsertCases stores decisions and returns how many were written.
	InsertCases(ctx context.Context, records []schema.CaseRecord) (int, error)

	// BeginIngestion records the start of an ingestion run.
	BeginIngestion(ctx context.Context, run schema.IngestionRun) error

	// EndIngestion records the completion of an ingestion run.
	EndIngestion(ctx context.Context, batchID string, endTime time.Time, accepted, rejected int) error

	// IngestionStatus returns status information about stored ingestion runs.
	IngestionStatus(ctx context.Context) (schema.IngestionStatus, error)

	// ListIngestionRuns returns every ingestion run, oldest first.
	ListIngestionRuns(ctx context.Context) ([]schema.IngestionRun, error)

	// --- Lifecycle ---

	// Ping verifies the underlying connection.
	Ping(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}

// ResponseCache holds serialized responses for a limited time.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context) error
	Stats(ctx context.Context) schema.CacheStatus
	Close() error
}

// Dashboard answers the dashboard queries served over HTTP and MCP.
type Dashboard interface {
	GetOverview(ctx context.Context) (schema.DashboardOverview, error)
	GetFirms(ctx context.Context) ([]schema.FirmSummary, error)
	GetFirmTrends(ctx context.Context, firm string) (schema.FirmTrend, error)
	GetAllFirmTrends(ctx context.Context) ([]schema.FirmTrend, error)
	GetBenchmarkTrends(ctx context.Context) (schema.BenchmarkTrend, error)
	GetRankedFirms(ctx context.Context, metric schema.Metric, filter schema.RankFilter, limit int) ([]schema.RankedFirm, error)
	GetCases(ctx context.Context, filter schema.CaseFilter) (schema.CaseListing, error)
	GetMetricScale(ctx context.Context, metric schema.Metric, chartType schema.ChartType) (schema.MetricScale, error)
	GetIngestionStatus(ctx context.Context) (schema.IngestionStatus, error)
	Ping(ctx context.Context) error
}
