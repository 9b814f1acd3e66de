// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/ingest"
	"github.com/huangsam/fosdash/schema"
)

// OutWriter provides a unified interface for all terminal and file reports.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteFirmTrends prints firm trend bundles using the configured output format.
func (ow *OutWriter) WriteFirmTrends(trends []schema.FirmTrend, cfg *contract.Config, duration time.Duration) error {
	return WriteFirmTrends(trends, cfg, duration)
}

// WriteRankedFirms prints a significance ranking using the configured output format.
func (ow *OutWriter) WriteRankedFirms(ranked []schema.RankedFirm, cfg *contract.Config, duration time.Duration) error {
	return WriteRankedFirms(ranked, cfg, duration)
}

// WriteBenchmark prints the industry benchmark using the configured output format.
func (ow *OutWriter) WriteBenchmark(bench schema.BenchmarkTrend, cfg *contract.Config) error {
	return WriteBenchmark(bench, cfg)
}

// WriteMetricScale prints a computed chart axis using the configured output format.
func (ow *OutWriter) WriteMetricScale(scale schema.MetricScale, cfg *contract.Config) error {
	return WriteMetricScale(scale, cfg)
}

// WriteCases prints a page of decisions using the configured output format.
func (ow *OutWriter) WriteCases(listing schema.CaseListing, cfg *contract.Config) error {
	return WriteCases(listing, cfg)
}

// WriteIngestionStatus prints the store status using the configured output format.
func (ow *OutWriter) WriteIngestionStatus(status schema.IngestionStatus, cfg *contract.Config) error {
	return WriteIngestionStatus(status, cfg)
}

// WriteCacheStatus prints the response cache status.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return WriteCacheStatus(status, cfg)
}

// WriteIngestResult prints the summary of an ingestion run using the configured output format.
func (ow *OutWriter) WriteIngestResult(result ingest.Result, cfg *contract.Config) error {
	return WriteIngestResult(result, cfg)
}
