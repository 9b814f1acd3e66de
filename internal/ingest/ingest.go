package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// Result summarizes one ingestion run.
type Result struct {
	BatchID    string               `json:"batch_id"`
	Kind       schema.IngestionKind `json:"kind"`
	SourceFile string               `json:"source_file"`
	Accepted   int                  `json:"rows_accepted"`
	Rejected   int                  `json:"rows_rejected"`
	Errors     []RowError           `json:"errors,omitempty"`
	Duration   time.Duration        `json:"duration_ns"`
}

// Ingester loads CSV files into the store and records each run.
type Ingester struct {
	store contract.Store
	cache contract.ResponseCache
	now   func() time.Time
	newID func() string
}

// NewIngester creates an Ingester. cache may be nil when no server shares the store.
func NewIngester(store contract.Store, cache contract.ResponseCache) *Ingester {
	return &Ingester{
		store: store,
		cache: cache,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// IngestFile loads the CSV file at path as the given kind.
func (in *Ingester) IngestFile(ctx context.Context, kind schema.IngestionKind, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return in.Ingest(ctx, kind, filepath.Base(path), f)
}

// Ingest parses r, stores the accepted rows under a new batch id and records the run.
// Cached responses are invalidated once rows are committed.
func (in *Ingester) Ingest(ctx context.Context, kind schema.IngestionKind, source string, r io.Reader) (Result, error) {
	if _, ok := schema.ValidIngestionKinds[kind]; !ok {
		return Result{}, fmt.Errorf("unsupported ingestion kind: %s. Must be complaints or cases", kind)
	}

	start := in.now()
	result := Result{BatchID: in.newID(), Kind: kind, SourceFile: source}
	run := schema.IngestionRun{BatchID: result.BatchID, Kind: kind, SourceFile: source, StartTime: start}
	if err := in.store.BeginIngestion(ctx, run); err != nil {
		return result, fmt.Errorf("failed to record ingestion start: %w", err)
	}

	accepted, rejected, err := in.load(ctx, kind, result.BatchID, r)
	result.Errors = rejected
	result.Rejected = len(rejected)
	if err == nil {
		result.Accepted = accepted
	}

	end := in.now()
	result.Duration = end.Sub(start)
	if endErr := in.store.EndIngestion(ctx, result.BatchID, end, result.Accepted, result.Rejected); endErr != nil && err == nil {
		err = fmt.Errorf("failed to record ingestion end: %w", endErr)
	}
	if err != nil {
		return result, err
	}

	if in.cache != nil && result.Accepted > 0 {
		if err := in.cache.Invalidate(ctx); err != nil {
			contract.LogWarn("Failed to invalidate response cache", err)
		}
	}
	return result, nil
}

func (in *Ingester) load(ctx context.Context, kind schema.IngestionKind, batchID string, r io.Reader) (int, []RowError, error) {
	switch kind {
	case schema.CasesIngestion:
		records, rejected, err := ParseCases(r)
		if err != nil {
			return 0, nil, err
		}
		for i := range records {
			records[i].BatchID = batchID
		}
		n, err := in.store.InsertCases(ctx, records)
		return n, rejected, err

	default:
		records, rejected, err := ParseComplaints(r)
		if err != nil {
			return 0, nil, err
		}
		for i := range records {
			records[i].BatchID = batchID
		}
		n, err := in.store.InsertComplaints(ctx, records)
		return n, rejected, err
	}
}
