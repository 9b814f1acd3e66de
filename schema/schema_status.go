package schema

import "time"

// CacheStatus represents the status of the response cache.
type CacheStatus struct {
	Backend    string    `json:"backend"`
	Connected  bool      `json:"connected"`
	Entries    int       `json:"entries"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	TTLSeconds int64     `json:"ttl_seconds"`
	OldestSet  time.Time `json:"oldest_set,omitempty"`
}

// IngestionKind names the dataset loaded by an ingestion run.
type IngestionKind string

// Ingestion kinds.
const (
	ComplaintsIngestion IngestionKind = "complaints"
	CasesIngestion      IngestionKind = "cases"
)

// ValidIngestionKinds lists all valid ingestion kinds.
var ValidIngestionKinds = map[IngestionKind]struct{}{
	ComplaintsIngestion: {},
	CasesIngestion:      {},
}

// IngestionRun is a row from the fos_ingestion_runs table.
type IngestionRun struct {
	BatchID       string        `json:"batch_id"`
	Kind          IngestionKind `json:"kind"`
	SourceFile    string        `json:"source_file"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       *time.Time    `json:"end_time,omitempty"`
	RunDurationMs *int64        `json:"run_duration_ms,omitempty"`
	RowsAccepted  int           `json:"rows_accepted"`
	RowsRejected  int           `json:"rows_rejected"`
}

// IngestionStatus represents the status of the complaint store and its ingestion history.
type IngestionStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRun       *IngestionRun    `json:"last_run,omitempty"`
	OldestRunTime time.Time        `json:"oldest_run_time,omitempty"`
	TotalAccepted int              `json:"total_rows_accepted"`
	TotalRejected int              `json:"total_rows_rejected"`
	TableSizes    map[string]int64 `json:"table_sizes"`
	SchemaVersion uint             `json:"schema_version"`
}
