// Package parquet exports dashboard data to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/fosdash/schema"
	"github.com/parquet-go/parquet-go"
)

// IngestionRun is a single ingestion run.
// This struct maps to the fos_ingestion_runs database table.
type IngestionRun struct {
	// BatchID is the unique identifier of the run
	BatchID string `parquet:"batch_id,snappy"`

	// Kind is the dataset loaded by the run (complaints or cases)
	Kind string `parquet:"kind,snappy,dict"`

	// SourceFile is the base name of the ingested file
	SourceFile string `parquet:"source_file,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	RowsAccepted int32 `parquet:"rows_accepted,snappy"`
	RowsRejected int32 `parquet:"rows_rejected,snappy"`
}

// FirmTrend is the trend of one metric for one firm. A firm contributes one row per metric.
type FirmTrend struct {
	FirmName      string  `parquet:"firm_name,snappy,dict"`
	Metric        string  `parquet:"metric,snappy,dict"`
	Direction     string  `parquet:"direction,snappy,dict"`
	ChangePercent float64 `parquet:"change_percent,snappy"`
	ChangeValue   float64 `parquet:"change_value,snappy"`
	IsSignificant bool    `parquet:"is_significant"`
	Confidence    string  `parquet:"confidence,snappy,dict"`
	Periods       int32   `parquet:"periods,snappy"`

	// LatestPeriod is the last period of the yearly uphold series (nullable)
	LatestPeriod *string `parquet:"latest_period,optional,snappy"`
}

// RankedFirm is a row of a significance ranking.
type RankedFirm struct {
	Rank          int32   `parquet:"rank,snappy"`
	FirmName      string  `parquet:"firm_name,snappy"`
	Metric        string  `parquet:"metric,snappy,dict"`
	Direction     string  `parquet:"direction,snappy,dict"`
	ChangePercent float64 `parquet:"change_percent,snappy"`
	Confidence    string  `parquet:"confidence,snappy,dict"`
	Color         string  `parquet:"color,snappy,dict"`
}

// IngestionRunRows converts stored ingestion runs to Parquet rows.
func IngestionRunRows(runs []schema.IngestionRun) []IngestionRun {
	rows := make([]IngestionRun, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, IngestionRun{
			BatchID:       r.BatchID,
			Kind:          string(r.Kind),
			SourceFile:    r.SourceFile,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			RowsAccepted:  int32(r.RowsAccepted),
			RowsRejected:  int32(r.RowsRejected),
		})
	}
	return rows
}

// FirmTrendRows flattens firm trend bundles into one row per firm and metric.
func FirmTrendRows(trends []schema.FirmTrend) []FirmTrend {
	rows := make([]FirmTrend, 0, len(trends)*len(schema.AllMetrics))
	for _, ft := range trends {
		var latest *string
		if n := len(ft.YearlyData); n > 0 {
			period := ft.YearlyData[n-1].Period
			latest = &period
		}
		for _, m := range schema.AllMetrics {
			t, _ := ft.Trend(m)
			rows = append(rows, FirmTrend{
				FirmName:      ft.FirmName,
				Metric:        string(m),
				Direction:     string(t.Direction),
				ChangePercent: t.ChangePercent,
				ChangeValue:   t.ChangeValue,
				IsSignificant: t.IsSignificant,
				Confidence:    string(t.Confidence),
				Periods:       int32(t.Periods),
				LatestPeriod:  latest,
			})
		}
	}
	return rows
}

// RankedFirmRows converts a ranking to Parquet rows, numbering from 1.
func RankedFirmRows(ranked []schema.RankedFirm) []RankedFirm {
	rows := make([]RankedFirm, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, RankedFirm{
			Rank:          int32(i + 1),
			FirmName:      r.FirmName,
			Metric:        string(r.Metric),
			Direction:     string(r.Trend.Direction),
			ChangePercent: r.Trend.ChangePercent,
			Confidence:    string(r.Trend.Confidence),
			Color:         r.Display.Color,
		})
	}
	return rows
}

// Write encodes rows to w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the final row group and the footer.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteIngestionRunsParquet writes ingestion runs to a Parquet file.
func WriteIngestionRunsParquet(runs []schema.IngestionRun, outputPath string) error {
	return WriteFile(IngestionRunRows(runs), outputPath)
}

// WriteFirmTrendsParquet writes firm trends to a Parquet file.
func WriteFirmTrendsParquet(trends []schema.FirmTrend, outputPath string) error {
	return WriteFile(FirmTrendRows(trends), outputPath)
}

// ReadFile reads every row of a Parquet file written by WriteFile.
func ReadFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}
