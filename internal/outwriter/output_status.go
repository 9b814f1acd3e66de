package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/ingest"
	"github.com/huangsam/fosdash/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// maxRowErrors bounds the rejected rows listed after an ingestion run.
const maxRowErrors = 10

// WriteIngestionStatus outputs the store status and its ingestion history.
func WriteIngestionStatus(status schema.IngestionStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVIngestionStatus(w, status)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedParquet("status; use export")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIngestionStatusText(w, status, time.Now())
		}, "Wrote text")
	}
}

func writeCSVIngestionStatus(w io.Writer, status schema.IngestionStatus) error {
	header := []string{"backend", "connected", "schema_version", "total_runs", "rows_accepted", "rows_rejected", "last_batch_id"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		lastBatch := ""
		if status.LastRun != nil {
			lastBatch = status.LastRun.BatchID
		}
		return cw.Write([]string{
			status.Backend,
			strconv.FormatBool(status.Connected),
			strconv.FormatUint(uint64(status.SchemaVersion), 10),
			strconv.Itoa(status.TotalRuns),
			strconv.Itoa(status.TotalAccepted),
			strconv.Itoa(status.TotalRejected),
			lastBatch,
		})
	})
}

func writeIngestionStatusText(w io.Writer, status schema.IngestionStatus, now time.Time) error {
	lines := []string{
		fmt.Sprintf("Store Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines,
			fmt.Sprintf("Schema Version: %d", status.SchemaVersion),
			fmt.Sprintf("Total Runs: %d", status.TotalRuns),
		)
		if run := status.LastRun; run != nil {
			lines = append(lines,
				fmt.Sprintf("Last Run: %s (%s, %s from %s, %s)", run.BatchID, run.Kind,
					run.StartTime.Format(statusTimeFormat), run.SourceFile, humanize.RelTime(run.StartTime, now, "ago", "from now")),
				fmt.Sprintf("Oldest Run: %s", status.OldestRunTime.Format(statusTimeFormat)),
			)
		}
		lines = append(lines,
			fmt.Sprintf("Rows Accepted: %s", fmtCount(status.TotalAccepted)),
			fmt.Sprintf("Rows Rejected: %s", fmtCount(status.TotalRejected)),
			"Table Sizes:",
		)
		tables := make([]string, 0, len(status.TableSizes))
		for table := range status.TableSizes {
			tables = append(tables, table)
		}
		slices.Sort(tables)
		for _, table := range tables {
			lines = append(lines, fmt.Sprintf("  %s: %s rows", table, humanize.Comma(status.TableSizes[table])))
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteCacheStatus outputs the response cache status.
func WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCacheStatusText(w, status)
	}, "Wrote text")
}

func writeCacheStatusText(w io.Writer, status schema.CacheStatus) error {
	if _, err := fmt.Fprintf(w, "Cache Backend: %s\nConnected: %t\n", status.Backend, status.Connected); err != nil {
		return err
	}
	if !status.Connected {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Entries: %d\nHits: %d\nMisses: %d\nTTL: %s\n",
		status.Entries, status.Hits, status.Misses, time.Duration(status.TTLSeconds)*time.Second); err != nil {
		return err
	}
	return nil
}

// WriteIngestResult outputs the summary of an ingestion run.
func WriteIngestResult(result ingest.Result, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRowErrors(w, result.Errors)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedParquet("ingest")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIngestResultText(w, result, cfg)
		}, "Wrote text")
	}
}

// writeCSVRowErrors lists every rejected row.
func writeCSVRowErrors(w io.Writer, rowErrors []ingest.RowError) error {
	return writeCSVWithHeader(w, []string{"line", "reason"}, func(cw *csv.Writer) error {
		for _, e := range rowErrors {
			if err := cw.Write([]string{strconv.Itoa(e.Line), e.Reason}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeIngestResultText(w io.Writer, result ingest.Result, cfg *contract.Config) error {
	msg := fmt.Sprintf("Ingested %s %s from %s in %v (batch %s)",
		fmtCount(result.Accepted), result.Kind, result.SourceFile, result.Duration.Round(time.Millisecond), result.BatchID)
	if _, err := fmt.Fprintln(w, contract.StatusLine(cfg.UseEmojis, "📥", msg)); err != nil {
		return err
	}
	if result.Rejected == 0 {
		return nil
	}

	msg = fmt.Sprintf("Rejected %s rows", fmtCount(result.Rejected))
	if _, err := fmt.Fprintln(w, contract.StatusLine(cfg.UseEmojis, "⚠️ ", msg)); err != nil {
		return err
	}
	for i, e := range result.Errors {
		if i == maxRowErrors {
			if _, err := fmt.Fprintf(w, "  ... and %d more (use --output csv for the full list)\n", len(result.Errors)-maxRowErrors); err != nil {
				return err
			}
			break
		}
		if _, err := fmt.Fprintf(w, "  %s\n", e.Error()); err != nil {
			return err
		}
	}
	return nil
}
