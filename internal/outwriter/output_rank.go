package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/parquet"
	"github.com/huangsam/fosdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// rankFixedWidth is the space taken by Rank, Trend, Change, Confidence and Periods.
const rankFixedWidth = 55

// WriteRankedFirms outputs a significance ranking, dispatching based on the output format configured.
func WriteRankedFirms(ranked []schema.RankedFirm, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONRankedFirms(w, ranked)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRankedFirms(w, ranked)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteFile(parquet.RankedFirmRows(ranked), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankedFirmsTable(w, ranked, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// writeJSONRankedFirms writes the ranking with its 1-based rank added.
func writeJSONRankedFirms(w io.Writer, ranked []schema.RankedFirm) error {
	type jsonRankedFirm struct {
		Rank int `json:"rank"`
		schema.RankedFirm
	}

	output := make([]jsonRankedFirm, len(ranked))
	for i, r := range ranked {
		output[i] = jsonRankedFirm{Rank: i + 1, RankedFirm: r}
	}
	return writeJSON(w, output)
}

func writeCSVRankedFirms(w io.Writer, ranked []schema.RankedFirm) error {
	header := []string{"rank", "firm_name", "metric", "direction", "change_percent", "change_value", "confidence", "periods", "color"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range ranked {
			rec := []string{
				strconv.Itoa(i + 1),
				r.FirmName,
				string(r.Metric),
				string(r.Trend.Direction),
				fmtFloat(r.Trend.ChangePercent),
				fmtFloat(r.Trend.ChangeValue),
				string(r.Trend.Confidence),
				strconv.Itoa(r.Trend.Periods),
				r.Display.Color,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRankedFirmsTable(w io.Writer, ranked []schema.RankedFirm, cfg *contract.Config, duration time.Duration) error {
	def := schema.MustMetric(cfg.Metric)
	title := fmt.Sprintf("%s movers (%s)", def.Label, cfg.Filter)
	if _, err := fmt.Fprintln(w, contract.StatusLine(cfg.UseEmojis, "🏁", title)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Firm", "Trend", "Change", "Confidence", "Periods"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg, rankFixedWidth)
	var data [][]string
	for i, r := range ranked {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(r.FirmName, nameWidth),
			trendCell(r.Trend, r.Metric, cfg.UseColors),
			fmtFloat(r.Trend.ChangeValue),
			string(r.Trend.Confidence),
			strconv.Itoa(r.Trend.Periods),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing top %d significant firms (limit %d)\n", len(ranked), cfg.ResultLimit); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Completed in %v\n", duration.Round(time.Millisecond)); err != nil {
			return err
		}
	}
	return nil
}
