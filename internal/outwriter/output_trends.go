package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/parquet"
	"github.com/huangsam/fosdash/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// benchmarkName labels the industry benchmark in exports that are keyed by firm.
const benchmarkName = "Industry benchmark"

// trendsFixedWidth is the space taken by the three trend columns and Periods.
const trendsFixedWidth = 60

var trendCSVHeader = []string{
	"firm_name",
	"metric",
	"direction",
	"change_percent",
	"change_value",
	"significant",
	"confidence",
	"periods",
}

// WriteFirmTrends outputs firm trend bundles, dispatching based on the output format configured.
func WriteFirmTrends(trends []schema.FirmTrend, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, trends)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFirmTrends(w, trends)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteFirmTrendsParquet(trends, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFirmTrendsTable(w, trends, cfg, duration)
		}, "Wrote table")
	}
	return nil
}

// WriteBenchmark outputs the industry benchmark trends.
func WriteBenchmark(bench schema.BenchmarkTrend, cfg *contract.Config) error {
	asFirm := []schema.FirmTrend{{FirmName: benchmarkName, MetricTrends: bench.MetricTrends, YearlyData: bench.YearlyData}}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, bench)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVFirmTrends(w, asFirm)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteFirmTrendsParquet(asFirm, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBenchmarkText(w, bench, cfg)
		}, "Wrote text")
	}
}

// writeCSVFirmTrends writes one row per firm and metric.
func writeCSVFirmTrends(w io.Writer, trends []schema.FirmTrend) error {
	return writeCSVWithHeader(w, trendCSVHeader, func(cw *csv.Writer) error {
		for _, ft := range trends {
			for _, m := range schema.AllMetrics {
				t, _ := ft.Trend(m)
				rec := []string{
					ft.FirmName,
					string(m),
					string(t.Direction),
					fmtFloat(t.ChangePercent),
					fmtFloat(t.ChangeValue),
					strconv.FormatBool(t.IsSignificant),
					string(t.Confidence),
					strconv.Itoa(t.Periods),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeFirmTrendsTable renders one row per firm with a trend cell per metric. A single
// firm is followed by its yearly uphold series.
func writeFirmTrendsTable(w io.Writer, trends []schema.FirmTrend, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Firm"}
	for _, m := range schema.AllMetrics {
		headers = append(headers, schema.MustMetric(m).Label)
	}
	headers = append(headers, "Periods")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg, trendsFixedWidth)
	var data [][]string
	for _, ft := range trends {
		row := []string{contract.TruncateName(ft.FirmName, nameWidth)}
		for _, m := range schema.AllMetrics {
			t, _ := ft.Trend(m)
			row = append(row, trendCell(t, m, cfg.UseColors))
		}
		row = append(row, strconv.Itoa(len(ft.YearlyData)))
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(trends) == 1 && len(trends[0].YearlyData) > 0 {
		if _, err := fmt.Fprintf(w, "Yearly uphold rate: %s\n", formatSeries(trends[0].YearlyData)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d firms (threshold %.1f%%, min periods %d)\n",
		len(trends), cfg.Trend.SignificanceThreshold, cfg.Trend.MinPeriodsForTrend); err != nil {
		return err
	}
	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Completed in %v\n", duration.Round(time.Millisecond)); err != nil {
			return err
		}
	}
	return nil
}

// writeBenchmarkText renders the benchmark as one row per metric.
func writeBenchmarkText(w io.Writer, bench schema.BenchmarkTrend, cfg *contract.Config) error {
	if _, err := fmt.Fprintln(w, contract.StatusLine(cfg.UseEmojis, "📊", "Industry benchmark")); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Trend", "Change", "Confidence", "Periods", "Significant"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, m := range schema.AllMetrics {
		t, _ := bench.Trend(m)
		data = append(data, []string{
			schema.MustMetric(m).Label,
			trendCell(t, m, cfg.UseColors),
			fmtFloat(t.ChangeValue),
			string(t.Confidence),
			strconv.Itoa(t.Periods),
			significance(t),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(bench.YearlyData) > 0 {
		if _, err := fmt.Fprintf(w, "Average uphold rate: %s\n", formatSeries(bench.YearlyData)); err != nil {
			return err
		}
	}
	return nil
}

// formatSeries renders trend points as "2021 40.0 → 2022 30.0".
func formatSeries(points []schema.TrendPoint) string {
	parts := make([]string, 0, len(points))
	for _, p := range points {
		parts = append(parts, p.Period+" "+fmtFloat(p.Value))
	}
	return strings.Join(parts, " → ")
}
