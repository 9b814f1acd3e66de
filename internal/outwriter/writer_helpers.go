package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/fosdash/core/algo"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// fmtFloat renders a metric value with one decimal place.
func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// fmtOptional renders a nullable metric value, or "-" when it was not reported.
func fmtOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}

// fmtCount renders a count with thousands separators.
func fmtCount(n int) string {
	return humanize.Comma(int64(n))
}

// trendCell renders a trend as its arrow and signed percentage, colored by the metric's
// polarity when colors are enabled.
func trendCell(t schema.TrendResult, metric schema.Metric, useColors bool) string {
	display := algo.FormatTrend(t, schema.MustMetric(metric))
	text := display.Arrow + " " + display.Percent
	if !useColors {
		return text
	}
	return contract.ColorizeTrend(text, display.Color)
}

// significance renders whether a trend crossed the significance threshold.
func significance(t schema.TrendResult) string {
	if t.IsSignificant {
		return "yes"
	}
	return "no"
}

// unsupportedParquet is returned by reports that have no columnar form.
func unsupportedParquet(report string) error {
	return fmt.Errorf("parquet output is not supported for %s; use text, csv or json", report)
}
