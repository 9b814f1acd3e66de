package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/fosdash/core/algo"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// WriteMetricScale outputs a computed chart axis.
func WriteMetricScale(scale schema.MetricScale, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, scale)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVMetricScale(w, scale)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return unsupportedParquet("scale")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricScaleText(w, scale, cfg)
		}, "Wrote text")
	}
}

func writeCSVMetricScale(w io.Writer, scale schema.MetricScale) error {
	header := []string{"metric", "chart_type", "values", "dynamic", "min", "max", "step_size"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			string(scale.Metric),
			string(scale.ChartType),
			strconv.Itoa(scale.Values),
			strconv.FormatBool(scale.Dynamic),
			fmtFloat(scale.Scale.Min),
			fmtFloat(scale.Scale.Max),
			fmtFloat(scale.Scale.StepSize),
		})
	})
}

// writeMetricScaleText prints the axis range with its tick labels.
func writeMetricScaleText(w io.Writer, scale schema.MetricScale, cfg *contract.Config) error {
	mode := "fixed"
	if scale.Dynamic {
		mode = "dynamic"
	}
	title := fmt.Sprintf("%s axis (%s chart, %s scale over %d firms)",
		schema.MustMetric(scale.Metric).Label, scale.ChartType, mode, scale.Values)
	if _, err := fmt.Fprintln(w, contract.StatusLine(cfg.UseEmojis, "📐", title)); err != nil {
		return err
	}

	_, format := algo.TickFormatter(scale.ChartType)
	if _, err := fmt.Fprintf(w, "  min:  %s\n  max:  %s\n", format(scale.Scale.Min), format(scale.Scale.Max)); err != nil {
		return err
	}
	if scale.Scale.StepSize > 0 {
		if _, err := fmt.Fprintf(w, "  step: %s\n  ticks: %s\n", format(scale.Scale.StepSize), formatTicks(scale.Scale, format)); err != nil {
			return err
		}
	}
	return nil
}

// maxTicks bounds the tick labels printed for one axis.
const maxTicks = 25

// formatTicks lists the tick labels from Min to Max.
func formatTicks(r schema.ScaleResult, format func(float64) string) string {
	var ticks []string
	for i := 0; i <= maxTicks; i++ {
		v := r.Min + float64(i)*r.StepSize
		if v > r.Max+r.StepSize/1e6 {
			break
		}
		ticks = append(ticks, format(v))
	}
	return strings.Join(ticks, " ")
}
