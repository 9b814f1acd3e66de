// Package algo holds the pure calculators behind the dashboard: chart axis scaling,
// trend classification and significance ranking. Nothing here performs I/O.
package algo

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/fosdash/schema"
)

// defaultScale is returned when there is nothing to plot.
var defaultScale = schema.ScaleResult{Min: 0, Max: 100}

// ComputeScale derives a y-axis range and step size for the given values. Non-finite values
// are ignored. The type-specific rules widen small ranges so that data does not look flat,
// and percentage axes never extend beyond 100.
func ComputeScale(values []float64, chartType schema.ChartType, opts schema.ScaleOptions) schema.ScaleResult {
	valid := finiteValues(values)
	if len(valid) == 0 {
		return defaultScale
	}

	dataMin, dataMax := minMax(valid)
	dataRange := dataMax - dataMin

	maxVal := dataMax + opts.MaxPadding
	minVal := 0.0
	if !opts.ForceZeroBase {
		minVal = math.Max(0, dataMin-opts.MinPadding)
	}

	switch chartType {
	case schema.PercentageChart:
		switch {
		case dataMax <= 15:
			maxVal = 20
		case dataMax <= 30:
			maxVal = 35
		case dataMax <= 60:
			maxVal = dataMax + 15
		case dataMin >= 70 && dataRange <= 20:
			maxVal = 100
		default:
			headroom := 20.0
			if dataRange > 30 {
				headroom = 10
			}
			maxVal = math.Min(dataMax+headroom, 100)
		}
	case schema.VolumeChart:
		switch {
		case dataMax <= 100:
			maxVal = dataMax + 20
		case dataMax <= 1000:
			maxVal = dataMax * 1.2
		case dataMax <= 10000:
			maxVal = dataMax * 1.15
		default:
			maxVal = dataMax * 1.1
		}
	case schema.RateChart:
		switch {
		case dataMax <= 25:
			maxVal = 30
		case dataMax <= 50:
			maxVal = dataMax + 15
		default:
			maxVal = math.Min(dataMax+20, 100)
		}
	}

	if opts.RoundTo > 0 {
		maxVal = math.Ceil(maxVal/opts.RoundTo) * opts.RoundTo
	}

	if maxVal-minVal < 5 {
		maxVal = minVal + 10
	}

	if chartType == schema.PercentageChart {
		maxVal = math.Min(maxVal, 100)
		if minVal >= maxVal {
			minVal = math.Max(0, maxVal-10)
		}
	}

	result := schema.ScaleResult{
		Min:      minVal,
		Max:      maxVal,
		StepSize: stepSize(maxVal - minVal),
	}

	if opts.Observe != nil {
		opts.Observe(schema.ScaleDiagnostics{
			ChartType:   chartType,
			Observed:    len(valid),
			ObservedMin: dataMin,
			ObservedMax: dataMax,
			Result:      result,
		})
	}
	return result
}

// stepSize picks a tick interval that keeps roughly five to ten ticks on the axis.
func stepSize(span float64) float64 {
	switch {
	case span <= 20:
		return 5
	case span <= 50:
		return 10
	case span <= 100:
		return 20
	default:
		return math.Ceil(span / 5)
	}
}

// ApplyScale returns a copy of cfg with the y-axis bounds, step size and tick formatter set
// from result. Percentage and rate axes get a "%" suffix, other axes thousands separators.
func ApplyScale(cfg schema.ChartConfig, result schema.ScaleResult, chartType schema.ChartType) schema.ChartConfig {
	out := cfg
	minVal, maxVal := result.Min, result.Max
	out.Scales.Y.Min = &minVal
	out.Scales.Y.Max = &maxVal
	out.Scales.Y.BeginAtZero = result.Min == 0
	out.Scales.Y.Ticks.StepSize = result.StepSize
	out.Scales.Y.Ticks.Format, out.Scales.Y.Ticks.Callback = TickFormatter(chartType)
	return out
}

// TickFormatter returns the tick label format and formatter for a chart type.
func TickFormatter(chartType schema.ChartType) (schema.TickFormat, func(float64) string) {
	switch chartType {
	case schema.PercentageChart, schema.RateChart:
		return schema.PercentTicks, func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64) + "%"
		}
	default:
		return schema.ThousandsTicks, humanize.Commaf
	}
}

// ShouldUseDynamicScale reports whether values would look misleadingly flat on a fixed
// 0-100 axis: the peak is low or the values are tightly clustered.
func ShouldUseDynamicScale(values []float64) bool {
	valid := finiteValues(values)
	if len(valid) == 0 {
		return false
	}
	dataMin, dataMax := minMax(valid)
	return dataMax < 80 || dataMax-dataMin < 30
}

// ExtractValues maps records through extract and keeps the numeric results.
func ExtractValues[T any](records []T, extract func(T) any) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := toFloat(extract(r)); ok {
			out = append(out, v)
		}
	}
	return out
}

// ExtractField reads a named field from each record and keeps the numeric values.
// Records may be maps keyed by string or structs (matched by field name or json tag).
func ExtractField[T any](records []T, field string) []float64 {
	return ExtractValues(records, func(r T) any {
		return fieldValue(reflect.ValueOf(r), field)
	})
}

func fieldValue(v reflect.Value, field string) any {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := v.MapIndex(reflect.ValueOf(field).Convert(v.Type().Key()))
		if !mv.IsValid() {
			return nil
		}
		return mv.Interface()
	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if sf.Name == field || jsonName(sf) == field {
				return v.Field(i).Interface()
			}
		}
	}
	return nil
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	return name
}

// toFloat converts numeric values, or pointers to them, to float64. Strings, nils and
// non-finite numbers are rejected.
func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}

	var f float64
	switch {
	case rv.CanFloat():
		f = rv.Float()
	case rv.CanInt():
		f = float64(rv.Int())
	case rv.CanUint():
		f = float64(rv.Uint())
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
