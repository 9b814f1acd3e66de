package algo

import (
	"cmp"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/huangsam/fosdash/schema"
)

// withDefaults fills unset trend options.
func withDefaults(opts schema.TrendOptions) schema.TrendOptions {
	if opts.SignificanceThreshold <= 0 {
		opts.SignificanceThreshold = schema.DefaultSignificanceThreshold
	}
	if opts.MinPeriodsForTrend <= 0 {
		opts.MinPeriodsForTrend = schema.DefaultMinPeriodsForTrend
	}
	return opts
}

// ComputeTrend classifies the change between the first and last point of a series.
// Points are ordered by period label, then sub-period label, then value before comparison,
// so input order does not matter. Non-finite values are dropped.
//
// A zero starting value yields a 0% change even when the absolute change is not zero.
func ComputeTrend(points []schema.TrendPoint, opts schema.TrendOptions) schema.TrendResult {
	opts = withDefaults(opts)
	points = finitePoints(points)

	if len(points) < opts.MinPeriodsForTrend {
		return schema.TrendResult{
			Direction:  schema.DirectionStable,
			Confidence: schema.ConfidenceLow,
			Periods:    len(points),
		}
	}

	sorted := slices.Clone(points)
	slices.SortFunc(sorted, func(a, b schema.TrendPoint) int {
		return cmp.Or(
			cmp.Compare(a.Period, b.Period),
			cmp.Compare(a.SubPeriod, b.SubPeriod),
			cmp.Compare(a.Value, b.Value),
		)
	})

	first, last := sorted[0].Value, sorted[len(sorted)-1].Value
	changeValue := last - first
	changePercent := 0.0
	if first != 0 {
		changePercent = changeValue / first * 100
	}

	direction := schema.DirectionStable
	switch {
	case changePercent >= opts.SignificanceThreshold:
		direction = schema.DirectionUp
	case changePercent <= -opts.SignificanceThreshold:
		direction = schema.DirectionDown
	}

	return schema.TrendResult{
		Direction:     direction,
		ChangePercent: roundOneDecimal(changePercent),
		ChangeValue:   roundOneDecimal(changeValue),
		IsSignificant: math.Abs(changePercent) >= opts.SignificanceThreshold,
		Confidence:    trendConfidence(sorted, direction),
		Periods:       len(sorted),
	}
}

func finitePoints(points []schema.TrendPoint) []schema.TrendPoint {
	out := make([]schema.TrendPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// trendConfidence rates how consistently the period-to-period moves agree with the
// overall direction. sorted must be in period order.
func trendConfidence(sorted []schema.TrendPoint, direction schema.Direction) schema.Confidence {
	if len(sorted) < 3 {
		return schema.ConfidenceLow
	}
	if direction == schema.DirectionStable {
		return schema.ConfidenceMedium
	}

	consistent := 0
	for i := 1; i < len(sorted); i++ {
		delta := sorted[i].Value - sorted[i-1].Value
		if (direction == schema.DirectionUp && delta > 0) || (direction == schema.DirectionDown && delta < 0) {
			consistent++
		}
	}

	ratio := float64(consistent) / float64(len(sorted)-1)
	switch {
	case ratio >= 0.8:
		return schema.ConfidenceHigh
	case ratio >= 0.6:
		return schema.ConfidenceMedium
	default:
		return schema.ConfidenceLow
	}
}

// roundOneDecimal rounds half up to one decimal place.
func roundOneDecimal(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

type yearAcc struct {
	sum   float64
	count int
}

// yearAverages accumulates a metric per year, skipping missing values.
type yearAverages map[string]*yearAcc

func (ya yearAverages) add(year string, v *float64) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return
	}
	acc, ok := ya[year]
	if !ok {
		acc = &yearAcc{}
		ya[year] = acc
	}
	acc.sum += *v
	acc.count++
}

// points returns one point per year that had at least one value, in year order.
func (ya yearAverages) points() []schema.TrendPoint {
	years := make([]string, 0, len(ya))
	for y := range ya {
		years = append(years, y)
	}
	sort.Strings(years)

	out := make([]schema.TrendPoint, 0, len(years))
	for _, y := range years {
		acc := ya[y]
		out = append(out, schema.TrendPoint{Period: y, Value: acc.sum / float64(acc.count)})
	}
	return out
}

// GroupTrendsByFirm groups rows by firm and then by year, averages each metric within a
// year and computes an independent trend per metric. Firms are returned in the order they
// first appear in rows.
func GroupTrendsByFirm(rows []schema.FirmYearRow, opts schema.TrendOptions) []schema.FirmTrend {
	type firmAcc struct {
		metrics map[schema.Metric]yearAverages
	}

	var order []string
	byFirm := make(map[string]*firmAcc)
	for _, row := range rows {
		name := strings.TrimSpace(row.FirmName)
		if name == "" {
			continue
		}
		acc, ok := byFirm[name]
		if !ok {
			acc = &firmAcc{metrics: make(map[schema.Metric]yearAverages, len(schema.AllMetrics))}
			for _, m := range schema.AllMetrics {
				acc.metrics[m] = make(yearAverages)
			}
			byFirm[name] = acc
			order = append(order, name)
		}
		for _, m := range schema.AllMetrics {
			acc.metrics[m].add(row.Year, row.Value(m))
		}
	}

	out := make([]schema.FirmTrend, 0, len(order))
	for _, name := range order {
		acc := byFirm[name]
		upholdSeries := acc.metrics[schema.UpholdRateMetric].points()
		out = append(out, schema.FirmTrend{
			FirmName: name,
			MetricTrends: schema.MetricTrends{
				UpholdTrend:        ComputeTrend(upholdSeries, opts),
				Closure3DaysTrend:  ComputeTrend(acc.metrics[schema.Closure3DaysMetric].points(), opts),
				Closure8WeeksTrend: ComputeTrend(acc.metrics[schema.Closure8WeeksMetric].points(), opts),
			},
			YearlyData: upholdSeries,
		})
	}
	return out
}

// ComputeBenchmarkTrends computes the metric trends of pre-aggregated industry rows.
// Rows sharing a year are averaged.
func ComputeBenchmarkTrends(rows []schema.BenchmarkRow, opts schema.TrendOptions) schema.BenchmarkTrend {
	series := make(map[schema.Metric]yearAverages, len(schema.AllMetrics))
	for _, m := range schema.AllMetrics {
		series[m] = make(yearAverages)
	}
	for _, row := range rows {
		for _, m := range schema.AllMetrics {
			series[m].add(row.Year, row.Value(m))
		}
	}

	upholdSeries := series[schema.UpholdRateMetric].points()
	return schema.BenchmarkTrend{
		MetricTrends: schema.MetricTrends{
			UpholdTrend:        ComputeTrend(upholdSeries, opts),
			Closure3DaysTrend:  ComputeTrend(series[schema.Closure3DaysMetric].points(), opts),
			Closure8WeeksTrend: ComputeTrend(series[schema.Closure8WeeksMetric].points(), opts),
		},
		YearlyData: upholdSeries,
	}
}
