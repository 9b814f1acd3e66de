package schema

// TrendPoint is a single observation in a trend series. Points are ordered by comparing
// Period labels lexicographically, so labels must sort chronologically ("2021", "2022-H1").
type TrendPoint struct {
	Period    string  `json:"period"`
	Value     float64 `json:"value"`
	SubPeriod string  `json:"sub_period,omitempty"`
}

// TrendOptions tunes trend classification.
type TrendOptions struct {
	SignificanceThreshold float64 `json:"significance_threshold"` // Minimum absolute % change for up/down
	MinPeriodsForTrend    int     `json:"min_periods_for_trend"`  // Fewer points than this yields a neutral result
}

// Default trend options.
const (
	DefaultSignificanceThreshold = 5.0
	DefaultMinPeriodsForTrend    = 2
)

// DefaultTrendOptions returns the default trend options.
func DefaultTrendOptions() TrendOptions {
	return TrendOptions{
		SignificanceThreshold: DefaultSignificanceThreshold,
		MinPeriodsForTrend:    DefaultMinPeriodsForTrend,
	}
}

// TrendResult summarizes the change across a series of points.
type TrendResult struct {
	Direction     Direction  `json:"direction"`
	ChangePercent float64    `json:"change_percent"`
	ChangeValue   float64    `json:"change_value"`
	IsSignificant bool       `json:"is_significant"`
	Confidence    Confidence `json:"confidence"`
	Periods       int        `json:"periods"`
}

// FirmYearRow is a flat row of per-firm metrics used as input to trend grouping.
// Metric fields are nil when the firm did not report them for the row.
type FirmYearRow struct {
	FirmName      string   `json:"firm_name"`
	Year          string   `json:"year"`
	UpholdRate    *float64 `json:"uphold_rate,omitempty"`
	Closure3Days  *float64 `json:"closure_3_days,omitempty"`
	Closure8Weeks *float64 `json:"closure_8_weeks,omitempty"`
}

// Value returns the row's value for a metric.
func (r FirmYearRow) Value(m Metric) *float64 {
	switch m {
	case UpholdRateMetric:
		return r.UpholdRate
	case Closure3DaysMetric:
		return r.Closure3Days
	case Closure8WeeksMetric:
		return r.Closure8Weeks
	default:
		return nil
	}
}

// BenchmarkRow is one year of industry-wide averages.
type BenchmarkRow struct {
	Year             string   `json:"year"`
	AvgUpholdRate    *float64 `json:"avg_uphold_rate,omitempty"`
	AvgClosure3Days  *float64 `json:"avg_closure_3_days,omitempty"`
	AvgClosure8Weeks *float64 `json:"avg_closure_8_weeks,omitempty"`
	FirmCount        int      `json:"firm_count"`
}

// Value returns the row's average for a metric.
func (r BenchmarkRow) Value(m Metric) *float64 {
	switch m {
	case UpholdRateMetric:
		return r.AvgUpholdRate
	case Closure3DaysMetric:
		return r.AvgClosure3Days
	case Closure8WeeksMetric:
		return r.AvgClosure8Weeks
	default:
		return nil
	}
}

// MetricTrends holds the trend of each firm metric.
type MetricTrends struct {
	UpholdTrend        TrendResult `json:"uphold_trend"`
	Closure3DaysTrend  TrendResult `json:"closure_3_days_trend"`
	Closure8WeeksTrend TrendResult `json:"closure_8_weeks_trend"`
}

// Trend returns the trend for a metric.
func (t MetricTrends) Trend(m Metric) (TrendResult, bool) {
	switch m {
	case UpholdRateMetric:
		return t.UpholdTrend, true
	case Closure3DaysMetric:
		return t.Closure3DaysTrend, true
	case Closure8WeeksMetric:
		return t.Closure8WeeksTrend, true
	default:
		return TrendResult{}, false
	}
}

// FirmTrend bundles the metric trends of a single firm with the yearly uphold series
// the uphold trend was computed from.
type FirmTrend struct {
	FirmName string `json:"firm_name"`
	MetricTrends
	YearlyData []TrendPoint `json:"yearly_data"`
}

// BenchmarkTrend holds the industry-wide metric trends.
type BenchmarkTrend struct {
	MetricTrends
	YearlyData []TrendPoint `json:"yearly_data"`
}

// TrendDisplay is the presentation triple for a trend.
type TrendDisplay struct {
	Arrow   string `json:"arrow"`
	Percent string `json:"percent"`
	Color   string `json:"color"`
}

// Semantic colors used by TrendDisplay.
const (
	ColorImproving = "green"
	ColorDeclining = "red"
	ColorNeutral   = "gray"
)

// RankedFirm is a firm selected by a significance ranking.
type RankedFirm struct {
	FirmName string       `json:"firm_name"`
	Metric   Metric       `json:"metric"`
	Trend    TrendResult  `json:"trend"`
	Display  TrendDisplay `json:"display"`
}
