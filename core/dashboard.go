// Package core wires the store to the trend and scale calculators behind every dashboard view.
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/fosdash/core/algo"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"golang.org/x/sync/errgroup"
)

// overviewMovers is how many firms the overview lists as improving or declining.
const overviewMovers = 5

// fixedScale is the axis used when dynamic scaling would not help.
var fixedScale = schema.ScaleResult{Min: 0, Max: 100, StepSize: 20}

// Dashboard answers dashboard queries from a Store.
type Dashboard struct {
	store contract.Store
	trend schema.TrendOptions
	scale schema.ScaleOptions
}

var _ contract.Dashboard = &Dashboard{} // Compile-time check

// NewDashboard creates a Dashboard using the trend and scale options in cfg.
func NewDashboard(store contract.Store, cfg *contract.Config) *Dashboard {
	d := &Dashboard{
		store: store,
		trend: schema.DefaultTrendOptions(),
		scale: schema.DefaultScaleOptions(),
	}
	if cfg != nil {
		d.trend = cfg.Trend
		d.scale = cfg.Scale
	}
	return d
}

// GetOverview loads the headline figures, the benchmark and the biggest uphold-rate movers
// concurrently.
func (d *Dashboard) GetOverview(ctx context.Context) (schema.DashboardOverview, error) {
	var (
		overview  schema.DashboardOverview
		benchRows []schema.BenchmarkRow
		firmRows  []schema.FirmYearRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		overview.Metrics, err = d.store.Overview(gctx)
		if err != nil {
			return fmt.Errorf("failed to load overview metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		benchRows, err = d.store.BenchmarkRows(gctx)
		if err != nil {
			return fmt.Errorf("failed to load benchmark rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		firmRows, err = d.store.AllFirmRows(gctx)
		if err != nil {
			return fmt.Errorf("failed to load firm rows: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return schema.DashboardOverview{}, err
	}

	overview.Benchmark = algo.ComputeBenchmarkTrends(benchRows, d.trend)

	firms := algo.GroupTrendsByFirm(firmRows, d.trend)
	def := schema.MustMetric(schema.UpholdRateMetric)
	overview.TopImproving = rankedFirms(algo.RankBySignificance(firms, def, schema.ImprovingFilter, overviewMovers), def)
	overview.TopDeclining = rankedFirms(algo.RankBySignificance(firms, def, schema.DecliningFilter, overviewMovers), def)
	return overview, nil
}

// GetFirms returns the firm listing.
func (d *Dashboard) GetFirms(ctx context.Context) ([]schema.FirmSummary, error) {
	firms, err := d.store.ListFirms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list firms: %w", err)
	}
	return firms, nil
}

// GetFirmTrends computes the metric trends of one firm. It returns ErrFirmNotFound when
// the firm has no rows.
func (d *Dashboard) GetFirmTrends(ctx context.Context, firm string) (schema.FirmTrend, error) {
	firm = strings.TrimSpace(firm)
	if firm == "" {
		return schema.FirmTrend{}, fmt.Errorf("%w: empty firm name", contract.ErrFirmNotFound)
	}
	rows, err := d.store.FirmRows(ctx, firm)
	if err != nil {
		return schema.FirmTrend{}, fmt.Errorf("failed to load rows for %s: %w", firm, err)
	}
	trends := algo.GroupTrendsByFirm(rows, d.trend)
	if len(trends) == 0 {
		return schema.FirmTrend{}, fmt.Errorf("%w: %s", contract.ErrFirmNotFound, firm)
	}
	// Rows are matched case-insensitively; spellings that differ in case fold into the first.
	if len(trends) > 1 {
		rows = foldFirmName(rows, trends[0].FirmName)
		trends = algo.GroupTrendsByFirm(rows, d.trend)
	}
	return trends[0], nil
}

// GetAllFirmTrends computes the metric trends of every firm.
func (d *Dashboard) GetAllFirmTrends(ctx context.Context) ([]schema.FirmTrend, error) {
	rows, err := d.store.AllFirmRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load firm rows: %w", err)
	}
	return algo.GroupTrendsByFirm(rows, d.trend), nil
}

// GetBenchmarkTrends computes the industry-wide metric trends.
func (d *Dashboard) GetBenchmarkTrends(ctx context.Context) (schema.BenchmarkTrend, error) {
	rows, err := d.store.BenchmarkRows(ctx)
	if err != nil {
		return schema.BenchmarkTrend{}, fmt.Errorf("failed to load benchmark rows: %w", err)
	}
	return algo.ComputeBenchmarkTrends(rows, d.trend), nil
}

// GetRankedFirms ranks firms by the significance of their trend on a metric.
func (d *Dashboard) GetRankedFirms(ctx context.Context, metric schema.Metric, filter schema.RankFilter, limit int) ([]schema.RankedFirm, error) {
	def, ok := schema.LookupMetric(metric)
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q", contract.ErrInvalidArgument, metric)
	}
	if _, ok := schema.ValidRankFilters[filter]; !ok {
		return nil, fmt.Errorf("%w: unknown rank filter %q", contract.ErrInvalidArgument, filter)
	}
	firms, err := d.GetAllFirmTrends(ctx)
	if err != nil {
		return nil, err
	}
	return rankedFirms(algo.RankBySignificance(firms, def, filter, limit), def), nil
}

// GetCases returns a page of decisions. The limit is clamped to the allowed range.
func (d *Dashboard) GetCases(ctx context.Context, filter schema.CaseFilter) (schema.CaseListing, error) {
	if filter.Limit <= 0 {
		filter.Limit = contract.DefaultCaseLimit
	}
	filter.Limit = min(filter.Limit, contract.MaxCaseLimit)
	filter.Offset = max(filter.Offset, 0)
	if filter.Outcome != "" {
		if _, ok := schema.ValidOutcomes[filter.Outcome]; !ok {
			return schema.CaseListing{}, fmt.Errorf("%w: unknown outcome %q", contract.ErrInvalidArgument, filter.Outcome)
		}
	}

	listing, err := d.store.ListCases(ctx, filter)
	if err != nil {
		return schema.CaseListing{}, fmt.Errorf("failed to list cases: %w", err)
	}
	if listing.Cases == nil {
		listing.Cases = []schema.CaseRecord{}
	}
	return listing, nil
}

// GetMetricScale computes the y-axis for a chart of each firm's latest value of a metric.
// Percentage and rate charts fall back to a fixed 0-100 axis when the values already
// spread across it.
func (d *Dashboard) GetMetricScale(ctx context.Context, metric schema.Metric, chartType schema.ChartType) (schema.MetricScale, error) {
	def, ok := schema.LookupMetric(metric)
	if !ok {
		return schema.MetricScale{}, fmt.Errorf("%w: unknown metric %q", contract.ErrInvalidArgument, metric)
	}
	if _, ok := schema.ValidChartTypes[chartType]; !ok {
		return schema.MetricScale{}, fmt.Errorf("%w: unknown chart type %q", contract.ErrInvalidArgument, chartType)
	}
	rows, err := d.store.AllFirmRows(ctx)
	if err != nil {
		return schema.MetricScale{}, fmt.Errorf("failed to load firm rows: %w", err)
	}

	return ScaleValues(def, latestFirmValues(rows, metric), chartType, d.scale), nil
}

// ScaleValues computes the y-axis for a bar chart of values labelled by def.
// Volume charts always scale to the data; other charts keep the fixed 0-100 axis
// unless the values sit in a narrow band.
func ScaleValues(def schema.MetricDefinition, values []float64, chartType schema.ChartType, opts schema.ScaleOptions) schema.MetricScale {
	result := schema.MetricScale{
		Metric:    def.Key,
		ChartType: chartType,
		Values:    len(values),
		Dynamic:   chartType == schema.VolumeChart || algo.ShouldUseDynamicScale(values),
		Scale:     fixedScale,
	}
	if result.Dynamic {
		result.Scale = algo.ComputeScale(values, chartType, opts)
	}
	result.Chart = algo.ApplyScale(schema.ChartConfig{Type: "bar", Title: def.Label}, result.Scale, chartType)
	return result
}

// GetIngestionStatus reports the store backend and its ingestion history.
func (d *Dashboard) GetIngestionStatus(ctx context.Context) (schema.IngestionStatus, error) {
	status, err := d.store.IngestionStatus(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to get ingestion status: %w", err)
	}
	return status, nil
}

// Ping verifies the store connection.
func (d *Dashboard) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

// rankedFirms attaches the metric trend and its display triple to each firm.
func rankedFirms(firms []schema.FirmTrend, def schema.MetricDefinition) []schema.RankedFirm {
	out := make([]schema.RankedFirm, 0, len(firms))
	for _, f := range firms {
		t, _ := f.Trend(def.Key)
		out = append(out, schema.RankedFirm{
			FirmName: f.FirmName,
			Metric:   def.Key,
			Trend:    t,
			Display:  algo.FormatTrend(t, def),
		})
	}
	return out
}

// latestFirmValues returns, per firm, the average of the metric over the latest year the
// firm reported it. Values are ordered by firm name.
func latestFirmValues(rows []schema.FirmYearRow, metric schema.Metric) []float64 {
	byFirm := make(map[string][]schema.FirmYearRow)
	for _, r := range rows {
		name := strings.TrimSpace(r.FirmName)
		if name == "" || r.Value(metric) == nil {
			continue
		}
		byFirm[name] = append(byFirm[name], r)
	}

	names := make([]string, 0, len(byFirm))
	for name := range byFirm {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, 0, len(names))
	for _, name := range names {
		firmRows := byFirm[name]
		latest := firmRows[0].Year
		for _, r := range firmRows[1:] {
			latest = max(latest, r.Year)
		}
		var inYear []schema.FirmYearRow
		for _, r := range firmRows {
			if r.Year == latest {
				inYear = append(inYear, r)
			}
		}
		vals := algo.ExtractValues(inYear, func(r schema.FirmYearRow) any { return r.Value(metric) })
		if len(vals) == 0 {
			continue
		}
		var sum float64
		for _, v := range vals {
			sum += v
		}
		values = append(values, sum/float64(len(vals)))
	}
	return values
}

func foldFirmName(rows []schema.FirmYearRow, name string) []schema.FirmYearRow {
	out := make([]schema.FirmYearRow, len(rows))
	for i, r := range rows {
		r.FirmName = name
		out[i] = r
	}
	return out
}
