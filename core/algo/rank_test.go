package algo

import (
	"testing"

	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/assert"
)

func firmWithUphold(name string, dir schema.Direction, pct float64, significant bool) schema.FirmTrend {
	return schema.FirmTrend{
		FirmName: name,
		MetricTrends: schema.MetricTrends{
			UpholdTrend: schema.TrendResult{
				Direction:     dir,
				ChangePercent: pct,
				IsSignificant: significant,
				Periods:       3,
			},
		},
	}
}

func firmNames(firms []schema.FirmTrend) []string {
	names := make([]string, 0, len(firms))
	for _, f := range firms {
		names = append(names, f.FirmName)
	}
	return names
}

func sampleFirms() []schema.FirmTrend {
	return []schema.FirmTrend{
		firmWithUphold("A", schema.DirectionDown, -30, true),
		firmWithUphold("B", schema.DirectionUp, 20, true),
		firmWithUphold("C", schema.DirectionDown, -8, true),
		firmWithUphold("D", schema.DirectionStable, 2, false),
		firmWithUphold("E", schema.DirectionDown, -50, true),
		firmWithUphold("F", schema.DirectionUp, 30, true),
	}
}

// TestRankBySignificance tests filtering and ordering on a lower-is-better metric.
func TestRankBySignificance(t *testing.T) {
	uphold := schema.MustMetric(schema.UpholdRateMetric)

	tests := []struct {
		name     string
		filter   schema.RankFilter
		limit    int
		expected []string
	}{
		{"all significant", schema.AllFilter, 0, []string{"E", "A", "F", "B", "C"}},
		{"improving means falling", schema.ImprovingFilter, 0, []string{"E", "A", "C"}},
		{"declining means rising", schema.DecliningFilter, 0, []string{"F", "B"}},
		{"limit", schema.ImprovingFilter, 2, []string{"E", "A"}},
		{"limit larger than matches", schema.DecliningFilter, 10, []string{"F", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankBySignificance(sampleFirms(), uphold, tt.filter, tt.limit)
			assert.Equal(t, tt.expected, firmNames(got))
		})
	}
}

func TestRankBySignificance_ImprovingUpholdOnlyFalls(t *testing.T) {
	uphold := schema.MustMetric(schema.UpholdRateMetric)
	for _, f := range RankBySignificance(sampleFirms(), uphold, schema.ImprovingFilter, 0) {
		assert.Equal(t, schema.DirectionDown, f.UpholdTrend.Direction, f.FirmName)
	}
}

func TestRankBySignificance_HigherIsBetter(t *testing.T) {
	closure := schema.MustMetric(schema.Closure3DaysMetric)
	firms := []schema.FirmTrend{
		{FirmName: "X", MetricTrends: schema.MetricTrends{Closure3DaysTrend: schema.TrendResult{Direction: schema.DirectionUp, ChangePercent: 12, IsSignificant: true}}},
		{FirmName: "Y", MetricTrends: schema.MetricTrends{Closure3DaysTrend: schema.TrendResult{Direction: schema.DirectionDown, ChangePercent: -40, IsSignificant: true}}},
	}

	assert.Equal(t, []string{"X"}, firmNames(RankBySignificance(firms, closure, schema.ImprovingFilter, 0)))
	assert.Equal(t, []string{"Y"}, firmNames(RankBySignificance(firms, closure, schema.DecliningFilter, 0)))
}

func TestRankBySignificance_Idempotent(t *testing.T) {
	uphold := schema.MustMetric(schema.UpholdRateMetric)
	once := RankBySignificance(sampleFirms(), uphold, schema.AllFilter, 0)
	twice := RankBySignificance(once, uphold, schema.AllFilter, 0)
	assert.Equal(t, once, twice)
}

func TestRankBySignificance_TiesKeepInputOrder(t *testing.T) {
	uphold := schema.MustMetric(schema.UpholdRateMetric)
	firms := []schema.FirmTrend{
		firmWithUphold("first", schema.DirectionUp, 10, true),
		firmWithUphold("second", schema.DirectionDown, -10, true),
	}
	assert.Equal(t, []string{"first", "second"}, firmNames(RankBySignificance(firms, uphold, schema.AllFilter, 0)))
}

func TestFormatTrend(t *testing.T) {
	uphold := schema.MustMetric(schema.UpholdRateMetric)
	closure := schema.MustMetric(schema.Closure8WeeksMetric)

	tests := []struct {
		name     string
		trend    schema.TrendResult
		def      schema.MetricDefinition
		expected schema.TrendDisplay
	}{
		{
			name:     "rising uphold rate is a regression",
			trend:    schema.TrendResult{Direction: schema.DirectionUp, ChangePercent: 20},
			def:      uphold,
			expected: schema.TrendDisplay{Arrow: "↑", Percent: "+20.0%", Color: schema.ColorDeclining},
		},
		{
			name:     "falling uphold rate is an improvement",
			trend:    schema.TrendResult{Direction: schema.DirectionDown, ChangePercent: -30},
			def:      uphold,
			expected: schema.TrendDisplay{Arrow: "↓", Percent: "-30.0%", Color: schema.ColorImproving},
		},
		{
			name:     "rising closure rate is an improvement",
			trend:    schema.TrendResult{Direction: schema.DirectionUp, ChangePercent: 7.5},
			def:      closure,
			expected: schema.TrendDisplay{Arrow: "↑", Percent: "+7.5%", Color: schema.ColorImproving},
		},
		{
			name:     "falling closure rate is a regression",
			trend:    schema.TrendResult{Direction: schema.DirectionDown, ChangePercent: -12.3},
			def:      closure,
			expected: schema.TrendDisplay{Arrow: "↓", Percent: "-12.3%", Color: schema.ColorDeclining},
		},
		{
			name:     "stable",
			trend:    schema.TrendResult{Direction: schema.DirectionStable, ChangePercent: 2},
			def:      uphold,
			expected: schema.TrendDisplay{Arrow: "→", Percent: "+2.0%", Color: schema.ColorNeutral},
		},
		{
			name:     "zero change",
			trend:    schema.TrendResult{Direction: schema.DirectionStable},
			def:      closure,
			expected: schema.TrendDisplay{Arrow: "→", Percent: "0.0%", Color: schema.ColorNeutral},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTrend(tt.trend, tt.def))
		})
	}
}
