package algo

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/fosdash/schema"
)

// Arrows used by FormatTrend.
const (
	arrowUp     = "↑"
	arrowDown   = "↓"
	arrowStable = "→"
)

// IsImproving reports whether a trend moves a metric in its favorable direction.
func IsImproving(t schema.TrendResult, def schema.MetricDefinition) bool {
	if def.HigherIsBetter {
		return t.Direction == schema.DirectionUp
	}
	return t.Direction == schema.DirectionDown
}

// IsDeclining reports whether a trend moves a metric in its unfavorable direction.
func IsDeclining(t schema.TrendResult, def schema.MetricDefinition) bool {
	if def.HigherIsBetter {
		return t.Direction == schema.DirectionDown
	}
	return t.Direction == schema.DirectionUp
}

// FormatTrend maps a trend to an arrow, a signed percentage and a color. The color follows
// the metric's polarity, so a rising uphold rate is shown as a regression.
func FormatTrend(t schema.TrendResult, def schema.MetricDefinition) schema.TrendDisplay {
	display := schema.TrendDisplay{
		Arrow:   arrowStable,
		Percent: formatPercent(t.ChangePercent),
		Color:   schema.ColorNeutral,
	}

	switch t.Direction {
	case schema.DirectionUp:
		display.Arrow = arrowUp
	case schema.DirectionDown:
		display.Arrow = arrowDown
	default:
		return display
	}

	if IsImproving(t, def) {
		display.Color = schema.ColorImproving
	} else {
		display.Color = schema.ColorDeclining
	}
	return display
}

func formatPercent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f%%", v)
	}
	return fmt.Sprintf("%.1f%%", v)
}

// RankBySignificance keeps firms whose trend on the metric is significant, optionally only
// those improving or declining, and returns the top 'limit' by absolute percent change.
// A non-positive limit returns every match.
func RankBySignificance(firms []schema.FirmTrend, def schema.MetricDefinition, filter schema.RankFilter, limit int) []schema.FirmTrend {
	var ranked []schema.FirmTrend
	for _, f := range firms {
		t, ok := f.Trend(def.Key)
		if !ok || !t.IsSignificant {
			continue
		}
		switch filter {
		case schema.ImprovingFilter:
			if !IsImproving(t, def) {
				continue
			}
		case schema.DecliningFilter:
			if !IsDeclining(t, def) {
				continue
			}
		}
		ranked = append(ranked, f)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, _ := ranked[i].Trend(def.Key)
		tj, _ := ranked[j].Trend(def.Key)
		return math.Abs(ti.ChangePercent) > math.Abs(tj.ChangePercent)
	})

	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
