package schema

// MetricDefinition describes a firm metric and how its movement should be read.
type MetricDefinition struct {
	Key            Metric `json:"key"`
	Label          string `json:"label"`
	HigherIsBetter bool   `json:"higher_is_better"`
}

// metricDefinitions holds the built-in metrics. An increase in the uphold rate means more
// complaints were decided against the firm, so it is the only one where lower is better.
var metricDefinitions = map[Metric]MetricDefinition{
	UpholdRateMetric: {
		Key:            UpholdRateMetric,
		Label:          "Uphold rate",
		HigherIsBetter: false,
	},
	Closure3DaysMetric: {
		Key:            Closure3DaysMetric,
		Label:          "Closed within 3 days",
		HigherIsBetter: true,
	},
	Closure8WeeksMetric: {
		Key:            Closure8WeeksMetric,
		Label:          "Closed within 8 weeks",
		HigherIsBetter: true,
	},
}

// LookupMetric returns the definition for a metric key.
func LookupMetric(m Metric) (MetricDefinition, bool) {
	def, ok := metricDefinitions[m]
	return def, ok
}

// MustMetric returns the definition for a built-in metric and panics on unknown keys.
func MustMetric(m Metric) MetricDefinition {
	def, ok := metricDefinitions[m]
	if !ok {
		panic("schema: unknown metric " + string(m))
	}
	return def
}
