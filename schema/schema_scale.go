package schema

// ScaleOptions tunes axis scaling.
type ScaleOptions struct {
	MinPadding    float64 `json:"min_padding"`
	MaxPadding    float64 `json:"max_padding"`
	ForceZeroBase bool    `json:"force_zero_base"`
	RoundTo       float64 `json:"round_to"`

	// Observe receives a summary of each computation when set.
	Observe func(ScaleDiagnostics) `json:"-"`
}

// DefaultScaleOptions returns the default axis scaling options.
func DefaultScaleOptions() ScaleOptions {
	return ScaleOptions{
		MinPadding:    0,
		MaxPadding:    10,
		ForceZeroBase: true,
		RoundTo:       5,
	}
}

// ScaleResult is a computed chart axis range.
type ScaleResult struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	StepSize float64 `json:"step_size,omitempty"`
}

// ScaleDiagnostics describes how a ScaleResult was derived.
type ScaleDiagnostics struct {
	ChartType   ChartType   `json:"chart_type"`
	Observed    int         `json:"observed"`
	ObservedMin float64     `json:"observed_min"`
	ObservedMax float64     `json:"observed_max"`
	Result      ScaleResult `json:"result"`
}

// TickFormat names the tick label formatter attached to an axis.
type TickFormat string

// Tick label formats.
const (
	PercentTicks   TickFormat = "percent"
	ThousandsTicks TickFormat = "thousands"
)

// ChartConfig is the subset of a chart configuration the dashboard controls.
type ChartConfig struct {
	Type    string         `json:"type,omitempty"`
	Title   string         `json:"title,omitempty"`
	Scales  ChartScales    `json:"scales"`
	Options map[string]any `json:"options,omitempty"`
}

// ChartScales holds per-axis configuration.
type ChartScales struct {
	X AxisConfig `json:"x"`
	Y AxisConfig `json:"y"`
}

// AxisConfig is the configuration of a single chart axis.
type AxisConfig struct {
	Min         *float64   `json:"min,omitempty"`
	Max         *float64   `json:"max,omitempty"`
	BeginAtZero bool       `json:"beginAtZero,omitempty"`
	Ticks       TickConfig `json:"ticks"`
}

// TickConfig configures axis ticks. Format is serialized so a front end can pick the
// matching formatter; Callback is the Go-side formatter.
type TickConfig struct {
	StepSize float64              `json:"stepSize,omitempty"`
	Format   TickFormat           `json:"format,omitempty"`
	Callback func(float64) string `json:"-"`
}

// MetricScale is a computed axis for a chart of one metric across firms.
type MetricScale struct {
	Metric    Metric      `json:"metric"`
	ChartType ChartType   `json:"chart_type"`
	Values    int         `json:"values"`
	Dynamic   bool        `json:"dynamic"`
	Scale     ScaleResult `json:"scale"`
	Chart     ChartConfig `json:"chart"`
}
