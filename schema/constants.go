package schema

// Custom string types for type safety.
type (
	// ChartType represents the semantic type of values plotted on a chart axis.
	ChartType string

	// Direction represents the direction of a trend.
	Direction string

	// Confidence represents how consistent a trend is across periods.
	Confidence string

	// Metric represents a complaint-handling metric tracked per firm.
	Metric string

	// RankFilter restricts significance rankings to improving or declining trends.
	RankFilter string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the relational backend for complaint data.
	DatabaseBackend string

	// CacheBackend represents the backend for cached API responses.
	CacheBackend string

	// Outcome represents the outcome of an ombudsman decision.
	Outcome string
)

// All chart types supported.
const (
	PercentageChart ChartType = "percentage" // default
	VolumeChart     ChartType = "volume"
	RateChart       ChartType = "rate"
)

// All trend directions.
const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// All confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// All firm metrics.
const (
	UpholdRateMetric    Metric = "uphold_rate" // default
	Closure3DaysMetric  Metric = "closure_3_days"
	Closure8WeeksMetric Metric = "closure_8_weeks"
)

// All ranking filters.
const (
	AllFilter       RankFilter = "all" // default
	ImprovingFilter RankFilter = "improving"
	DecliningFilter RankFilter = "declining"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All cache backends supported.
const (
	MemoryCache CacheBackend = "memory" // default
	RedisCache  CacheBackend = "redis"
	NoCache     CacheBackend = "none"
)

// All decision outcomes.
const (
	UpheldOutcome    Outcome = "upheld"
	NotUpheldOutcome Outcome = "not upheld"
)

// AllMetrics returns the firm metrics in display order.
var AllMetrics = []Metric{UpholdRateMetric, Closure3DaysMetric, Closure8WeeksMetric}

// ValidChartTypes lists all valid chart types.
var ValidChartTypes = map[ChartType]struct{}{
	PercentageChart: {},
	VolumeChart:     {},
	RateChart:       {},
}

// ValidMetrics lists all valid firm metrics.
var ValidMetrics = map[Metric]struct{}{
	UpholdRateMetric:    {},
	Closure3DaysMetric:  {},
	Closure8WeeksMetric: {},
}

// ValidRankFilters lists all valid ranking filters.
var ValidRankFilters = map[RankFilter]struct{}{
	AllFilter:       {},
	ImprovingFilter: {},
	DecliningFilter: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[CacheBackend]struct{}{
	MemoryCache: {},
	RedisCache:  {},
	NoCache:     {},
}

// ValidOutcomes lists all valid decision outcomes.
var ValidOutcomes = map[Outcome]struct{}{
	UpheldOutcome:    {},
	NotUpheldOutcome: {},
}
