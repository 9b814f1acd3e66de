package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/fosdash/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit     = 10
	MaxResultLimit         = 1000
	DefaultCaseLimit       = 50
	MaxCaseLimit           = 500
	DefaultCacheTTL        = 5 * time.Minute
	DefaultListenAddr      = ":3000"
	DefaultShutdownTimeout = 10 * time.Second
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the dashboard.
// This struct remains the "final, validated" config.
type Config struct {
	FirmName    string
	Metric      schema.Metric
	Filter      schema.RankFilter
	ChartType   schema.ChartType
	ResultLimit int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)

	Trend schema.TrendOptions
	Scale schema.ScaleOptions

	DatabaseBackend   schema.DatabaseBackend
	DatabaseDBConnect string // Please use env var as this is plaintext

	CacheBackend schema.CacheBackend
	CacheTTL     time.Duration
	RedisURL     string // Please use env var as this is plaintext

	ListenAddr      string
	ShutdownTimeout time.Duration
	Debug           bool

	UseEmojis bool // Enable emojis in status lines
	UseColors bool // Enable colored trend arrows in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	FirmStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Limit      int    `mapstructure:"limit"`
	Width      int    `mapstructure:"width"`
	Emoji      string `mapstructure:"emoji"`
	Color      string `mapstructure:"color"`
	DBBackend  string `mapstructure:"db-backend"`
	DBConnect  string `mapstructure:"db-connect"`

	// --- Trend and scale settings ---
	Metric        string  `mapstructure:"metric"`
	Filter        string  `mapstructure:"filter"`
	Chart         string  `mapstructure:"chart"`
	Threshold     float64 `mapstructure:"threshold"`
	MinPeriods    int     `mapstructure:"min-periods"`
	MaxPadding    float64 `mapstructure:"max-padding"`
	RoundTo       float64 `mapstructure:"round-to"`
	FloatingScale bool    `mapstructure:"floating-scale"`

	// --- Fields from serveCmd.Flags() ---
	CacheBackend    string `mapstructure:"cache-backend"`
	CacheTTL        string `mapstructure:"cache-ttl"`
	RedisURL        string `mapstructure:"redis-url"`
	Addr            string `mapstructure:"addr"`
	ShutdownTimeout string `mapstructure:"shutdown-timeout"`
	Debug           bool   `mapstructure:"debug"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithFirm creates a copy of the Config scoped to a single firm.
func (c *Config) CloneWithFirm(firm string) *Config {
	clone := c.Clone()
	clone.FirmName = strings.TrimSpace(firm)
	return clone
}

// MetricDefinition returns the definition of the configured metric.
func (c *Config) MetricDefinition() schema.MetricDefinition {
	return schema.MustMetric(c.Metric)
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processAnalysisOptions(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processServerOptions(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.FirmName = strings.TrimSpace(input.FirmStr)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processAnalysisOptions handles the metric, ranking filter, chart type and calculator options.
func processAnalysisOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Metric = schema.Metric(strings.ToLower(input.Metric))
	if _, ok := schema.ValidMetrics[cfg.Metric]; !ok {
		return fmt.Errorf("invalid metric '%s'. must be uphold_rate, closure_3_days, closure_8_weeks", input.Metric)
	}

	cfg.Filter = schema.RankFilter(strings.ToLower(input.Filter))
	if _, ok := schema.ValidRankFilters[cfg.Filter]; !ok {
		return fmt.Errorf("invalid filter '%s'. must be all, improving, declining", input.Filter)
	}

	cfg.ChartType = schema.ChartType(strings.ToLower(input.Chart))
	if _, ok := schema.ValidChartTypes[cfg.ChartType]; !ok {
		return fmt.Errorf("invalid chart type '%s'. must be percentage, volume, rate", input.Chart)
	}

	if input.Threshold <= 0 {
		return fmt.Errorf("threshold must be greater than 0 (received %.2f)", input.Threshold)
	}
	if input.MinPeriods < 2 {
		return fmt.Errorf("min-periods must be at least 2 (received %d)", input.MinPeriods)
	}
	cfg.Trend = schema.TrendOptions{
		SignificanceThreshold: input.Threshold,
		MinPeriodsForTrend:    input.MinPeriods,
	}

	if input.MaxPadding < 0 {
		return fmt.Errorf("max-padding cannot be negative (received %.2f)", input.MaxPadding)
	}
	if input.RoundTo < 0 {
		return fmt.Errorf("round-to cannot be negative (received %.2f)", input.RoundTo)
	}
	cfg.Scale = schema.DefaultScaleOptions()
	cfg.Scale.MaxPadding = input.MaxPadding
	cfg.Scale.RoundTo = input.RoundTo
	cfg.Scale.ForceZeroBase = !input.FloatingScale

	return nil
}

// validateBackendConfigs validates database and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.DatabaseBackend = schema.DatabaseBackend(strings.ToLower(input.DBBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DatabaseBackend]; !ok {
		return fmt.Errorf("invalid database backend '%s'. must be sqlite, mysql, postgresql, none", input.DBBackend)
	}
	cfg.DatabaseDBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.DatabaseBackend, cfg.DatabaseDBConnect); err != nil {
		return err
	}

	cfg.CacheBackend = schema.CacheBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be memory, redis, none", input.CacheBackend)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid cache-ttl '%s': %w", input.CacheTTL, err)
		}
		if ttl <= 0 && cfg.CacheBackend != schema.NoCache {
			return fmt.Errorf("cache-ttl must be positive (received %s)", input.CacheTTL)
		}
		cfg.CacheTTL = ttl
	}

	cfg.RedisURL = strings.TrimSpace(input.RedisURL)
	if cfg.CacheBackend == schema.RedisCache && cfg.RedisURL == "" {
		return fmt.Errorf("redis-url is required when using %s cache backend", cfg.CacheBackend)
	}

	return nil
}

// processServerOptions handles the HTTP server settings.
func processServerOptions(cfg *Config, input *ConfigRawInput) error {
	cfg.Debug = input.Debug

	cfg.ListenAddr = strings.TrimSpace(input.Addr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	cfg.ShutdownTimeout = DefaultShutdownTimeout
	if input.ShutdownTimeout != "" {
		d, err := time.ParseDuration(input.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown-timeout '%s': %w", input.ShutdownTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("shutdown-timeout must be positive (received %s)", input.ShutdownTimeout)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

// GetDatabaseFilePath returns the path to the SQLite DB file for complaint storage.
func GetDatabaseFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".fosdash.db"
	}
	return filepath.Join(homeDir, ".fosdash.db")
}
