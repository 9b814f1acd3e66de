// Package cmd defines the command-line interface for fosdash.
package cmd

import (
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(trendsCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(scaleCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the ingest subcommands to the parent ingest command
	ingestCmd.AddCommand(ingestComplaintsCmd)
	ingestCmd.AddCommand(ingestCasesCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbExportCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbClearCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("metric", string(schema.UpholdRateMetric), "Metric: uphold_rate or closure_3_days or closure_8_weeks")
	rootCmd.PersistentFlags().StringP("filter", "f", string(schema.AllFilter), "Ranking filter: all or improving or declining")
	rootCmd.PersistentFlags().String("chart", string(schema.PercentageChart), "Chart type for axis scaling: percentage or volume or rate")
	rootCmd.PersistentFlags().Float64("threshold", schema.DefaultSignificanceThreshold, "Minimum absolute percent change for a trend to count as up or down")
	rootCmd.PersistentFlags().Int("min-periods", schema.DefaultMinPeriodsForTrend, "Minimum number of periods needed to compute a trend")
	rootCmd.PersistentFlags().Float64("max-padding", schema.DefaultScaleOptions().MaxPadding, "Percent of headroom added above the largest value on an axis")
	rootCmd.PersistentFlags().Float64("round-to", schema.DefaultScaleOptions().RoundTo, "Round axis bounds to a multiple of this value")
	rootCmd.PersistentFlags().Bool("floating-scale", false, "Let axes start above zero when all values are large")
	rootCmd.PersistentFlags().String("db-backend", string(schema.SQLiteBackend), "Database backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.MemoryCache), "Response cache backend: memory or redis or none")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached responses stay fresh")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis URL for the redis cache backend (e.g., redis://localhost:6379/0)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in status lines (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored trend arrows in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultListenAddr, "Address for the HTTP server to listen on")
	serveCmd.Flags().String("shutdown-timeout", contract.DefaultShutdownTimeout.String(), "How long to wait for in-flight requests on shutdown")
	serveCmd.Flags().Bool("debug", false, "Enable development logging")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// casesCmd flags are read directly since they only narrow one query
	casesCmd.Flags().String("product", "", "Only show decisions about this product")
	casesCmd.Flags().String("outcome", "", "Only show decisions with this outcome: upheld or not upheld")
	casesCmd.Flags().Int("offset", 0, "Number of matching decisions to skip")

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}

	// Bind all flags of dbExportCmd to Viper
	dbExportCmd.Flags().String("runs-file", "", "Optional path for the ingestion runs Parquet file")
	if err := viper.BindPFlags(dbExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db export flags", err)
	}
}
