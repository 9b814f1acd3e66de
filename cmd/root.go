package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/iocache"
	"github.com/huangsam/fosdash/internal/outwriter"
	"github.com/huangsam/fosdash/internal/store"
	"github.com/huangsam/fosdash/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// writer renders every report produced by the CLI.
var writer = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "fosdash",
	Short:              "Track Financial Ombudsman complaint trends across firms.",
	Long:               `Fosdash loads published complaint data and shows which firms are getting better or worse at handling complaints.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in a .env file, the config file and ENV variables if set.
func initConfig() {
	// A missing .env file is the common case
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		contract.LogWarn("Cannot load .env file", err)
	}

	setConfigPaths()

	// Set environment variable prefix
	viper.SetEnvPrefix("FOSDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("metric", schema.UpholdRateMetric)
	viper.SetDefault("filter", schema.AllFilter)
	viper.SetDefault("chart", schema.PercentageChart)
	viper.SetDefault("threshold", schema.DefaultSignificanceThreshold)
	viper.SetDefault("min-periods", schema.DefaultMinPeriodsForTrend)
	viper.SetDefault("max-padding", schema.DefaultScaleOptions().MaxPadding)
	viper.SetDefault("round-to", schema.DefaultScaleOptions().RoundTo)
	viper.SetDefault("db-backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("cache-backend", schema.MemoryCache)
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("addr", contract.DefaultListenAddr)
	viper.SetDefault("shutdown-timeout", contract.DefaultShutdownTimeout.String())
	viper.SetDefault("emoji", "yes")
	viper.SetDefault("color", "yes")
}

// setConfigPaths points Viper at an explicit config file or the default search paths.
func setConfigPaths() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".fosdash") // Name of config file (without extension)
	viper.SetConfigType("yaml")     // We'll use YAML format
	viper.AddConfigPath(".")        // Look in the current directory
	viper.AddConfigPath("$HOME")    // Look in the home directory
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.FirmStr = ""
	if len(args) == 1 {
		input.FirmStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// configOnlySetupWrapper runs sharedSetup without treating positional args as a firm name.
func configOnlySetupWrapper(cmd *cobra.Command, _ []string) error {
	return sharedSetup(rootCtx, cmd, nil)
}

// openStore opens the configured complaint store, applying pending migrations.
func openStore() (*store.SQLStore, error) {
	s, err := store.NewStore(cfg.DatabaseBackend, cfg.DatabaseDBConnect)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.DatabaseBackend, err)
	}
	return s, nil
}

// withDashboard opens the store, builds a dashboard over it and closes the store afterwards.
func withDashboard(fn func(dash *core.Dashboard) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(core.NewDashboard(s, cfg))
}

// sharedCache returns the response cache a running server would read.
// The memory cache lives inside the server process, so only redis is shared.
func sharedCache() (contract.ResponseCache, error) {
	if cfg.CacheBackend != schema.RedisCache {
		return nil, nil
	}
	return iocache.NewResponseCache(cfg.CacheBackend, cfg.CacheTTL, cfg.RedisURL)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
