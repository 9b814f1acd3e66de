package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/internal/parquet"
	"github.com/huangsam/fosdash/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbCmd focused on the complaint store.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the complaint store",
	Long: `Manage the relational store that holds complaint data, decisions and
the history of ingestion runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (empty)

Subcommands:
  status  - Show connection info, schema version and ingestion history
  export  - Export firm trends and ingestion runs to Parquet
  migrate - Run database schema migrations
  clear   - Remove all stored data

Examples:
  # Check store status
  fosdash db status

  # Export for analysis in pandas/DuckDB
  fosdash db export --output-file fosdash-trends.parquet`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store connection details and ingestion history",
	Long: `Show detailed information about the complaint store.

Displays:
- Backend type and connection status
- Schema version
- Number of ingestion runs and rows accepted or rejected
- When the last run finished
- Row counts per table

Examples:
  # Check the default SQLite store
  fosdash db status

  # Check a PostgreSQL store as JSON
  FOSDASH_DB_BACKEND=postgresql FOSDASH_DB_CONNECT="..." fosdash db status --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := withDashboard(func(dash *core.Dashboard) error {
			status, err := dash.GetIngestionStatus(rootCtx)
			if err != nil {
				return err
			}
			return writer.WriteIngestionStatus(status, cfg)
		})
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
	},
}

// dbExportCmd exports firm trends and ingestion runs to Parquet files.
var dbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export firm trends and ingestion runs to Parquet",
	Long: `Export computed firm trends and the ingestion history to Parquet files
for use with analytics tools.

Exports two datasets:
- Firm trends: one row per firm and metric with direction, change and confidence
- Ingestion runs: one row per load with its batch id, source file and row counts

The trends go to --output-file. The runs go to --runs-file, which defaults
to the trends file name with a "-runs" suffix.

Compatible with:
- Pandas, Polars, DuckDB
- Apache Spark
- Any Parquet-compatible tool

Requires: --output-file parameter

Examples:
  # Export all data
  fosdash db export --output-file fosdash.parquet

  # Choose where the runs go
  fosdash db export --output-file trends.parquet --runs-file runs.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runExport(cfg.OutputFile, viper.GetString("runs-file")); err != nil {
			contract.LogFatal("Failed to export data", err)
		}
	},
}

// runExport writes every firm trend to trendsPath and every ingestion run to runsPath.
func runExport(trendsPath, runsPath string) error {
	if trendsPath == "" {
		return errors.New("--output-file is required for export")
	}
	if runsPath == "" {
		runsPath = defaultRunsPath(trendsPath)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	trends, err := core.NewDashboard(s, cfg).GetAllFirmTrends(rootCtx)
	if err != nil {
		return err
	}
	runs, err := s.ListIngestionRuns(rootCtx)
	if err != nil {
		return err
	}

	if err := parquet.WriteFirmTrendsParquet(trends, trendsPath); err != nil {
		return err
	}
	fmt.Printf("Exported %d firms to %s\n", len(trends), trendsPath)

	if err := parquet.WriteIngestionRunsParquet(runs, runsPath); err != nil {
		return err
	}
	fmt.Printf("Exported %d ingestion runs to %s\n", len(runs), runsPath)
	return nil
}

// defaultRunsPath derives the ingestion runs file from the trends file.
func defaultRunsPath(trendsPath string) string {
	ext := filepath.Ext(trendsPath)
	if ext == "" {
		ext = ".parquet"
	}
	return strings.TrimSuffix(trendsPath, filepath.Ext(trendsPath)) + "-runs" + ext
}

// dbMigrateCmd runs schema migrations.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Apply or roll back schema migrations on the complaint store.

Migrations are applied automatically whenever the store is opened, so this
command is mostly useful for rolling back or pinning a version.

Examples:
  # Migrate to the latest version
  fosdash db migrate

  # Roll back to version 1
  fosdash db migrate --target-version 1

  # Roll back everything
  fosdash db migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := store.Migrate(cfg.DatabaseBackend, cfg.DatabaseDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(result.String())
	},
}

// dbClearCmd removes all stored data.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored complaint data",
	Long: `Delete all complaint data, decisions and ingestion runs.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the data tables and migration history

Examples:
  # Export before clearing
  fosdash db export --output-file backup.parquet

  # Clear the default SQLite store
  fosdash db clear`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := store.Clear(cfg.DatabaseBackend, cfg.DatabaseDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}
