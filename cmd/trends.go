package cmd

import (
	"time"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/spf13/cobra"
)

// trendsCmd shows per-firm metric trends.
var trendsCmd = &cobra.Command{
	Use:   "trends [firm]",
	Short: "Show uphold and closure rate trends per firm.",
	Long: `Compute the direction, size and confidence of each firm's movement on
every tracked metric across the reporting periods in the store.

A trend is "up" or "down" only when the change between the first and last
period is at least --threshold percent; smaller changes read as "stable".
Firms with fewer than --min-periods periods are always stable with low
confidence.

Pass a firm name to see one firm with its yearly uphold rates. Firm names
are matched case-insensitively.

Examples:
  # Trends for the first 20 firms
  fosdash trends --limit 20

  # A single firm
  fosdash trends "Acme Bank"

  # Stricter significance threshold
  fosdash trends --threshold 10

  # Export to Parquet for DuckDB or pandas
  fosdash trends --output parquet --output-file trends.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		err := withDashboard(func(dash *core.Dashboard) error {
			trends, err := loadTrends(dash)
			if err != nil {
				return err
			}
			return writer.WriteFirmTrends(trends, cfg, time.Since(start))
		})
		if err != nil {
			contract.LogFatal("Cannot compute firm trends", err)
		}
	},
}

// loadTrends returns the configured firm's trends, or the first ResultLimit firms.
func loadTrends(dash *core.Dashboard) ([]schema.FirmTrend, error) {
	if cfg.FirmName != "" {
		trend, err := dash.GetFirmTrends(rootCtx, cfg.FirmName)
		if err != nil {
			return nil, err
		}
		return []schema.FirmTrend{trend}, nil
	}

	trends, err := dash.GetAllFirmTrends(rootCtx)
	if err != nil {
		return nil, err
	}
	if len(trends) > cfg.ResultLimit {
		trends = trends[:cfg.ResultLimit]
	}
	return trends, nil
}

// benchmarkCmd shows the industry-wide trends.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Show the industry benchmark trends.",
	Long: `Compute trends over the yearly averages of every firm in the store.

Use the benchmark to judge whether a firm's movement is unusual or simply
follows the rest of the industry.

Examples:
  # Industry benchmark as a table
  fosdash benchmark

  # As JSON for a front end
  fosdash benchmark --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := withDashboard(func(dash *core.Dashboard) error {
			bench, err := dash.GetBenchmarkTrends(rootCtx)
			if err != nil {
				return err
			}
			return writer.WriteBenchmark(bench, cfg)
		})
		if err != nil {
			contract.LogFatal("Cannot compute benchmark", err)
		}
	},
}
