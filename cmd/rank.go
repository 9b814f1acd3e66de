package cmd

import (
	"time"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/spf13/cobra"
)

// rankCmd ranks firms by significant movement on one metric.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank firms by their most significant changes.",
	Long: `Rank firms by the size of their significant change on a metric.

Only firms whose trend crossed the significance threshold are ranked.
"Improving" and "declining" account for the metric's polarity: a falling
uphold rate is an improvement, while a falling closure rate is a decline.

Examples:
  # Biggest uphold rate movers
  fosdash rank

  # Firms getting slower at closing complaints
  fosdash rank --metric closure_8_weeks --filter declining

  # Top 5 improvers as CSV
  fosdash rank --filter improving --limit 5 --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		start := time.Now()
		err := withDashboard(func(dash *core.Dashboard) error {
			ranked, err := dash.GetRankedFirms(rootCtx, cfg.Metric, cfg.Filter, cfg.ResultLimit)
			if err != nil {
				return err
			}
			return writer.WriteRankedFirms(ranked, cfg, time.Since(start))
		})
		if err != nil {
			contract.LogFatal("Cannot rank firms", err)
		}
	},
}
