package cmd

import (
	"strings"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/spf13/cobra"
)

// casesCmd lists ombudsman decisions.
var casesCmd = &cobra.Command{
	Use:   "cases [firm]",
	Short: "List ombudsman decisions.",
	Long: `List published ombudsman decisions, newest first.

Decisions can be narrowed to one firm, one product and one outcome, and
paged with --limit and --offset.

Examples:
  # Latest decisions
  fosdash cases

  # Upheld decisions against one firm
  fosdash cases "Acme Bank" --outcome upheld

  # Second page of mortgage decisions
  fosdash cases --product Mortgages --limit 50 --offset 50`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		product, _ := cmd.Flags().GetString("product")
		outcome, _ := cmd.Flags().GetString("outcome")
		offset, _ := cmd.Flags().GetInt("offset")

		filter := schema.CaseFilter{
			FirmName: cfg.FirmName,
			Product:  strings.TrimSpace(product),
			Outcome:  schema.Outcome(strings.ToLower(strings.TrimSpace(outcome))),
			Limit:    cfg.ResultLimit,
			Offset:   offset,
		}

		err := withDashboard(func(dash *core.Dashboard) error {
			listing, err := dash.GetCases(rootCtx, filter)
			if err != nil {
				return err
			}
			return writer.WriteCases(listing, cfg)
		})
		if err != nil {
			contract.LogFatal("Cannot list decisions", err)
		}
	},
}
