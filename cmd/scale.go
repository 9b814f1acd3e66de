package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/spf13/cobra"
)

// scaleCmd computes a chart axis.
var scaleCmd = &cobra.Command{
	Use:   "scale [values...]",
	Short: "Compute a chart y-axis range.",
	Long: `Compute the y-axis bounds and step size a chart should use.

With no values, the axis is computed for each firm's latest value of
--metric in the store. With values, the axis is computed for exactly those
numbers.

Percentage and rate charts keep a fixed 0-100 axis unless the values are
low or tightly clustered, in which case the axis zooms in. Volume charts
always fit the data.

Examples:
  # Axis for the latest uphold rates
  fosdash scale

  # Axis for complaint volumes
  fosdash scale --chart volume 500 1200 860

  # Let the axis start above zero
  fosdash scale --floating-scale 72 75 78`,
	PreRunE: configOnlySetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) > 0 {
			values, err := parseValues(args)
			if err != nil {
				contract.LogFatal("Cannot compute scale", err)
			}
			scale := core.ScaleValues(cfg.MetricDefinition(), values, cfg.ChartType, cfg.Scale)
			if err := writer.WriteMetricScale(scale, cfg); err != nil {
				contract.LogFatal("Cannot write scale", err)
			}
			return
		}

		err := withDashboard(func(dash *core.Dashboard) error {
			scale, err := dash.GetMetricScale(rootCtx, cfg.Metric, cfg.ChartType)
			if err != nil {
				return err
			}
			return writer.WriteMetricScale(scale, cfg)
		})
		if err != nil {
			contract.LogFatal("Cannot compute scale", err)
		}
	},
}

// parseValues parses every argument as a number.
func parseValues(args []string) ([]float64, error) {
	values := make([]float64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", contract.ErrInvalidArgument, arg)
		}
		values = append(values, v)
	}
	return values, nil
}
