package cmd

import (
	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the fosdash MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents query firm trends,
rankings, the industry benchmark and chart scales via standard tools.

Nothing else is written to stdout while the server runs, since stdio
carries the protocol.`,
	PreRunE: configOnlySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withDashboard(func(dash *core.Dashboard) error {
			return mcp.StartMCPServer(rootCtx, cfg, dash)
		})
	},
}
