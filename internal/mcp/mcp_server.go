// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverVersion = "1.0.0"

// NewMCPServer initializes and configures the dashboard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, dash contract.Dashboard) *server.MCPServer {
	s := server.NewMCPServer(
		"FOS Complaints Dashboard",
		serverVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		dash:    dash,
	}

	metrics := enumOf(schema.AllMetrics)

	// --- 1. Tool: get_firm_trends ---
	s.AddTool(mcp.NewTool("get_firm_trends",
		mcp.WithDescription("Get the uphold rate and closure rate trends of one firm, or of every firm when no firm is given."),
		mcp.WithString("firm", mcp.Description("Firm name, matched case-insensitively. Omit to list all firms.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of firms returned when listing all firms.")),
	), h.handleGetFirmTrends)

	// --- 2. Tool: rank_firms ---
	s.AddTool(mcp.NewTool("rank_firms",
		mcp.WithDescription("Rank firms by the size of their significant change on a metric."),
		mcp.WithString("metric", mcp.Description("Metric to rank on. Defaults to 'uphold_rate'."), mcp.Enum(metrics...)),
		mcp.WithString("filter", mcp.Description("Keep only improving or declining firms. Defaults to 'all'."), mcp.Enum("all", "improving", "declining")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleRankFirms)

	// --- 3. Tool: get_benchmark ---
	s.AddTool(mcp.NewTool("get_benchmark",
		mcp.WithDescription("Get the industry-wide trends and the yearly average uphold rate."),
	), h.handleGetBenchmark)

	// --- 4. Tool: compute_scale ---
	s.AddTool(mcp.NewTool("compute_scale",
		mcp.WithDescription("Compute a chart y-axis range for a list of values, or for a stored metric across firms when no values are given."),
		mcp.WithArray("values", mcp.Description("Values to plot. Nulls and non-numeric entries are ignored."), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithString("chart_type", mcp.Description("Kind of values on the axis. Defaults to 'percentage'."), mcp.Enum("percentage", "volume", "rate")),
		mcp.WithString("metric", mcp.Description("Stored metric to scale when values are omitted."), mcp.Enum(metrics...)),
	), h.handleComputeScale)

	// --- 5. Tool: get_overview ---
	s.AddTool(mcp.NewTool("get_overview",
		mcp.WithDescription("Get the headline complaint figures, the benchmark and the biggest uphold rate movers."),
	), h.handleGetOverview)

	return s
}

// StartMCPServer starts the dashboard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, dash contract.Dashboard) error {
	s := NewMCPServer(baseCfg, dash)
	return server.ServeStdio(s)
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
