package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/fosdash/core/algo"
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	dash    contract.Dashboard
}

// scaleResponse is the result of compute_scale for caller-supplied values.
type scaleResponse struct {
	ChartType schema.ChartType   `json:"chart_type"`
	Values    int                `json:"values"`
	Dynamic   bool               `json:"dynamic"`
	Scale     schema.ScaleResult `json:"scale"`
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// errorResult reports a dashboard failure to the client. Lookup and argument errors are
// returned verbatim so the agent can correct its call.
func errorResult(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, contract.ErrFirmNotFound) || errors.Is(err, contract.ErrInvalidArgument) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err))
}

func (h *toolHandler) limit(request mcp.CallToolRequest) (int, error) {
	l := request.GetInt("limit", h.baseCfg.ResultLimit)
	if l <= 0 || l > contract.MaxResultLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", contract.MaxResultLimit)
	}
	return l, nil
}

func (h *toolHandler) handleGetFirmTrends(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if firm := request.GetString("firm", ""); firm != "" {
		trend, err := h.dash.GetFirmTrends(ctx, firm)
		if err != nil {
			return errorResult("trend lookup", err), nil
		}
		return jsonResult(trend)
	}

	limit, err := h.limit(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	trends, err := h.dash.GetAllFirmTrends(ctx)
	if err != nil {
		return errorResult("trend lookup", err), nil
	}
	if len(trends) > limit {
		trends = trends[:limit]
	}
	return jsonResult(trends)
}

func (h *toolHandler) handleRankFirms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := h.limit(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metric := schema.Metric(request.GetString("metric", string(h.baseCfg.Metric)))
	filter := schema.RankFilter(request.GetString("filter", string(h.baseCfg.Filter)))

	ranked, err := h.dash.GetRankedFirms(ctx, metric, filter, limit)
	if err != nil {
		return errorResult("ranking", err), nil
	}
	return jsonResult(ranked)
}

func (h *toolHandler) handleGetBenchmark(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bench, err := h.dash.GetBenchmarkTrends(ctx)
	if err != nil {
		return errorResult("benchmark", err), nil
	}
	return jsonResult(bench)
}

func (h *toolHandler) handleComputeScale(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chartType := schema.ChartType(request.GetString("chart_type", string(schema.PercentageChart)))
	if _, ok := schema.ValidChartTypes[chartType]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown chart type %q", chartType)), nil
	}

	raw, hasValues := request.GetArguments()["values"].([]any)
	if !hasValues {
		metric := schema.Metric(request.GetString("metric", ""))
		if metric == "" {
			return mcp.NewToolResultError("either values or metric is required"), nil
		}
		scale, err := h.dash.GetMetricScale(ctx, metric, chartType)
		if err != nil {
			return errorResult("scale", err), nil
		}
		return jsonResult(scale)
	}

	values := algo.ExtractValues(raw, func(v any) any { return v })
	return jsonResult(scaleResponse{
		ChartType: chartType,
		Values:    len(values),
		Dynamic:   algo.ShouldUseDynamicScale(values),
		Scale:     algo.ComputeScale(values, chartType, h.baseCfg.Scale),
	})
}

func (h *toolHandler) handleGetOverview(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	overview, err := h.dash.GetOverview(ctx)
	if err != nil {
		return errorResult("overview", err), nil
	}
	return jsonResult(overview)
}
