package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/huangsam/fosdash/core"
	"github.com/huangsam/fosdash/internal/contract"
	mcp_internal "github.com/huangsam/fosdash/internal/mcp"
	"github.com/huangsam/fosdash/internal/store"
	"github.com/huangsam/fosdash/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testRows() []schema.FirmYearRow {
	return []schema.FirmYearRow{
		{FirmName: "Acme Bank", Year: "2021", UpholdRate: ptr(40)},
		{FirmName: "Acme Bank", Year: "2023", UpholdRate: ptr(20)},
		{FirmName: "Beta Insurance", Year: "2021", UpholdRate: ptr(20)},
		{FirmName: "Beta Insurance", Year: "2023", UpholdRate: ptr(30)},
	}
}

func newTestServer() (*server.MCPServer, *store.MockStore) {
	baseCfg := &contract.Config{
		Metric:      schema.UpholdRateMetric,
		Filter:      schema.AllFilter,
		ResultLimit: 10,
		Trend:       schema.DefaultTrendOptions(),
		Scale:       schema.DefaultScaleOptions(),
	}
	s := &store.MockStore{}
	return mcp_internal.NewMCPServer(baseCfg, core.NewDashboard(s, baseCfg)), s
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "result should be text content")
	return text.Text
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %s", resultText(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	return v
}

func TestGetFirmTrends(t *testing.T) {
	t.Run("single firm", func(t *testing.T) {
		s, st := newTestServer()
		st.On("FirmRows", mock.Anything, "acme bank").Return(testRows()[:2], nil)

		trend := decodeResult[schema.FirmTrend](t, callTool(t, s, "get_firm_trends", map[string]any{"firm": "acme bank"}))
		assert.Equal(t, "Acme Bank", trend.FirmName)
		assert.Equal(t, schema.DirectionDown, trend.UpholdTrend.Direction)
		assert.Equal(t, -50.0, trend.UpholdTrend.ChangePercent)
	})

	t.Run("unknown firm", func(t *testing.T) {
		s, st := newTestServer()
		st.On("FirmRows", mock.Anything, "Nobody").Return([]schema.FirmYearRow{}, nil)

		res := callTool(t, s, "get_firm_trends", map[string]any{"firm": "Nobody"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "firm not found")
	})

	t.Run("all firms with limit", func(t *testing.T) {
		s, st := newTestServer()
		st.On("AllFirmRows", mock.Anything).Return(testRows(), nil)

		trends := decodeResult[[]schema.FirmTrend](t, callTool(t, s, "get_firm_trends", map[string]any{"limit": 1.0}))
		require.Len(t, trends, 1)
		assert.Equal(t, "Acme Bank", trends[0].FirmName)
	})

	t.Run("invalid limit", func(t *testing.T) {
		s, _ := newTestServer()
		res := callTool(t, s, "get_firm_trends", map[string]any{"limit": -1.0})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "limit must be between 1 and")
	})
}

func TestRankFirms(t *testing.T) {
	t.Run("improving uphold rate", func(t *testing.T) {
		s, st := newTestServer()
		st.On("AllFirmRows", mock.Anything).Return(testRows(), nil)

		ranked := decodeResult[[]schema.RankedFirm](t, callTool(t, s, "rank_firms", map[string]any{"filter": "improving"}))
		require.Len(t, ranked, 1)
		assert.Equal(t, "Acme Bank", ranked[0].FirmName)
		assert.Equal(t, schema.ColorImproving, ranked[0].Display.Color)
	})

	t.Run("unknown metric", func(t *testing.T) {
		s, _ := newTestServer()
		res := callTool(t, s, "rank_firms", map[string]any{"metric": "complaints_per_day"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "unknown metric")
	})

	t.Run("store failure", func(t *testing.T) {
		s, st := newTestServer()
		st.On("AllFirmRows", mock.Anything).Return(nil, errors.New("connection refused"))

		res := callTool(t, s, "rank_firms", nil)
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "ranking failed")
	})
}

func TestGetBenchmark(t *testing.T) {
	s, st := newTestServer()
	st.On("BenchmarkRows", mock.Anything).Return([]schema.BenchmarkRow{
		{Year: "2022", AvgUpholdRate: ptr(30), FirmCount: 4},
		{Year: "2023", AvgUpholdRate: ptr(24), FirmCount: 5},
	}, nil)

	bench := decodeResult[schema.BenchmarkTrend](t, callTool(t, s, "get_benchmark", nil))
	assert.Equal(t, schema.DirectionDown, bench.UpholdTrend.Direction)
	assert.Equal(t, -20.0, bench.UpholdTrend.ChangePercent)
	require.Len(t, bench.YearlyData, 2)
}

func TestComputeScale(t *testing.T) {
	type scaleResponse struct {
		ChartType schema.ChartType   `json:"chart_type"`
		Values    int                `json:"values"`
		Dynamic   bool               `json:"dynamic"`
		Scale     schema.ScaleResult `json:"scale"`
	}

	t.Run("percentage values skip non-numbers", func(t *testing.T) {
		s, _ := newTestServer()
		got := decodeResult[scaleResponse](t, callTool(t, s, "compute_scale", map[string]any{
			"values": []any{12.0, nil, 18.0, "n/a", 25.0},
		}))
		assert.Equal(t, schema.PercentageChart, got.ChartType)
		assert.Equal(t, 3, got.Values)
		assert.True(t, got.Dynamic)
		assert.Equal(t, schema.ScaleResult{Min: 0, Max: 35, StepSize: 10}, got.Scale)
	})

	t.Run("volume values", func(t *testing.T) {
		s, _ := newTestServer()
		got := decodeResult[scaleResponse](t, callTool(t, s, "compute_scale", map[string]any{
			"values":     []any{500.0, 1200.0},
			"chart_type": "volume",
		}))
		assert.False(t, got.Dynamic)
		assert.Equal(t, schema.ScaleResult{Min: 0, Max: 1380, StepSize: 276}, got.Scale)
	})

	t.Run("empty values use the default axis", func(t *testing.T) {
		s, _ := newTestServer()
		got := decodeResult[scaleResponse](t, callTool(t, s, "compute_scale", map[string]any{"values": []any{}}))
		assert.Equal(t, 0, got.Values)
		assert.Equal(t, 100.0, got.Scale.Max)
	})

	t.Run("stored metric", func(t *testing.T) {
		s, st := newTestServer()
		st.On("AllFirmRows", mock.Anything).Return(testRows(), nil)

		got := decodeResult[schema.MetricScale](t, callTool(t, s, "compute_scale", map[string]any{"metric": "uphold_rate"}))
		assert.Equal(t, schema.UpholdRateMetric, got.Metric)
		assert.Equal(t, 2, got.Values)
		assert.True(t, got.Dynamic)
	})

	t.Run("missing values and metric", func(t *testing.T) {
		s, _ := newTestServer()
		res := callTool(t, s, "compute_scale", map[string]any{"chart_type": "rate"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "either values or metric is required")
	})

	t.Run("unknown chart type", func(t *testing.T) {
		s, _ := newTestServer()
		res := callTool(t, s, "compute_scale", map[string]any{"values": []any{1.0}, "chart_type": "pie"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "unknown chart type")
	})
}

func TestGetOverview(t *testing.T) {
	s, st := newTestServer()
	st.On("Overview", mock.Anything).Return(schema.OverviewMetrics{TotalComplaints: 42, TotalFirms: 2}, nil)
	st.On("BenchmarkRows", mock.Anything).Return([]schema.BenchmarkRow{}, nil)
	st.On("AllFirmRows", mock.Anything).Return(testRows(), nil)

	overview := decodeResult[schema.DashboardOverview](t, callTool(t, s, "get_overview", nil))
	assert.Equal(t, 42, overview.Metrics.TotalComplaints)
	require.Len(t, overview.TopImproving, 1)
	assert.Equal(t, "Acme Bank", overview.TopImproving[0].FirmName)
	require.Len(t, overview.TopDeclining, 1)
	assert.Equal(t, "Beta Insurance", overview.TopDeclining[0].FirmName)
}
