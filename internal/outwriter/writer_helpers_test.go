package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatHelpers(t *testing.T) {
	v := 33.333
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "float rounds to one decimal", got: fmtFloat(33.35), expected: "33.4"},
		{name: "negative float", got: fmtFloat(-42.567), expected: "-42.6"},
		{name: "whole float", got: fmtFloat(20), expected: "20.0"},
		{name: "optional value", got: fmtOptional(&v), expected: "33.3"},
		{name: "optional nil", got: fmtOptional(nil), expected: "-"},
		{name: "small count", got: fmtCount(999), expected: "999"},
		{name: "large count", got: fmtCount(1234567), expected: "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestTrendCell(t *testing.T) {
	falling := schema.TrendResult{Direction: schema.DirectionDown, ChangePercent: -50, IsSignificant: true}
	rising := schema.TrendResult{Direction: schema.DirectionUp, ChangePercent: 12.5, IsSignificant: true}

	assert.Equal(t, "↓ -50.0%", trendCell(falling, schema.UpholdRateMetric, false))
	assert.Equal(t, "↑ +12.5%", trendCell(rising, schema.Closure3DaysMetric, false))
	assert.Equal(t, "→ 0.0%", trendCell(schema.TrendResult{Direction: schema.DirectionStable}, schema.UpholdRateMetric, false))

	// Colored output still carries the plain text.
	assert.Contains(t, trendCell(falling, schema.UpholdRateMetric, true), "↓ -50.0%")
}

func TestSignificance(t *testing.T) {
	assert.Equal(t, "yes", significance(schema.TrendResult{IsSignificant: true}))
	assert.Equal(t, "no", significance(schema.TrendResult{}))
}

func TestUnsupportedParquet(t *testing.T) {
	err := unsupportedParquet("cases")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parquet output is not supported for cases")
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		expected string
	}{
		{
			name:     "trend point",
			data:     schema.TrendPoint{Period: "2023", Value: 24.5, SubPeriod: "H1"},
			expected: "{\n  \"period\": \"2023\",\n  \"value\": 24.5,\n  \"sub_period\": \"H1\"\n}\n",
		},
		{
			name: "trend display list",
			data: []schema.TrendDisplay{{Arrow: "↓", Percent: "-12.0%", Color: "green"}},
			expected: "[\n  {\n    \"arrow\": \"↓\",\n    \"percent\": \"-12.0%\",\n    \"color\": \"green\"\n  }\n]\n",
		},
		{
			name:     "empty firm list stays an array",
			data:     []schema.FirmSummary{},
			expected: "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeJSON(&buf, tt.data))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, schema.TrendPoint{Period: "2023", Value: math.Inf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	ranked := []schema.RankedFirm{
		{FirmName: "Acme Bank", Trend: schema.TrendResult{Direction: schema.DirectionDown, ChangePercent: -50}},
		{FirmName: "Smith, Jones & Co", Trend: schema.TrendResult{Direction: schema.DirectionUp, ChangePercent: 12.5}},
	}
	header := []string{"rank", "firm", "direction", "change_pct"}

	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, header, func(w *csv.Writer) error {
		for i, r := range ranked {
			row := []string{strconv.Itoa(i + 1), r.FirmName, string(r.Trend.Direction), fmtFloat(r.Trend.ChangePercent)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t,
		"rank,firm,direction,change_pct\n1,Acme Bank,down,-50.0\n2,\"Smith, Jones & Co\",up,12.5\n",
		buf.String())

	buf.Reset()
	require.NoError(t, writeCSVWithHeader(&buf, header, func(*csv.Writer) error { return nil }))
	assert.Equal(t, "rank,firm,direction,change_pct\n", buf.String())
}

func TestWriteCSVWithHeaderError(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"firm"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote trends")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "benchmark.json")
		bench := schema.BenchmarkTrend{YearlyData: []schema.TrendPoint{{Period: "2022", Value: 31}, {Period: "2023", Value: 27}}}
		require.NoError(t, writeWithFile(path, func(w io.Writer) error { return writeJSON(w, bench) }, "Wrote benchmark"))

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got schema.BenchmarkTrend
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, bench.YearlyData, got.YearlyData)
	})

	t.Run("writer error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trends.csv")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote trends")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("unwritable path", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "missing", "trends.csv"), func(io.Writer) error { return nil }, "Wrote trends")
		require.Error(t, err)
	})
}

func TestWriteCSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.csv")
	cases := []schema.CaseRecord{
		{Reference: "DRN-0001", FirmName: "Acme Bank", Outcome: schema.UpheldOutcome},
		{Reference: "DRN-0002", FirmName: "Beta Insurance", Outcome: schema.NotUpheldOutcome},
	}

	err := writeWithFile(path, func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"reference", "firm", "outcome"}, func(cw *csv.Writer) error {
			for _, c := range cases {
				if err := cw.Write([]string{c.Reference, c.FirmName, string(c.Outcome)}); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote cases")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "reference,firm,outcome", lines[0])
	assert.Equal(t, "DRN-0002,Beta Insurance,not upheld", lines[2])
}
