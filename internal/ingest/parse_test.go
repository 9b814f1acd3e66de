package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

const complaintsCSV = `Year,Period,Firm Name,Product,Complaints,Upheld,Uphold Rate (%),Closed within 3 days,Closed within 8 weeks
2022,H1,Acme Bank,Banking,"1,200",300,25%,40.5,90
,2022-H2,Acme Bank,Banking,1000,200,,n/a,88
2023,H1,,Banking,10,1,10,1,1
2023,H1,Beta Insurance,Motor,10,20,,,
abcd,H1,Beta Insurance,Motor,10,2,,,
2023,H1,Beta Insurance,Motor,10,2,120,,

2023,h2,Beta Insurance,Motor,0,0,-,-,-
`

func TestParseComplaints(t *testing.T) {
	records, rejected, err := ParseComplaints(strings.NewReader(complaintsCSV))
	require.NoError(t, err)

	expected := []schema.ComplaintRecord{
		{
			Year: "2022", Period: "H1", FirmName: "Acme Bank", Product: "Banking",
			Complaints: 1200, Upheld: 300, UpholdRate: ptr(25), Closure3Days: ptr(40.5), Closure8Weeks: ptr(90),
		},
		{
			Year: "2022", Period: "H2", FirmName: "Acme Bank", Product: "Banking",
			Complaints: 1000, Upheld: 200, UpholdRate: ptr(20), Closure8Weeks: ptr(88),
		},
		{
			Year: "2023", Period: "H2", FirmName: "Beta Insurance", Product: "Motor",
		},
	}
	assert.Equal(t, expected, records)

	require.Len(t, rejected, 4)
	assert.Equal(t, RowError{Line: 4, Reason: "firm_name is required"}, rejected[0])
	assert.Equal(t, RowError{Line: 5, Reason: "upheld (20) exceeds complaints (10)"}, rejected[1])
	assert.Equal(t, RowError{Line: 6, Reason: `invalid year "abcd"`}, rejected[2])
	assert.Equal(t, 7, rejected[3].Line)
	assert.Contains(t, rejected[3].Reason, "out of range")
}

func TestParseComplaints_HeaderErrors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError string
	}{
		{name: "empty input", input: "", expectError: "missing header row"},
		{name: "missing firm column", input: "Year,Complaints\n2023,10\n", expectError: "missing required columns: firm_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseComplaints(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestParseComplaints_MalformedRow(t *testing.T) {
	input := "firm,year\nAcme,2023\nBe\"ta,2023\nGamma,2024\n"
	records, rejected, err := ParseComplaints(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, records, 2)
	require.Len(t, rejected, 1)
	assert.Equal(t, RowError{Line: 3, Reason: "malformed csv row"}, rejected[0])
}

const casesCSV = `Reference,Firm,Product,Decision Date,Outcome,Summary
DRN-1,Acme Bank,Mortgages,2023-05-01,Upheld,Fee refund
DRN-2,Acme Bank,Loans,15/06/2023,Not_Upheld,
DRN-3,Beta Insurance,Motor,yesterday,upheld,
DRN-4,Beta Insurance,Motor,2023-01-01,partially upheld,
,Beta Insurance,Motor,2023-01-01,upheld,
DRN-6,Beta Insurance,Motor,3 March 2024,  NOT   upheld ,Claim declined
`

func TestParseCases(t *testing.T) {
	records, rejected, err := ParseCases(strings.NewReader(casesCSV))
	require.NoError(t, err)

	expected := []schema.CaseRecord{
		{
			Reference: "DRN-1", FirmName: "Acme Bank", Product: "Mortgages",
			DecisionDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), Outcome: schema.UpheldOutcome, Summary: "Fee refund",
		},
		{
			Reference: "DRN-2", FirmName: "Acme Bank", Product: "Loans",
			DecisionDate: time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), Outcome: schema.NotUpheldOutcome,
		},
		{
			Reference: "DRN-6", FirmName: "Beta Insurance", Product: "Motor",
			DecisionDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), Outcome: schema.NotUpheldOutcome, Summary: "Claim declined",
		},
	}
	assert.Equal(t, expected, records)

	require.Len(t, rejected, 3)
	assert.Equal(t, RowError{Line: 4, Reason: `invalid decision_date "yesterday"`}, rejected[0])
	assert.Equal(t, RowError{Line: 5, Reason: `invalid outcome "partially upheld"`}, rejected[1])
	assert.Equal(t, RowError{Line: 6, Reason: "reference is required"}, rejected[2])
}

func TestParseCases_MissingColumns(t *testing.T) {
	_, _, err := ParseCases(strings.NewReader("Firm,Outcome\nAcme,upheld\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns: reference")
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Firm Name", "firm_name"},
		{"\ufeffYear", "year"},
		{"Uphold Rate (%)", "uphold_rate"},
		{"closed-within-8-weeks", "closure_8_weeks"},
		{"  COMPLAINTS ", "complaints"},
		{"Region", "region"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.expected, canonicalColumn(tt.header))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw       string
		expected  *float64
		expectErr bool
	}{
		{raw: "42", expected: ptr(42)},
		{raw: "1,234.5", expected: ptr(1234.5)},
		{raw: "12.5%", expected: ptr(12.5)},
		{raw: " 7 ", expected: ptr(7)},
		{raw: "", expected: nil},
		{raw: "N/A", expected: nil},
		{raw: "-", expected: nil},
		{raw: "abc", expectErr: true},
		{raw: "NaN", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseNumber(tt.raw)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseCount(t *testing.T) {
	n, err := parseCount("", "complaints")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = parseCount("1.5", "complaints")
	assert.ErrorContains(t, err, "whole number")

	_, err = parseCount("-3", "upheld")
	assert.ErrorContains(t, err, "upheld")
}

func TestSplitPeriod(t *testing.T) {
	tests := []struct {
		name        string
		year        string
		period      string
		expectYear  string
		expectHalf  string
		expectError string
	}{
		{name: "separate", year: "2023", period: "H1", expectYear: "2023", expectHalf: "H1"},
		{name: "combined", period: "2023-H2", expectYear: "2023", expectHalf: "H2"},
		{name: "combined with space", period: "2021 h1", expectYear: "2021", expectHalf: "H1"},
		{name: "year only", year: "2020", expectYear: "2020"},
		{name: "mismatch", year: "2022", period: "2023-H1", expectError: "does not match"},
		{name: "missing", period: "H1", expectError: "year is required"},
		{name: "bad year", year: "23", expectError: "invalid year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, half, err := splitPeriod(tt.year, tt.period)
			if tt.expectError != "" {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectYear, year)
			assert.Equal(t, tt.expectHalf, half)
		})
	}
}
