// Package ingest loads published complaint figures and decision listings from CSV files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/fosdash/schema"
)

// RowError describes a rejected input row. Line is 1-based and counts the header.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// columnAliases maps accepted header spellings to canonical column names.
var columnAliases = map[string]string{
	"year":             "year",
	"reporting_year":   "year",
	"period":           "period",
	"half":             "period",
	"reporting_period": "period",

	"firm":             "firm_name",
	"firm_name":        "firm_name",
	"business_name":    "firm_name",
	"product":          "product",
	"product_category": "product",

	"complaints":        "complaints",
	"total_complaints":  "complaints",
	"upheld":            "upheld",
	"upheld_complaints": "upheld",
	"uphold_rate":       "uphold_rate",
	"upheld_rate":       "uphold_rate",

	"closure_3_days":            "closure_3_days",
	"closed_within_3_days":      "closure_3_days",
	"closed_within_three_days":  "closure_3_days",
	"closure_8_weeks":           "closure_8_weeks",
	"closed_within_8_weeks":     "closure_8_weeks",
	"closed_within_eight_weeks": "closure_8_weeks",

	"reference":          "reference",
	"decision_reference": "reference",
	"decision_date":      "decision_date",
	"date":               "decision_date",
	"outcome":            "outcome",
	"decision":           "outcome",
	"summary":            "summary",
	"description":        "summary",
}

var headerCleaner = strings.NewReplacer(" ", "_", "-", "_", "%", "", "(", "", ")", "")

// canonicalColumn normalizes a header cell: case, separators and known aliases.
func canonicalColumn(header string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	key = strings.Trim(headerCleaner.Replace(key), "_")
	if canonical, ok := columnAliases[key]; ok {
		return canonical
	}
	return key
}

// record is one data row addressed by canonical column name.
type record struct {
	line   int
	fields []string
	index  map[string]int
}

func (r record) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// readRecords reads the header and hands every following row to fn.
// Columns listed in required must be present in the header.
func readRecords(r io.Reader, required []string, fn func(record)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return errors.New("empty input: missing header row")
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		col := canonicalColumn(h)
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				fn(record{line: parseErr.StartLine, index: index})
				continue
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if blankRow(fields) {
			continue
		}
		line, _ := reader.FieldPos(0)
		fn(record{line: line, fields: fields, index: index})
	}
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

var numberCleaner = strings.NewReplacer("%", "", ",", "", " ", "", "\u00a0", "")

// parseNumber cleans a published figure. Blank and placeholder cells are nil.
func parseNumber(raw string) (*float64, error) {
	cleaned := numberCleaner.Replace(strings.TrimSpace(raw))
	switch strings.ToLower(cleaned) {
	case "", "-", "n/a", "na", "null":
		return nil, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &v, nil
}

// parseCount parses a non-negative whole count. Blank cells count as zero.
func parseCount(raw, column string) (int, error) {
	v, err := parseNumber(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", column, err)
	}
	if v == nil {
		return 0, nil
	}
	if *v < 0 || *v != math.Trunc(*v) {
		return 0, fmt.Errorf("%s: expected a non-negative whole number, got %q", column, raw)
	}
	return int(*v), nil
}

// parseRate parses a percentage in [0, 100].
func parseRate(raw, column string) (*float64, error) {
	v, err := parseNumber(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", column, err)
	}
	if v != nil && (*v < 0 || *v > 100) {
		return nil, fmt.Errorf("%s: percentage %q out of range", column, raw)
	}
	return v, nil
}

var (
	yearPattern       = regexp.MustCompile(`^\d{4}$`)
	yearPeriodPattern = regexp.MustCompile(`^(\d{4})[\s_/-]*([HhQq][1-4])$`)
)

// splitPeriod returns the year and sub-period of a row. A combined label such as
// "2023-H1" in the period column fills a blank year.
func splitPeriod(year, period string) (string, string, error) {
	if m := yearPeriodPattern.FindStringSubmatch(period); m != nil {
		if year != "" && year != m[1] {
			return "", "", fmt.Errorf("period %q does not match year %q", period, year)
		}
		return m[1], strings.ToUpper(m[2]), nil
	}
	if year == "" {
		return "", "", errors.New("year is required")
	}
	if !yearPattern.MatchString(year) {
		return "", "", fmt.Errorf("invalid year %q", year)
	}
	return year, strings.ToUpper(period), nil
}

// ParseComplaints reads complaint figures. Rows failing validation are returned
// as RowErrors; only unreadable input or a bad header fails the whole parse.
func ParseComplaints(r io.Reader) ([]schema.ComplaintRecord, []RowError, error) {
	var records []schema.ComplaintRecord
	var rejected []RowError

	err := readRecords(r, []string{"firm_name"}, func(rec record) {
		c, err := complaintFromRecord(rec)
		if err != nil {
			rejected = append(rejected, RowError{Line: rec.line, Reason: err.Error()})
			return
		}
		records = append(records, c)
	})
	if err != nil {
		return nil, nil, err
	}
	return records, rejected, nil
}

func complaintFromRecord(rec record) (schema.ComplaintRecord, error) {
	if rec.fields == nil {
		return schema.ComplaintRecord{}, errors.New("malformed csv row")
	}
	c := schema.ComplaintRecord{
		FirmName: rec.get("firm_name"),
		Product:  rec.get("product"),
	}
	if c.FirmName == "" {
		return c, errors.New("firm_name is required")
	}

	var err error
	if c.Year, c.Period, err = splitPeriod(rec.get("year"), rec.get("period")); err != nil {
		return c, err
	}
	if c.Complaints, err = parseCount(rec.get("complaints"), "complaints"); err != nil {
		return c, err
	}
	if c.Upheld, err = parseCount(rec.get("upheld"), "upheld"); err != nil {
		return c, err
	}
	if c.Upheld > c.Complaints {
		return c, fmt.Errorf("upheld (%d) exceeds complaints (%d)", c.Upheld, c.Complaints)
	}
	if c.UpholdRate, err = parseRate(rec.get("uphold_rate"), "uphold_rate"); err != nil {
		return c, err
	}
	if c.Closure3Days, err = parseRate(rec.get("closure_3_days"), "closure_3_days"); err != nil {
		return c, err
	}
	if c.Closure8Weeks, err = parseRate(rec.get("closure_8_weeks"), "closure_8_weeks"); err != nil {
		return c, err
	}

	if c.UpholdRate == nil && c.Complaints > 0 {
		rate := math.Round(float64(c.Upheld)/float64(c.Complaints)*10000) / 100
		c.UpholdRate = &rate
	}
	return c, nil
}

// decisionDateLayouts are tried in order when reading decision dates.
var decisionDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2 January 2006",
	"2 Jan 2006",
	time.RFC3339,
}

func parseDecisionDate(raw string) (time.Time, error) {
	for _, layout := range decisionDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid decision_date %q", raw)
}

// parseOutcome accepts the published outcome spellings.
func parseOutcome(raw string) (schema.Outcome, error) {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(raw, "_", " "))), " ")
	switch normalized {
	case "upheld":
		return schema.UpheldOutcome, nil
	case "not upheld":
		return schema.NotUpheldOutcome, nil
	case "":
		return "", errors.New("outcome is required")
	default:
		return "", fmt.Errorf("invalid outcome %q", raw)
	}
}

// ParseCases reads a decision listing. Rows failing validation are returned as RowErrors.
func ParseCases(r io.Reader) ([]schema.CaseRecord, []RowError, error) {
	var records []schema.CaseRecord
	var rejected []RowError

	err := readRecords(r, []string{"reference", "firm_name"}, func(rec record) {
		c, err := caseFromRecord(rec)
		if err != nil {
			rejected = append(rejected, RowError{Line: rec.line, Reason: err.Error()})
			return
		}
		records = append(records, c)
	})
	if err != nil {
		return nil, nil, err
	}
	return records, rejected, nil
}

func caseFromRecord(rec record) (schema.CaseRecord, error) {
	if rec.fields == nil {
		return schema.CaseRecord{}, errors.New("malformed csv row")
	}
	c := schema.CaseRecord{
		Reference: rec.get("reference"),
		FirmName:  rec.get("firm_name"),
		Product:   rec.get("product"),
		Summary:   rec.get("summary"),
	}
	if c.Reference == "" {
		return c, errors.New("reference is required")
	}
	if c.FirmName == "" {
		return c, errors.New("firm_name is required")
	}

	var err error
	if c.DecisionDate, err = parseDecisionDate(rec.get("decision_date")); err != nil {
		return c, err
	}
	if c.Outcome, err = parseOutcome(rec.get("outcome")); err != nil {
		return c, err
	}
	return c, nil
}
