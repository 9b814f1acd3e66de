package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
)

// Overview returns dataset-wide totals and averages.
func (s *SQLStore) Overview(ctx context.Context) (schema.OverviewMetrics, error) {
	var m schema.OverviewMetrics
	if s.disabled() {
		return m, nil
	}

	totalsQuery := fmt.Sprintf(`
		SELECT COALESCE(SUM(complaints), 0), COALESCE(SUM(upheld), 0), COUNT(DISTINCT firm_name),
		       COALESCE(AVG(uphold_rate), 0), COALESCE(AVG(closure_3_days), 0), COALESCE(AVG(closure_8_weeks), 0),
		       COALESCE(MAX(year), ''), COALESCE(MIN(year), '')
		FROM %s`, s.table(complaintsTable))
	row := s.db.QueryRowContext(ctx, totalsQuery)
	if err := row.Scan(&m.TotalComplaints, &m.TotalUpheld, &m.TotalFirms,
		&m.AvgUpholdRate, &m.AvgClosure3Days, &m.AvgClosure8Weeks,
		&m.LatestYear, &m.EarliestYear); err != nil {
		return m, fmt.Errorf("failed to get complaint totals: %w", err)
	}

	periodsQuery := fmt.Sprintf(`SELECT COUNT(*) FROM (SELECT DISTINCT year, period FROM %s) p`, s.table(complaintsTable))
	if err := s.db.QueryRowContext(ctx, periodsQuery).Scan(&m.ReportingPeriods); err != nil {
		return m, fmt.Errorf("failed to count reporting periods: %w", err)
	}

	casesQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table(casesTable))
	if err := s.db.QueryRowContext(ctx, casesQuery).Scan(&m.TotalCases); err != nil {
		return m, fmt.Errorf("failed to count cases: %w", err)
	}

	return m, nil
}

// ListFirms returns one summary per firm, ordered by firm name.
func (s *SQLStore) ListFirms(ctx context.Context) ([]schema.FirmSummary, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT firm_name, COALESCE(SUM(complaints), 0), AVG(uphold_rate), MAX(year), COUNT(DISTINCT product)
		FROM %s
		GROUP BY firm_name
		ORDER BY firm_name`, s.table(complaintsTable))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query firms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FirmSummary
	for rows.Next() {
		var f schema.FirmSummary
		var avg sql.NullFloat64
		if err := rows.Scan(&f.FirmName, &f.TotalComplaints, &avg, &f.LatestYear, &f.Products); err != nil {
			return nil, fmt.Errorf("failed to scan firm: %w", err)
		}
		f.AvgUpholdRate = nullFloat(avg)
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating firms: %w", err)
	}
	return results, nil
}

// FirmRows returns the metric rows of a single firm, matched case-insensitively.
func (s *SQLStore) FirmRows(ctx context.Context, firm string) ([]schema.FirmYearRow, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT firm_name, year, uphold_rate, closure_3_days, closure_8_weeks
		FROM %s
		WHERE LOWER(firm_name) = LOWER(?)
		ORDER BY year, period, id`, s.table(complaintsTable))
	return s.queryFirmRows(ctx, s.rebind(query), strings.TrimSpace(firm))
}

// AllFirmRows returns the metric rows of every firm, ordered by firm and year.
func (s *SQLStore) AllFirmRows(ctx context.Context) ([]schema.FirmYearRow, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT firm_name, year, uphold_rate, closure_3_days, closure_8_weeks
		FROM %s
		ORDER BY firm_name, year, period, id`, s.table(complaintsTable))
	return s.queryFirmRows(ctx, query)
}

func (s *SQLStore) queryFirmRows(ctx context.Context, query string, args ...any) ([]schema.FirmYearRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query firm rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FirmYearRow
	for rows.Next() {
		var r schema.FirmYearRow
		var uphold, c3, c8 sql.NullFloat64
		if err := rows.Scan(&r.FirmName, &r.Year, &uphold, &c3, &c8); err != nil {
			return nil, fmt.Errorf("failed to scan firm row: %w", err)
		}
		r.UpholdRate, r.Closure3Days, r.Closure8Weeks = nullFloat(uphold), nullFloat(c3), nullFloat(c8)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating firm rows: %w", err)
	}
	return results, nil
}

// BenchmarkRows returns the industry-wide yearly averages.
func (s *SQLStore) BenchmarkRows(ctx context.Context) ([]schema.BenchmarkRow, error) {
	if s.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT year, AVG(uphold_rate), AVG(closure_3_days), AVG(closure_8_weeks), COUNT(DISTINCT firm_name)
		FROM %s
		GROUP BY year
		ORDER BY year`, s.table(complaintsTable))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.BenchmarkRow
	for rows.Next() {
		var r schema.BenchmarkRow
		var uphold, c3, c8 sql.NullFloat64
		if err := rows.Scan(&r.Year, &uphold, &c3, &c8, &r.FirmCount); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark row: %w", err)
		}
		r.AvgUpholdRate, r.AvgClosure3Days, r.AvgClosure8Weeks = nullFloat(uphold), nullFloat(c3), nullFloat(c8)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark rows: %w", err)
	}
	return results, nil
}

// ListCases returns a page of decisions matching the filter, newest first.
func (s *SQLStore) ListCases(ctx context.Context, filter schema.CaseFilter) (schema.CaseListing, error) {
	if filter.Limit <= 0 {
		filter.Limit = contract.DefaultCaseLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	listing := schema.CaseListing{Cases: []schema.CaseRecord{}, Limit: filter.Limit, Offset: filter.Offset}
	if s.disabled() {
		return listing, nil
	}

	var where []string
	var args []any
	if f := strings.TrimSpace(filter.FirmName); f != "" {
		where = append(where, "LOWER(firm_name) = LOWER(?)")
		args = append(args, f)
	}
	if p := strings.TrimSpace(filter.Product); p != "" {
		where = append(where, "LOWER(product) = LOWER(?)")
		args = append(args, p)
	}
	if filter.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, string(filter.Outcome))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := s.rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, s.table(casesTable), clause))
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&listing.Total); err != nil {
		return listing, fmt.Errorf("failed to count cases: %w", err)
	}

	pageQuery := s.rebind(fmt.Sprintf(`
		SELECT reference, firm_name, product, decision_date, outcome, COALESCE(summary, ''), batch_id
		FROM %s%s
		ORDER BY decision_date DESC, reference
		LIMIT ? OFFSET ?`, s.table(casesTable), clause))
	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return listing, fmt.Errorf("failed to query cases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c schema.CaseRecord
		var decided dbTime
		var outcome string
		if err := rows.Scan(&c.Reference, &c.FirmName, &c.Product, &decided, &outcome, &c.Summary, &c.BatchID); err != nil {
			return listing, fmt.Errorf("failed to scan case: %w", err)
		}
		c.DecisionDate = decided.Time
		c.Outcome = schema.Outcome(outcome)
		listing.Cases = append(listing.Cases, c)
	}
	if err := rows.Err(); err != nil {
		return listing, fmt.Errorf("error iterating cases: %w", err)
	}
	return listing, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
