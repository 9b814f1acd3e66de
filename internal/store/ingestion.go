package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/fosdash/schema"
)

// decisionDateLayout is the storage layout of decision dates on SQLite.
const decisionDateLayout = "2006-01-02"

// InsertComplaints stores complaint rows in a single transaction and returns how many were written.
func (s *SQLStore) InsertComplaints(ctx context.Context, records []schema.ComplaintRecord) (int, error) {
	if s.disabled() || len(records) == 0 {
		return 0, nil
	}

	query := s.rebind(fmt.Sprintf(`
		INSERT INTO %s (batch_id, year, period, firm_name, product, complaints, upheld,
		                uphold_rate, closure_3_days, closure_8_weeks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table(complaintsTable)))

	return s.insertAll(ctx, query, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx, r.BatchID, r.Year, r.Period, r.FirmName, r.Product,
			r.Complaints, r.Upheld, r.UpholdRate, r.Closure3Days, r.Closure8Weeks)
		return err
	})
}

// InsertCases stores decisions in a single transaction. A decision with a known
// reference replaces the stored one.
func (s *SQLStore) InsertCases(ctx context.Context, records []schema.CaseRecord) (int, error) {
	if s.disabled() || len(records) == 0 {
		return 0, nil
	}

	query := s.caseUpsertQuery()
	return s.insertAll(ctx, query, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx, r.Reference, r.FirmName, r.Product,
			s.formatDate(r.DecisionDate), string(r.Outcome), r.Summary, r.BatchID)
		return err
	})
}

// caseUpsertQuery returns the UPSERT query for decisions on this backend.
func (s *SQLStore) caseUpsertQuery() string {
	quoted := s.table(casesTable)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (reference, firm_name, product, decision_date, outcome, summary, batch_id)
			VALUES (?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE firm_name = new.firm_name, product = new.product, decision_date = new.decision_date,
			outcome = new.outcome, summary = new.summary, batch_id = new.batch_id`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (reference, firm_name, product, decision_date, outcome, summary, batch_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (reference) DO UPDATE SET firm_name = EXCLUDED.firm_name, product = EXCLUDED.product,
			decision_date = EXCLUDED.decision_date, outcome = EXCLUDED.outcome, summary = EXCLUDED.summary,
			batch_id = EXCLUDED.batch_id`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (reference, firm_name, product, decision_date, outcome, summary, batch_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`, quoted)
	}
}

// insertAll prepares query once and executes it n times inside a transaction.
func (s *SQLStore) insertAll(ctx context.Context, query string, n int, exec func(*sql.Stmt, int) error) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range n {
		if err := exec(stmt, i); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}
	return n, nil
}

// BeginIngestion records the start of an ingestion run.
func (s *SQLStore) BeginIngestion(ctx context.Context, run schema.IngestionRun) error {
	if s.disabled() {
		return nil
	}
	if run.BatchID == "" {
		return errors.New("ingestion run requires a batch id")
	}

	query := s.rebind(fmt.Sprintf(`INSERT INTO %s (batch_id, kind, source_file, start_time) VALUES (?, ?, ?, ?)`,
		s.table(ingestionRunsTable)))
	if _, err := s.db.ExecContext(ctx, query, run.BatchID, string(run.Kind), run.SourceFile, s.formatTime(run.StartTime)); err != nil {
		return fmt.Errorf("failed to insert ingestion run: %w", err)
	}
	return nil
}

// EndIngestion updates the ingestion run with completion data.
func (s *SQLStore) EndIngestion(ctx context.Context, batchID string, endTime time.Time, accepted, rejected int) error {
	if s.disabled() {
		return nil
	}

	quoted := s.table(ingestionRunsTable)

	var start dbTime
	selectQuery := s.rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE batch_id = ?`, quoted))
	if err := s.db.QueryRowContext(ctx, selectQuery, batchID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for ingestion %s: %w", batchID, err)
	}

	durationMs := endTime.Sub(start.Time).Milliseconds()

	updateQuery := s.rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, rows_accepted = ?, rows_rejected = ? WHERE batch_id = ?`, quoted))
	if _, err := s.db.ExecContext(ctx, updateQuery, s.formatTime(endTime), durationMs, accepted, rejected, batchID); err != nil {
		return fmt.Errorf("failed to update ingestion run: %w", err)
	}
	return nil
}

// IngestionStatus returns status information about the store and its ingestion history.
func (s *SQLStore) IngestionStatus(ctx context.Context) (schema.IngestionStatus, error) {
	status := schema.IngestionStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.disabled() {
		return status, nil
	}

	quoted := s.table(ingestionRunsTable)

	totalsQuery := fmt.Sprintf(`SELECT COUNT(*), COALESCE(SUM(rows_accepted), 0), COALESCE(SUM(rows_rejected), 0) FROM %s`, quoted)
	if err := s.db.QueryRowContext(ctx, totalsQuery).Scan(&status.TotalRuns, &status.TotalAccepted, &status.TotalRejected); err != nil {
		return status, fmt.Errorf("failed to get ingestion totals: %w", err)
	}

	if status.TotalRuns > 0 {
		runs, err := s.queryRuns(ctx, fmt.Sprintf(`%s ORDER BY start_time DESC LIMIT 1`, s.runsSelect()))
		if err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if len(runs) > 0 {
			status.LastRun = &runs[0]
		}

		var oldest dbTime
		oldestQuery := fmt.Sprintf(`SELECT MIN(start_time) FROM %s`, quoted)
		if err := s.db.QueryRowContext(ctx, oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time
	}

	for _, table := range []string{complaintsTable, casesTable, ingestionRunsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table(table))
		if err := s.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	// The version table is owned by the migrator; a missing row leaves version 0.
	versionQuery := fmt.Sprintf("SELECT version FROM %s LIMIT 1", s.table(migrationsTable))
	var version int64
	if err := s.db.QueryRowContext(ctx, versionQuery).Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}

	return status, nil
}

// ListIngestionRuns returns every ingestion run, oldest first.
func (s *SQLStore) ListIngestionRuns(ctx context.Context) ([]schema.IngestionRun, error) {
	if s.disabled() {
		return nil, nil
	}
	return s.queryRuns(ctx, fmt.Sprintf(`%s ORDER BY start_time, batch_id`, s.runsSelect()))
}

func (s *SQLStore) runsSelect() string {
	return fmt.Sprintf(`SELECT batch_id, kind, source_file, start_time, end_time, run_duration_ms, rows_accepted, rows_rejected FROM %s`,
		s.table(ingestionRunsTable))
}

func (s *SQLStore) queryRuns(ctx context.Context, query string) ([]schema.IngestionRun, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingestion runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.IngestionRun
	for rows.Next() {
		var run schema.IngestionRun
		var kind string
		var start, end dbTime
		var duration sql.NullInt64
		if err := rows.Scan(&run.BatchID, &kind, &run.SourceFile, &start, &end, &duration, &run.RowsAccepted, &run.RowsRejected); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion run: %w", err)
		}
		run.Kind = schema.IngestionKind(kind)
		run.StartTime = start.Time
		if end.Valid {
			t := end.Time
			run.EndTime = &t
		}
		if duration.Valid {
			d := duration.Int64
			run.RunDurationMs = &d
		}
		results = append(results, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingestion runs: %w", err)
	}
	return results, nil
}
