package store

import (
	"fmt"
	"time"

	"github.com/huangsam/fosdash/schema"
)

// sqliteTimeLayout keeps a fixed fraction width so stored values sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts a time.Time to the appropriate format for the backend.
func (s *SQLStore) formatTime(t time.Time) any {
	return formatTime(t, s.backend)
}

func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t.UTC()
	}
}

// formatDate converts a calendar date to the appropriate format for the backend.
func (s *SQLStore) formatDate(t time.Time) any {
	switch s.backend {
	case schema.SQLiteBackend:
		return t.Format(decisionDateLayout)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// dbTime scans timestamps stored natively (MySQL, PostgreSQL) or as text (SQLite).
type dbTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (d *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time, d.Valid = time.Time{}, false
		return nil
	case time.Time:
		d.Time, d.Valid = v.UTC(), true
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
}

func (d *dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", decisionDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time, d.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("failed to parse time %q", s)
}
