// Package store persists complaint figures, ombudsman decisions and ingestion runs
// in a relational database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for complaint data.
const (
	complaintsTable    = "fos_complaints"
	casesTable         = "fos_cases"
	ingestionRunsTable = "fos_ingestion_runs"
	migrationsTable    = "schema_migrations"
)

// dataTables lists the tables owned by the store, in drop order.
var dataTables = []string{complaintsTable, casesTable, ingestionRunsTable, migrationsTable}

// SQLStore implements the Store interface over database/sql.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.Store = &SQLStore{} // Compile-time check

// NewStore opens the backend, applies pending migrations and returns a ready store.
// The none backend returns a store whose reads are empty and whose writes are dropped.
func NewStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	if backend == schema.NoneBackend {
		return &SQLStore{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is readable and its directory is writable."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if _, err := Migrate(backend, connStr, -1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s database: %w", backend, err)
	}

	return &SQLStore{db: db, backend: backend}, nil
}

// openDB opens a connection pool for the backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	driverName, dsn, err := driverAndDSN(backend, connStr)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// driverAndDSN resolves the database/sql driver name and data source for a backend.
func driverAndDSN(backend schema.DatabaseBackend, connStr string) (string, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDatabaseFilePath()
		}
		return "sqlite", dbPath, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return "", "", fmt.Errorf("invalid MySQL connection string: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		cfg.ParseTime = true
		return "mysql", cfg.FormatDSN(), nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		return "pgx", connStr, nil

	default:
		return "", "", fmt.Errorf("unsupported database backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// Backend returns the configured backend.
func (s *SQLStore) Backend() schema.DatabaseBackend {
	return s.backend
}

func (s *SQLStore) disabled() bool {
	return s.backend == schema.NoneBackend || s.db == nil
}

// rebind rewrites '?' placeholders into the backend's parameter syntax.
func (s *SQLStore) rebind(query string) string {
	return rebind(query, s.backend)
}

func rebind(query string, backend schema.DatabaseBackend) string {
	if backend != schema.PostgreSQLBackend {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// quoteTableName quotes a table name for the backend.
func quoteTableName(tableName string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "`" + tableName + "`"
	default: // SQLite and PostgreSQL
		return `"` + tableName + `"`
	}
}

// table returns the quoted table name for this store.
func (s *SQLStore) table(name string) string {
	return quoteTableName(name, s.backend)
}

// Ping verifies the underlying connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.disabled() {
		return nil
	}
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
