package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/dbsweep/dbsweep/internal/database"
	"github.com/dbsweep/dbsweep/internal/sqliteutil"
)

// Driver implements driver.Driver for SQLite and for libSQL, which speaks
// the same dialect over the network.
type Driver struct {
	libsql bool
}

// NewDriver creates a new SQLite driver
func NewDriver() *Driver {
	return &Driver{}
}

// NewLibSQLDriver creates a driver for libSQL/Turso databases
func NewLibSQLDriver() *Driver {
	return &Driver{libsql: true}
}

// Name returns the database driver name
func (d *Driver) Name() string {
	if d.libsql {
		return "libsql"
	}
	return "sqlite"
}

// OpenConnection opens the database and pings it. Local SQLite files must
// already exist: maintaining a database that was never created is a mistake.
func (d *Driver) OpenConnection(ctx context.Context, cfg database.ConnectionConfig) (*sql.DB, error) {
	if d.libsql {
		return database.Open(ctx, "libsql", cfg.URL)
	}

	if cfg.URL == ":memory:" {
		return database.Open(ctx, "sqlite", cfg.URL)
	}

	exists, isEmpty, err := sqliteutil.CheckSQLiteDatabase(cfg.URL)
	if err != nil {
		return nil, err
	}
	path := sqliteutil.ExtractSQLiteFilePath(cfg.URL)
	if !exists {
		return nil, fmt.Errorf("database file does not exist: %s", path)
	}
	if isEmpty {
		return nil, fmt.Errorf("database file is empty: %s", path)
	}

	return database.Open(ctx, "sqlite", path+"?_pragma=busy_timeout(5000)")
}

// Rebind is the identity: SQLite understands '?' natively.
func (d *Driver) Rebind(query string) string {
	return query
}

// QualifiedTable ignores the schema; SQLite has a single main schema.
func (d *Driver) QualifiedTable(_, table string) string {
	return database.QuoteIdent(table)
}

func (d *Driver) AnalyzeTable(schema, table string) string {
	return "ANALYZE " + d.QualifiedTable(schema, table)
}

// ListTables returns all user table names in the SQLite database
func (d *Driver) ListTables(ctx context.Context, q database.Queryer, _ string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tableNames = append(tableNames, tableName)
	}

	return tableNames, rows.Err()
}
