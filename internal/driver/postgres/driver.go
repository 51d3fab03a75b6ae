package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/dbsweep/dbsweep/internal/database"
)

// Driver implements driver.Driver for PostgreSQL
type Driver struct {
}

// NewDriver creates a new PostgreSQL driver
func NewDriver() *Driver {
	return &Driver{}
}

// Name returns the database driver name
func (d *Driver) Name() string {
	return "postgres"
}

// OpenConnection opens a connection to the database and pings it.
func (d *Driver) OpenConnection(ctx context.Context, cfg database.ConnectionConfig) (*sql.DB, error) {
	return database.Open(ctx, "postgres", withSSLMode(cfg.URL))
}

// withSSLMode disables TLS unless the URL already chooses a mode.
func withSSLMode(url string) string {
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return url + "&sslmode=disable"
	}
	return url + "?sslmode=disable"
}

func (d *Driver) Rebind(query string) string {
	return database.RebindDollar(query)
}

func (d *Driver) QualifiedTable(schema, table string) string {
	if schema == "" {
		return database.QuoteIdent(table)
	}
	return database.QuoteIdent(schema) + "." + database.QuoteIdent(table)
}

func (d *Driver) AnalyzeTable(schema, table string) string {
	return "ANALYZE " + d.QualifiedTable(schema, table)
}

// ListTables returns all base table names in a specific PostgreSQL schema
func (d *Driver) ListTables(ctx context.Context, q database.Queryer, schema string) ([]string, error) {
	if schema == "" {
		schema = database.DefaultSchema
	}

	rows, err := q.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables in schema %s: %w", schema, err)
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
