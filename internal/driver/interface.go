package driver

import (
	"context"
	"database/sql"

	"github.com/dbsweep/dbsweep/internal/database"
)

// Dialect captures the SQL differences the maintenance operations care about.
type Dialect interface {
	// Name returns the dialect name (e.g., "postgres", "sqlite")
	Name() string

	// Rebind rewrites '?' placeholders into the dialect's native form
	Rebind(query string) string

	// QualifiedTable returns a quoted, schema-qualified table reference
	QualifiedTable(schema, table string) string

	// ListTables returns the names of all base tables, sorted
	ListTables(ctx context.Context, q database.Queryer, schema string) ([]string, error)

	// AnalyzeTable returns the statement that refreshes planner statistics
	AnalyzeTable(schema, table string) string
}

// Driver opens connections and provides the dialect for them.
type Driver interface {
	Dialect

	// OpenConnection opens the database and pings it
	OpenConnection(ctx context.Context, cfg database.ConnectionConfig) (*sql.DB, error)
}
