package database

import (
	"fmt"
	"strings"

	"github.com/dbsweep/dbsweep/internal/sqliteutil"
)

// DatabaseType identifies the database engine behind a connection string.
type DatabaseType string

const (
	DatabaseTypePostgres DatabaseType = "postgres"
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypeLibSQL   DatabaseType = "libsql"
)

// DefaultTablePrefix is the table name prefix of a stock content store.
const DefaultTablePrefix = "wp_"

// DefaultSchema is the Postgres schema searched for tables.
const DefaultSchema = "public"

// ConnectionConfig holds everything a driver needs to open the content store.
type ConnectionConfig struct {
	DatabaseType DatabaseType
	URL          string
	// Schema only applies to Postgres.
	Schema      string
	TablePrefix string
}

// DetectDatabaseType infers the database type from a connection string.
func DetectDatabaseType(connStr string) (DatabaseType, error) {
	lower := strings.ToLower(strings.TrimSpace(connStr))

	switch {
	case lower == "":
		return "", fmt.Errorf("empty connection string")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DatabaseTypePostgres, nil
	case strings.HasPrefix(lower, "libsql://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "ws://"),
		strings.HasPrefix(lower, "wss://"):
		return DatabaseTypeLibSQL, nil
	case lower == ":memory:", sqliteutil.IsSQLiteFilePath(lower):
		return DatabaseTypeSQLite, nil
	default:
		return "", fmt.Errorf("cannot detect database type from connection string %q", redact(connStr))
	}
}

// NewConnectionConfig builds a connection config for url, detecting its type.
func NewConnectionConfig(url, schema, tablePrefix string) (ConnectionConfig, error) {
	dbType, err := DetectDatabaseType(url)
	if err != nil {
		return ConnectionConfig{}, err
	}
	if schema == "" {
		schema = DefaultSchema
	}
	return ConnectionConfig{
		DatabaseType: dbType,
		URL:          url,
		Schema:       schema,
		TablePrefix:  tablePrefix,
	}, nil
}

// Redacted returns the URL with credentials and auth tokens masked, for logs.
func (c ConnectionConfig) Redacted() string {
	return redact(c.URL)
}

func redact(connStr string) string {
	out := connStr
	if at := strings.Index(out, "@"); at >= 0 {
		if scheme := strings.Index(out, "://"); scheme >= 0 && scheme < at {
			out = out[:scheme+3] + "***" + out[at:]
		}
	}
	if idx := strings.Index(strings.ToLower(out), "authtoken="); idx >= 0 {
		end := strings.IndexAny(out[idx:], "&")
		if end < 0 {
			out = out[:idx] + "authToken=***"
		} else {
			out = out[:idx] + "authToken=***" + out[idx+end:]
		}
	}
	return out
}
