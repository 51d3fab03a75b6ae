// Package store gives maintenance operations access to the content store:
// prefixed table naming, dialect-aware statements and sessions that enforce
// dry-run mode.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dbsweep/dbsweep/internal/database"
	"github.com/dbsweep/dbsweep/internal/driver"
	"github.com/dbsweep/dbsweep/internal/guard"
)

// ErrDryRunWrite is returned when a dry-run session is asked to write.
var ErrDryRunWrite = errors.New("refusing to execute a write in dry-run mode")

// Content store tables, without prefix.
const (
	TableOptions     = "options"
	TablePosts       = "posts"
	TablePostmeta    = "postmeta"
	TableComments    = "comments"
	TableCommentmeta = "commentmeta"
)

// Store wraps an open database handle for a content store.
type Store struct {
	db      *sql.DB
	dialect driver.Dialect
	schema  string
	prefix  string
	logger  zerolog.Logger
}

// New creates a Store. The prefix is prepended to every table name.
func New(db *sql.DB, dialect driver.Dialect, schema, prefix string) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		schema:  schema,
		prefix:  prefix,
		logger:  zerolog.Nop(),
	}
}

// WithLogger returns a copy of the store that logs statements at trace level.
func (s *Store) WithLogger(logger zerolog.Logger) *Store {
	c := *s
	c.logger = logger.With().Str("component", "store").Logger()
	return &c
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() driver.Dialect {
	return s.dialect
}

// Prefix returns the table name prefix.
func (s *Store) Prefix() string {
	return s.prefix
}

// Session opens a logical session. Dry-run sessions refuse every write and
// only run queries the guard classifies as SELECT.
func (s *Store) Session(dryRun bool) *Session {
	return &Session{store: s, dryRun: dryRun}
}

// Session is handed to one operation for the duration of one run.
type Session struct {
	store  *Store
	dryRun bool
}

// DryRun reports whether the session refuses writes.
func (s *Session) DryRun() bool {
	return s.dryRun
}

// TableName returns the prefixed, unquoted name of a content store table.
func (s *Session) TableName(base string) string {
	return s.store.prefix + base
}

// Table returns the prefixed table reference, quoted and schema-qualified.
func (s *Session) Table(base string) string {
	return s.store.dialect.QualifiedTable(s.store.schema, s.TableName(base))
}

// Prefix returns the table name prefix.
func (s *Session) Prefix() string {
	return s.store.prefix
}

// Tables lists every table that carries the store prefix.
func (s *Session) Tables(ctx context.Context) ([]string, error) {
	all, err := s.store.dialect.ListTables(ctx, readOnly{s}, s.store.schema)
	if err != nil {
		return nil, err
	}

	var tables []string
	for _, name := range all {
		if strings.HasPrefix(name, s.store.prefix) {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// MissingTables returns the prefixed names of the given tables that do not
// exist, in argument order.
func (s *Session) MissingTables(ctx context.Context, bases ...string) ([]string, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}

	var missing []string
	for _, base := range bases {
		if name := s.TableName(base); !present[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// Count runs a single-value integer query.
func (s *Session) Count(ctx context.Context, query string, args ...any) (int64, error) {
	return count(ctx, s.store, s.db(), s.dryRun, query, args...)
}

// Strings runs a single-column query and collects the values.
func (s *Session) Strings(ctx context.Context, query string, args ...any) ([]string, error) {
	return strs(ctx, s.store, s.db(), s.dryRun, query, args...)
}

// KeyValue is one row of a two-column text query. NULL values read as "".
type KeyValue struct {
	Key   string
	Value string
}

// KeyValues runs a two-column query and collects the rows.
func (s *Session) KeyValues(ctx context.Context, query string, args ...any) ([]KeyValue, error) {
	if s.dryRun {
		if err := guard.RequireReadOnly(query); err != nil {
			return nil, err
		}
	}
	s.store.logger.Trace().Str("sql", query).Interface("args", args).Msg("query")

	rows, err := s.db().QueryContext(ctx, s.store.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KeyValue
	for rows.Next() {
		var k, v sql.NullString
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, KeyValue{Key: k.String, Value: v.String})
	}
	return out, rows.Err()
}

// Exec executes a write and returns the number of affected rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s.dryRun {
		return 0, ErrDryRunWrite
	}
	return exec(ctx, s.store, s.db(), query, args...)
}

// Analyze refreshes planner statistics for one prefixed table.
func (s *Session) Analyze(ctx context.Context, table string) error {
	if s.dryRun {
		return ErrDryRunWrite
	}
	_, err := s.db().ExecContext(ctx, s.store.dialect.AnalyzeTable(s.store.schema, table))
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", table, err)
	}
	return nil
}

// InTx runs fn inside a transaction, committing if fn returns nil.
func (s *Session) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	if s.dryRun {
		return ErrDryRunWrite
	}

	sqlTx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{store: s.store, tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Session) db() database.Queryer {
	return s.store.db
}

// Tx is a write transaction opened by Session.InTx.
type Tx struct {
	store *Store
	tx    *sql.Tx
}

// Exec executes a write within the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return exec(ctx, t.store, t.tx, query, args...)
}

// Count runs a single-value integer query within the transaction.
func (t *Tx) Count(ctx context.Context, query string, args ...any) (int64, error) {
	return count(ctx, t.store, t.tx, false, query, args...)
}

// Strings runs a single-column query within the transaction.
func (t *Tx) Strings(ctx context.Context, query string, args ...any) ([]string, error) {
	return strs(ctx, t.store, t.tx, false, query, args...)
}

// Placeholders returns n comma-separated '?' placeholders.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func count(ctx context.Context, s *Store, q database.Queryer, dryRun bool, query string, args ...any) (int64, error) {
	if dryRun {
		if err := guard.RequireReadOnly(query); err != nil {
			return 0, err
		}
	}
	s.logger.Trace().Str("sql", query).Interface("args", args).Msg("query")

	var n sql.NullInt64
	if err := q.QueryRowContext(ctx, s.dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	return n.Int64, nil
}

func strs(ctx context.Context, s *Store, q database.Queryer, dryRun bool, query string, args ...any) ([]string, error) {
	if dryRun {
		if err := guard.RequireReadOnly(query); err != nil {
			return nil, err
		}
	}
	s.logger.Trace().Str("sql", query).Interface("args", args).Msg("query")

	rows, err := q.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func exec(ctx context.Context, s *Store, q database.Queryer, query string, args ...any) (int64, error) {
	s.logger.Trace().Str("sql", query).Interface("args", args).Msg("exec")

	res, err := q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("statement failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

// readOnly adapts a session to database.Queryer for dialect catalog queries,
// applying the same dry-run checks as Session.Strings.
type readOnly struct {
	s *Session
}

func (r readOnly) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if r.s.dryRun {
		if err := guard.RequireReadOnly(query); err != nil {
			return nil, err
		}
	}
	return r.s.store.db.QueryContext(ctx, query, args...)
}

// QueryRowContext cannot report a guard error; dialects list tables with
// QueryContext only.
func (r readOnly) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.s.store.db.QueryRowContext(ctx, query, args...)
}

func (r readOnly) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if r.s.dryRun {
		return nil, ErrDryRunWrite
	}
	return r.s.store.db.ExecContext(ctx, query, args...)
}
