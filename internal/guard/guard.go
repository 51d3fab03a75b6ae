// Package guard classifies SQL statements as read-only or mutating by
// parsing them with the Postgres parser. Dry-run sessions use it to refuse
// anything other than plain SELECTs, including SELECTs that call functions
// with side effects such as setval or pg_terminate_backend.
package guard

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/dbsweep/dbsweep/internal/database"
)

// ErrNotReadOnly is returned for statements that could change data or schema.
var ErrNotReadOnly = errors.New("statement is not read-only")

// Kind is the coarse classification of a statement.
type Kind string

const (
	KindSelect   Kind = "select"
	KindDelete   Kind = "delete"
	KindUpdate   Kind = "update"
	KindInsert   Kind = "insert"
	KindDDL      Kind = "ddl"
	KindAnalyze  Kind = "analyze"
	KindTruncate Kind = "truncate"
	KindCall     Kind = "call"
	KindOther    Kind = "other"
)

// Mutating reports whether statements of this kind change data, schema or
// planner statistics.
func (k Kind) Mutating() bool {
	return k != KindSelect
}

// Classify parses query and returns the kind of every statement in it.
// '?' placeholders are accepted and rewritten before parsing.
func Classify(query string) ([]Kind, error) {
	tree, err := pg_query.Parse(database.RebindDollar(query))
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	kinds := make([]Kind, 0, len(tree.Stmts))
	for _, stmt := range tree.Stmts {
		if stmt.Stmt == nil {
			continue
		}
		kinds = append(kinds, classifyNode(stmt.Stmt))
	}
	return kinds, nil
}

// RequireReadOnly returns an error wrapping ErrNotReadOnly unless every
// statement in query is a SELECT without locking clauses or calls to
// side-effecting functions.
func RequireReadOnly(query string) error {
	kinds, err := Classify(query)
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		return fmt.Errorf("%w: empty statement", ErrNotReadOnly)
	}
	for _, k := range kinds {
		if k.Mutating() {
			return fmt.Errorf("%w: found %s", ErrNotReadOnly, k)
		}
	}
	return nil
}

func classifyNode(node *pg_query.Node) Kind {
	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		if n.SelectStmt.IntoClause != nil || len(n.SelectStmt.LockingClause) > 0 {
			return KindOther
		}
		if n.SelectStmt.WithClause != nil && withIsMutating(n.SelectStmt.WithClause) {
			return KindOther
		}
		if sideEffectCall(n.SelectStmt.ProtoReflect()) != "" {
			return KindCall
		}
		return KindSelect
	case *pg_query.Node_DeleteStmt:
		return KindDelete
	case *pg_query.Node_UpdateStmt:
		return KindUpdate
	case *pg_query.Node_InsertStmt:
		return KindInsert
	case *pg_query.Node_TruncateStmt:
		return KindTruncate
	case *pg_query.Node_VacuumStmt:
		if n.VacuumStmt.IsVacuumcmd {
			return KindDDL
		}
		return KindAnalyze
	case *pg_query.Node_DropStmt,
		*pg_query.Node_CreateStmt,
		*pg_query.Node_AlterTableStmt,
		*pg_query.Node_IndexStmt,
		*pg_query.Node_RenameStmt:
		return KindDDL
	default:
		return KindOther
	}
}

// withIsMutating catches data-modifying CTEs such as
// WITH d AS (DELETE ... RETURNING *) SELECT ...
func withIsMutating(with *pg_query.WithClause) bool {
	for _, cte := range with.Ctes {
		c, ok := cte.Node.(*pg_query.Node_CommonTableExpr)
		if !ok || c.CommonTableExpr.Ctequery == nil {
			continue
		}
		if classifyNode(c.CommonTableExpr.Ctequery) != KindSelect {
			return true
		}
	}
	return false
}

// sideEffectFuncs are functions that change sequences, locks, sessions or
// server state even when called from a SELECT.
var sideEffectFuncs = map[string]bool{
	"nextval":                   true,
	"setval":                    true,
	"pg_advisory_lock":          true,
	"pg_advisory_lock_shared":   true,
	"pg_advisory_xact_lock":     true,
	"pg_try_advisory_lock":      true,
	"pg_try_advisory_xact_lock": true,
	"pg_terminate_backend":      true,
	"pg_cancel_backend":         true,
	"pg_reload_conf":            true,
	"pg_rotate_logfile":         true,
	"pg_switch_wal":             true,
	"pg_stat_reset":             true,
	"set_config":                true,
	"lo_import":                 true,
	"lo_export":                 true,
	"lo_unlink":                 true,
	"dblink_exec":               true,
}

// sideEffectCall walks every message reachable from m and returns the name
// of the first denied function call, or "" if there is none.
func sideEffectCall(m protoreflect.Message) string {
	if fc, ok := m.Interface().(*pg_query.FuncCall); ok {
		if name := funcName(fc); sideEffectFuncs[name] {
			return name
		}
	}

	var found string
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if fd.Message() == nil || fd.IsMap() {
			return true
		}
		if fd.IsList() {
			list := v.List()
			for i := 0; i < list.Len() && found == ""; i++ {
				found = sideEffectCall(list.Get(i).Message())
			}
		} else {
			found = sideEffectCall(v.Message())
		}
		return found == ""
	})
	return found
}

// funcName returns the unqualified, lowercased function name, so
// pg_catalog.setval and SETVAL both match setval.
func funcName(fc *pg_query.FuncCall) string {
	if len(fc.Funcname) == 0 {
		return ""
	}
	last := fc.Funcname[len(fc.Funcname)-1]
	return strings.ToLower(last.GetString_().GetSval())
}
