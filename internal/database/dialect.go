package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"

	"github.com/locvowork/employee_management_sample/ems/internal/repository/builder"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the DB_DRIVER values understood by Open.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Placeholder returns the builder format for the dialect.
func (d Dialect) Placeholder() builder.PlaceholderFormat {
	if d == SQLite {
		return builder.Question
	}
	return builder.Dollar
}

// unicodeLower is registered on every sqlite connection. SQLite's own
// LOWER only folds ASCII.
const unicodeLower = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Lower wraps expr in the dialect's lower-case function. Both dialects fold
// the same way strings.ToLower does.
func (d Dialect) Lower(expr string) string {
	if d == SQLite {
		return unicodeLower + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// Builder returns a new SQL builder using the dialect's placeholders.
func (d Dialect) Builder() *builder.SQLBuilder {
	return builder.NewSQLBuilder().WithFormat(d.Placeholder())
}

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SyncSequence moves a postgres serial sequence past the largest id in
// table, after rows were inserted with explicit ids. SQLite needs nothing.
// table and column are trusted identifiers.
func (d Dialect) SyncSequence(ctx context.Context, exec Execer, table, column string) error {
	if d != Postgres {
		return nil
	}
	query := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 1))",
		table, column, column, table,
	)
	_, err := exec.ExecContext(ctx, query)
	return err
}
