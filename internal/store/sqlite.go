package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDialect runs the store on a single SQLite connection.
type sqliteDialect struct {
	path string
}

func (d *sqliteDialect) Name() string       { return "sqlite" }
func (d *sqliteDialect) DriverName() string { return "sqlite3" }
func (d *sqliteDialect) DSN() string        { return d.path }
func (d *sqliteDialect) Pooled() bool       { return false }

// Configure applies the pragmas and pins the pool to one connection.
// SQLite supports one writer at a time; a single shared handle avoids
// SQLITE_BUSY churn and keeps :memory: databases on one connection.
func (d *sqliteDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Rebind is the identity; SQLite takes ? placeholders natively.
func (d *sqliteDialect) Rebind(query string) string { return query }

// UpsertSQL replaces the whole row on identity conflict. The four key
// columns are by definition unchanged, so the observable effect is a
// vector-only update.
func (d *sqliteDialect) UpsertSQL() string {
	return `INSERT OR REPLACE INTO quints (graph, subject, predicate, object, vector)
		VALUES (?, ?, ?, ?, ?)`
}

// LimitOffset renders paging. SQLite requires LIMIT before OFFSET;
// LIMIT -1 means unbounded.
func (d *sqliteDialect) LimitOffset(limit, offset int) (string, []any) {
	switch {
	case limit > 0 && offset > 0:
		return " LIMIT ? OFFSET ?", []any{limit, offset}
	case limit > 0:
		return " LIMIT ?", []any{limit}
	case offset > 0:
		return " LIMIT -1 OFFSET ?", []any{offset}
	default:
		return "", nil
	}
}

// EncodeValue is the identity: SQLite TEXT stores NUL bytes as-is
// through the Go driver's string binding.
func (d *sqliteDialect) EncodeValue(s string) string { return s }
func (d *sqliteDialect) DecodeValue(s string) string { return s }
