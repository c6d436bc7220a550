package store

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// postgresDialect runs the store on a pgx connection pool.
type postgresDialect struct {
	dsn string
}

func (d *postgresDialect) Name() string       { return "postgres" }
func (d *postgresDialect) DriverName() string { return "pgx" }
func (d *postgresDialect) DSN() string        { return d.dsn }
func (d *postgresDialect) Pooled() bool       { return true }

func (d *postgresDialect) Configure(db *sql.DB) error {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

// Rebind rewrites ? placeholders to $1..$n. Generated SQL never
// contains a literal '?' outside a placeholder position (values are
// always bound), so a plain scan suffices.
func (d *postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d *postgresDialect) UpsertSQL() string {
	return `INSERT INTO quints (graph, subject, predicate, object, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (graph, subject, predicate, object) DO UPDATE SET vector = EXCLUDED.vector`
}

func (d *postgresDialect) LimitOffset(limit, offset int) (string, []any) {
	switch {
	case limit > 0 && offset > 0:
		return " LIMIT ? OFFSET ?", []any{limit, offset}
	case limit > 0:
		return " LIMIT ?", []any{limit}
	case offset > 0:
		return " OFFSET ?", []any{offset}
	default:
		return "", nil
	}
}

// Postgres TEXT rejects NUL bytes, so the codec separator is swapped
// for \x01 on the way in and back on the way out. \x01 never occurs in
// legal terms (same contract as the separator itself), so the
// substitution is reversible and order-preserving.
const pgSeparator = "\x01"

func (d *postgresDialect) EncodeValue(s string) string {
	return strings.ReplaceAll(s, "\x00", pgSeparator)
}

func (d *postgresDialect) DecodeValue(s string) string {
	return strings.ReplaceAll(s, pgSeparator, "\x00")
}
