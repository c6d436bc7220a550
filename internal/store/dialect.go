package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// Dialect confines every backend difference to one interface, injected
// into the shared Store.
type Dialect interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// DSN is the driver-level connection string.
	DSN() string

	// Configure tunes the freshly opened handle (pragmas, pool size).
	Configure(db *sql.DB) error

	// Rebind rewrites ? placeholders to the backend's syntax.
	Rebind(query string) string

	// UpsertSQL is the five-column insert that replaces only the
	// vector on identity conflict. Written with ? placeholders.
	UpsertSQL() string

	// LimitOffset renders the paging clause. SQLite cannot express
	// OFFSET without LIMIT, Postgres can; both accept bound values.
	LimitOffset(limit, offset int) (string, []any)

	// EncodeValue and DecodeValue shim stored strings through any
	// byte substitution the backend's TEXT type requires. They must
	// be exact inverses and order-preserving.
	EncodeValue(s string) string
	DecodeValue(s string) string

	// Pooled reports whether distinct calls may execute concurrently
	// on separate connections.
	Pooled() bool
}

// Endpoint schemes recognized by ParseEndpoint.
const (
	schemeSQLite     = "sqlite:"
	schemePostgres   = "postgres://"
	schemePostgresQL = "postgresql://"
)

// ParseEndpoint selects a dialect from a connection endpoint string.
//
//	sqlite:/var/data/pod.db    SQLite at a path
//	sqlite::memory:            ephemeral in-memory SQLite
//	/var/data/pod.db           bare path (legacy), SQLite
//	postgres://...             Postgres
//	postgresql://...           Postgres
func ParseEndpoint(endpoint string) (Dialect, error) {
	switch {
	case endpoint == "":
		return nil, fmt.Errorf("empty store endpoint")
	case strings.HasPrefix(endpoint, schemePostgres), strings.HasPrefix(endpoint, schemePostgresQL):
		return &postgresDialect{dsn: endpoint}, nil
	case strings.HasPrefix(endpoint, schemeSQLite):
		return &sqliteDialect{path: endpoint[len(schemeSQLite):]}, nil
	default:
		// Legacy form: a bare filesystem path.
		return &sqliteDialect{path: endpoint}, nil
	}
}
