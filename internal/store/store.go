package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/sqlgen"
)

// ErrNotOpen is returned by every operation issued before Open.
var ErrNotOpen = errors.New("store is not open: call Open first")

// Store is the shared SQL-backed quint store. The zero value is not
// usable; construct with New.
type Store struct {
	dialect Dialect
	logger  *slog.Logger

	mu sync.Mutex
	db *sql.DB
}

var _ quint.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger injects a structured logger. Nil restores the default
// discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		s.logger = l
	}
}

// New creates a store for the given connection endpoint. The endpoint
// selects the backend (see ParseEndpoint); no connection is made until
// Open.
func New(endpoint string, opts ...Option) (*Store, error) {
	dialect, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	s := &Store{
		dialect: dialect,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open establishes the connection (or pool) and ensures the schema
// exists. Idempotent and safe under concurrent invocation: late
// callers observe the ready state, schema creation uses IF NOT EXISTS
// throughout.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open(s.dialect.DriverName(), s.dialect.DSN())
	if err != nil {
		return fmt.Errorf("open %s store: %w", s.dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect %s store: %w", s.dialect.Name(), err)
	}
	if err := s.dialect.Configure(db); err != nil {
		db.Close()
		return fmt.Errorf("configure %s store: %w", s.dialect.Name(), err)
	}
	if err := s.ensureSchema(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}

	s.db = db
	s.logger.Info("store opened", "backend", s.dialect.Name())
	return nil
}

// Close releases the connection. Idempotent; a closed store can be
// reopened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("close %s store: %w", s.dialect.Name(), err)
	}
	s.logger.Info("store closed", "backend", s.dialect.Name())
	return nil
}

// conn returns the live handle or ErrNotOpen.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrNotOpen
	}
	return s.db, nil
}

// ensureSchema creates the table and the six covering indexes.
// Everything is IF NOT EXISTS, so re-running is a no-op.
func (s *Store) ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqlgen.TableDDL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	for _, ddl := range sqlgen.IndexDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// encodeParams shims every string parameter through the dialect's byte
// substitution. Non-string parameters (limits, offsets) pass through.
func (s *Store) encodeParams(params []any) []any {
	out := make([]any, len(params))
	for i, p := range params {
		if str, ok := p.(string); ok {
			out[i] = s.dialect.EncodeValue(str)
			continue
		}
		out[i] = p
	}
	return out
}
