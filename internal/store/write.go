package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/undefinedsco/quintstore/internal/codec"
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/sqlgen"
)

// Put upserts one quint by its identity tuple. On conflict only the
// vector changes; a second Put of the same tuple never duplicates the
// row.
func (s *Store) Put(ctx context.Context, q quint.Quint) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	params, err := s.upsertParams(q)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, s.dialect.Rebind(s.dialect.UpsertSQL()), params...); err != nil {
		return fmt.Errorf("put quint: %w", err)
	}
	return nil
}

// MultiPut upserts quints in a single transaction. All-or-nothing: any
// statement failure rolls back the whole batch. Empty input is a
// no-op.
func (s *Store) MultiPut(ctx context.Context, quints []quint.Quint) error {
	if len(quints) == 0 {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("multi put: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(s.dialect.UpsertSQL()))
	if err != nil {
		return fmt.Errorf("multi put: prepare: %w", err)
	}
	defer stmt.Close()

	for i, q := range quints {
		params, err := s.upsertParams(q)
		if err != nil {
			return fmt.Errorf("multi put: quint %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, params...); err != nil {
			return fmt.Errorf("multi put: quint %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("multi put: commit: %w", err)
	}
	s.logger.Debug("multi put committed", "count", len(quints))
	return nil
}

// UpdateEmbedding sets the vector on every row matching pattern. A nil
// vector clears the column. Returns the affected row count.
func (s *Store) UpdateEmbedding(ctx context.Context, pattern quint.Pattern, vector []float64) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	clause, params, posts, err := sqlgen.Where(pattern, "")
	if err != nil {
		return 0, err
	}
	if len(posts) > 0 {
		return 0, fmt.Errorf("update embedding: $regex is not supported in write patterns")
	}

	vectorJSON, err := encodeVector(vector)
	if err != nil {
		return 0, err
	}

	query := "UPDATE " + sqlgen.Table + " SET vector = ?"
	if clause != "" {
		query += " WHERE " + clause
	}
	allParams := append([]any{vectorJSON}, s.encodeParams(params)...)

	res, err := db.ExecContext(ctx, s.dialect.Rebind(query), allParams...)
	if err != nil {
		return 0, fmt.Errorf("update embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update embedding: rows affected: %w", err)
	}
	return n, nil
}

// Del deletes every row matching pattern and returns the affected row
// count. An empty pattern deletes everything; that is the caller's
// responsibility, not guarded here.
func (s *Store) Del(ctx context.Context, pattern quint.Pattern) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	clause, params, posts, err := sqlgen.Where(pattern, "")
	if err != nil {
		return 0, err
	}
	if len(posts) > 0 {
		return 0, fmt.Errorf("del: $regex is not supported in write patterns")
	}

	query := "DELETE FROM " + sqlgen.Table
	if clause != "" {
		query += " WHERE " + clause
	}

	res, err := db.ExecContext(ctx, s.dialect.Rebind(query), s.encodeParams(params)...)
	if err != nil {
		return 0, fmt.Errorf("del quints: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("del quints: rows affected: %w", err)
	}
	return n, nil
}

// MultiDel deletes the exact identity tuples of the given quints in one
// transaction. Tuples that do not exist are skipped; the present ones
// are deleted atomically as a batch. Callers needing delete-exactly-N
// semantics must verify existence themselves.
func (s *Store) MultiDel(ctx context.Context, quints []quint.Quint) error {
	if len(quints) == 0 {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("multi del: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.dialect.Rebind(
		"DELETE FROM "+sqlgen.Table+" WHERE graph = ? AND subject = ? AND predicate = ? AND object = ?"))
	if err != nil {
		return fmt.Errorf("multi del: prepare: %w", err)
	}
	defer stmt.Close()

	for i, q := range quints {
		_, err := stmt.ExecContext(ctx,
			s.dialect.EncodeValue(codec.EncodeTerm(q.Graph)),
			s.dialect.EncodeValue(codec.EncodeTerm(q.Subject)),
			s.dialect.EncodeValue(codec.EncodeTerm(q.Predicate)),
			s.dialect.EncodeValue(codec.EncodeObject(q.Object)),
		)
		if err != nil {
			return fmt.Errorf("multi del: quint %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("multi del: commit: %w", err)
	}
	s.logger.Debug("multi del committed", "count", len(quints))
	return nil
}

// Clear wipes the table unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM "+sqlgen.Table); err != nil {
		return fmt.Errorf("clear quints: %w", err)
	}
	return nil
}

// upsertParams encodes a quint for the five-column upsert.
func (s *Store) upsertParams(q quint.Quint) ([]any, error) {
	if q.Graph == nil || q.Subject == nil || q.Predicate == nil || q.Object == nil {
		return nil, fmt.Errorf("quint is missing an identity term")
	}
	vectorJSON, err := encodeVector(q.Vector)
	if err != nil {
		return nil, err
	}
	return []any{
		s.dialect.EncodeValue(codec.EncodeTerm(q.Graph)),
		s.dialect.EncodeValue(codec.EncodeTerm(q.Subject)),
		s.dialect.EncodeValue(codec.EncodeTerm(q.Predicate)),
		s.dialect.EncodeValue(codec.EncodeObject(q.Object)),
		vectorJSON,
	}, nil
}

// encodeVector renders the vector column: a JSON float array or NULL,
// never partially populated.
func encodeVector(vector []float64) (any, error) {
	if vector == nil {
		return nil, nil
	}
	data, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("encode vector: %w", err)
	}
	return string(data), nil
}
