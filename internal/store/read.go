package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"iter"
	"strings"

	"github.com/undefinedsco/quintstore/internal/codec"
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
	"github.com/undefinedsco/quintstore/internal/sqlgen"
)

const quintColumns = "graph, subject, predicate, object, vector"

// Get returns the quints matching pattern, decoded. Post-filter
// constraints ($regex) run in-process against the raw column strings
// before decoding; everything else is index-served SQL.
func (s *Store) Get(ctx context.Context, pattern quint.Pattern, opts *quint.QueryOptions) ([]quint.Quint, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query, params, posts, err := s.selectSQL(pattern, opts)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, s.encodeParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("query quints: %w", err)
	}
	defer rows.Close()

	quints := []quint.Quint{}
	for rows.Next() {
		q, keep, err := s.scanQuint(rows, posts)
		if err != nil {
			return nil, err
		}
		if keep {
			quints = append(quints, q)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quints: %w", err)
	}
	if len(posts) > 0 && opts != nil {
		quints = pageQuints(quints, opts.Limit, opts.Offset)
	}
	return quints, nil
}

// pageQuints applies limit and offset to rows already filtered
// in-process, matching the SQL paging semantics (limit 0 = unbounded).
func pageQuints(quints []quint.Quint, limit, offset int) []quint.Quint {
	if offset > 0 {
		if offset >= len(quints) {
			return []quint.Quint{}
		}
		quints = quints[offset:]
	}
	if limit > 0 && limit < len(quints) {
		quints = quints[:limit]
	}
	return quints
}

// Match is the pull-based wildcard iterator. The sequence is
// single-use; each call issues a fresh query, and the consumer may
// stop early without draining it.
func (s *Store) Match(ctx context.Context, sub, pred, obj, graph rdf.Term) iter.Seq2[quint.Quint, error] {
	pattern := quint.MatchPattern(sub, pred, obj, graph)

	return func(yield func(quint.Quint, error) bool) {
		db, err := s.conn()
		if err != nil {
			yield(quint.Quint{}, err)
			return
		}

		query, params, _, err := s.selectSQL(pattern, nil)
		if err != nil {
			yield(quint.Quint{}, err)
			return
		}

		rows, err := db.QueryContext(ctx, query, s.encodeParams(params)...)
		if err != nil {
			yield(quint.Quint{}, fmt.Errorf("query quints: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			q, _, err := s.scanQuint(rows, nil)
			if err != nil {
				yield(quint.Quint{}, err)
				return
			}
			if !yield(q, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(quint.Quint{}, fmt.Errorf("iterate quints: %w", err))
		}
	}
}

// GetByGraphPrefix returns the rows whose graph starts with prefix.
// Sugar over a $startsWith pattern; the half-open upper bound keeps
// "ns:a/" from also matching "ns:ab/".
func (s *Store) GetByGraphPrefix(ctx context.Context, prefix string, opts *quint.QueryOptions) ([]quint.Quint, error) {
	return s.Get(ctx, quint.Pattern{
		Graph: &quint.Operators{StartsWith: prefix},
	}, opts)
}

// Count returns the number of rows matching pattern. Patterns with
// post-filters cannot count in SQL alone and fall back to scanning the
// matching identity columns.
func (s *Store) Count(ctx context.Context, pattern quint.Pattern) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}

	clause, params, posts, err := sqlgen.Where(pattern, "")
	if err != nil {
		return 0, err
	}

	if len(posts) == 0 {
		query := "SELECT COUNT(*) FROM " + sqlgen.Table
		if clause != "" {
			query += " WHERE " + clause
		}
		var n int64
		if err := db.QueryRowContext(ctx, s.dialect.Rebind(query), s.encodeParams(params)...).Scan(&n); err != nil {
			return 0, fmt.Errorf("count quints: %w", err)
		}
		return n, nil
	}

	quints, err := s.Get(ctx, pattern, nil)
	if err != nil {
		return 0, err
	}
	return int64(len(quints)), nil
}

// Stats derives row, vector, and graph counts in one query.
func (s *Store) Stats(ctx context.Context) (quint.StoreStats, error) {
	db, err := s.conn()
	if err != nil {
		return quint.StoreStats{}, err
	}

	var stats quint.StoreStats
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(vector), COUNT(DISTINCT graph) FROM "+sqlgen.Table,
	).Scan(&stats.Quints, &stats.WithVector, &stats.NamedGraphs)
	if err != nil {
		return quint.StoreStats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// selectSQL assembles the full SELECT for a pattern read.
func (s *Store) selectSQL(pattern quint.Pattern, opts *quint.QueryOptions) (string, []any, []sqlgen.PostFilter, error) {
	clause, params, posts, err := sqlgen.Where(pattern, "")
	if err != nil {
		return "", nil, nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT " + quintColumns + " FROM " + sqlgen.Table)
	if clause != "" {
		b.WriteString(" WHERE " + clause)
	}

	if opts != nil {
		orderBy, err := sqlgen.OrderBy(opts.Order, opts.Reverse, "")
		if err != nil {
			return "", nil, nil, err
		}
		if orderBy != "" {
			b.WriteString(" ORDER BY " + orderBy)
		}
		// Post-filters reject rows after the scan, so a SQL LIMIT or
		// OFFSET here would page over unfiltered rows. Paging moves to
		// the caller when any post-filter is present.
		if len(posts) == 0 {
			pageClause, pageParams := s.dialect.LimitOffset(opts.Limit, opts.Offset)
			b.WriteString(pageClause)
			params = append(params, pageParams...)
		}
	}

	return s.dialect.Rebind(b.String()), params, posts, nil
}

// scanQuint decodes one row. keep is false when a post-filter rejects
// the row; post-filters see the raw (shim-decoded) column strings, the
// same representation they were translated against.
func (s *Store) scanQuint(rows *sql.Rows, posts []sqlgen.PostFilter) (quint.Quint, bool, error) {
	var graph, subject, predicate, object string
	var vector sql.NullString
	if err := rows.Scan(&graph, &subject, &predicate, &object, &vector); err != nil {
		return quint.Quint{}, false, fmt.Errorf("scan quint: %w", err)
	}

	graph = s.dialect.DecodeValue(graph)
	subject = s.dialect.DecodeValue(subject)
	predicate = s.dialect.DecodeValue(predicate)
	object = s.dialect.DecodeValue(object)

	for _, pf := range posts {
		var raw string
		switch pf.Field {
		case quint.FieldGraph:
			raw = graph
		case quint.FieldSubject:
			raw = subject
		case quint.FieldPredicate:
			raw = predicate
		case quint.FieldObject:
			raw = object
		}
		if !pf.Re.MatchString(raw) {
			return quint.Quint{}, false, nil
		}
	}

	q := quint.Quint{
		Graph:     codec.DecodeTerm(graph),
		Subject:   codec.DecodeTerm(subject),
		Predicate: codec.DecodeTerm(predicate),
		Object:    codec.DecodeObject(object),
	}
	if vector.Valid {
		if err := json.Unmarshal([]byte(vector.String), &q.Vector); err != nil {
			return quint.Quint{}, false, fmt.Errorf("decode vector: %w", err)
		}
	}
	return q, true, nil
}
