package store

import (
	"context"
	"fmt"

	"github.com/undefinedsco/quintstore/internal/codec"
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
	"github.com/undefinedsco/quintstore/internal/sqlgen"
)

// GetCompound executes an N-pattern self-join on the shared JoinOn
// field within one graph, in a single round trip. A single pattern
// needs no join and degrades to a plain Get with the default
// projection.
func (s *Store) GetCompound(ctx context.Context, cp quint.CompoundPattern, opts *quint.QueryOptions) ([]quint.CompoundResult, error) {
	if len(cp.Patterns) == 0 {
		return []quint.CompoundResult{}, nil
	}
	if len(cp.Patterns) == 1 {
		return s.compoundSingle(ctx, cp, opts)
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	query, params, projections, err := sqlgen.Compound(cp, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("compound query", "patterns", len(cp.Patterns), "joinOn", cp.JoinOn, "sql", query)

	rows, err := db.QueryContext(ctx, s.dialect.Rebind(query), s.encodeParams(params)...)
	if err != nil {
		return nil, fmt.Errorf("compound query: %w", err)
	}
	defer rows.Close()

	results := []quint.CompoundResult{}
	scanned := make([]string, len(projections))
	dests := make([]any, len(projections))
	for i := range scanned {
		dests[i] = &scanned[i]
	}

	for rows.Next() {
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scan compound row: %w", err)
		}
		result := make(quint.CompoundResult, len(projections))
		for i, proj := range projections {
			raw := s.dialect.DecodeValue(scanned[i])
			if proj.Field == quint.FieldObject {
				result[proj.Alias] = codec.DecodeObject(raw)
			} else {
				result[proj.Alias] = codec.DecodeTerm(raw)
			}
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compound rows: %w", err)
	}
	return results, nil
}

// compoundSingle serves the one-pattern case through Get, shaping rows
// into the default compound projection.
func (s *Store) compoundSingle(ctx context.Context, cp quint.CompoundPattern, opts *quint.QueryOptions) ([]quint.CompoundResult, error) {
	if !cp.JoinOn.Valid() {
		return nil, fmt.Errorf("invalid joinOn field %q", cp.JoinOn)
	}
	quints, err := s.Get(ctx, cp.Patterns[0], opts)
	if err != nil {
		return nil, err
	}

	results := make([]quint.CompoundResult, 0, len(quints))
	if len(cp.Select) > 0 {
		for _, sel := range cp.Select {
			if sel.Pattern != 0 {
				return nil, fmt.Errorf("select references pattern %d of 1", sel.Pattern)
			}
			if !sel.Field.Valid() {
				return nil, fmt.Errorf("invalid select field %q", sel.Field)
			}
		}
		for _, q := range quints {
			result := make(quint.CompoundResult, len(cp.Select))
			for _, sel := range cp.Select {
				result[sel.Alias] = fieldTerm(q, sel.Field)
			}
			results = append(results, result)
		}
		return results, nil
	}

	for _, q := range quints {
		result := quint.CompoundResult{
			string(cp.JoinOn): fieldTerm(q, cp.JoinOn),
			"predicate0":      q.Predicate,
			"object0":         q.Object,
		}
		if cp.JoinOn != quint.FieldGraph {
			result["graph"] = q.Graph
		}
		results = append(results, result)
	}
	return results, nil
}

func fieldTerm(q quint.Quint, f quint.Field) rdf.Term {
	switch f {
	case quint.FieldGraph:
		return q.Graph
	case quint.FieldSubject:
		return q.Subject
	case quint.FieldPredicate:
		return q.Predicate
	case quint.FieldObject:
		return q.Object
	default:
		return nil
	}
}
