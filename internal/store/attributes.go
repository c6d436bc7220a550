package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/undefinedsco/quintstore/internal/codec"
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
	"github.com/undefinedsco/quintstore/internal/sqlgen"
)

// attrChunkSize bounds the IN-list length per statement so parameter
// counts stay well under every backend's limit.
const attrChunkSize = 400

// GetAttributes fetches the objects of every subject x predicate
// combination in a batch, replacing what would otherwise be one query
// per optional clause. Either input list being empty returns an empty
// map without touching the database.
//
// Subjects are chunked; on the pooled backend the chunks run
// concurrently, on SQLite the errgroup degrades to sequential execution
// over the single connection.
func (s *Store) GetAttributes(ctx context.Context, subjects, predicates []rdf.Term, graph rdf.Term) (quint.AttributeMap, error) {
	result := quint.AttributeMap{}
	if len(subjects) == 0 || len(predicates) == 0 {
		return result, nil
	}

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	predParams := make([]any, 0, len(predicates)+1)
	for _, p := range predicates {
		predParams = append(predParams, s.dialect.EncodeValue(codec.EncodeTerm(p)))
	}
	var graphCond string
	if graph != nil {
		graphCond = " AND graph = ?"
		predParams = append(predParams, s.dialect.EncodeValue(codec.EncodeTerm(graph)))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if !s.dialect.Pooled() {
		g.SetLimit(1)
	}

	for start := 0; start < len(subjects); start += attrChunkSize {
		chunk := subjects[start:min(start+attrChunkSize, len(subjects))]

		g.Go(func() error {
			subjParams := make([]any, 0, len(chunk))
			for _, sub := range chunk {
				subjParams = append(subjParams, s.dialect.EncodeValue(codec.EncodeTerm(sub)))
			}

			query := s.dialect.Rebind(fmt.Sprintf(
				"SELECT subject, predicate, object FROM %s WHERE subject IN (%s) AND predicate IN (%s)%s",
				sqlgen.Table,
				placeholderList(len(chunk)),
				placeholderList(len(predicates)),
				graphCond,
			))
			params := append(append([]any{}, subjParams...), predParams...)

			rows, err := db.QueryContext(gctx, query, params...)
			if err != nil {
				return fmt.Errorf("query attributes: %w", err)
			}
			defer rows.Close()

			for rows.Next() {
				var subject, predicate, object string
				if err := rows.Scan(&subject, &predicate, &object); err != nil {
					return fmt.Errorf("scan attribute row: %w", err)
				}
				subject = s.dialect.DecodeValue(subject)
				predicate = s.dialect.DecodeValue(predicate)
				obj := codec.DecodeObject(s.dialect.DecodeValue(object))

				mu.Lock()
				byPred, ok := result[subject]
				if !ok {
					byPred = map[string][]rdf.Term{}
					result[subject] = byPred
				}
				byPred[predicate] = append(byPred[predicate], obj)
				mu.Unlock()
			}
			return rows.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func placeholderList(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
