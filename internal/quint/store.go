package quint

import (
	"context"
	"iter"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Store is the contract shared by the SQL backends. All methods except
// Open fail with a not-open error until Open has returned; Open and
// Close are idempotent and safe to race against themselves.
type Store interface {
	// Open establishes the connection (or pool) and ensures the schema
	// exists. Concurrent callers observe the same ready state.
	Open(ctx context.Context) error

	// Close releases the connection. Idempotent.
	Close() error

	// Get returns the quints matching pattern, decoded. A nil opts is
	// equivalent to the zero QueryOptions.
	Get(ctx context.Context, pattern Pattern, opts *QueryOptions) ([]Quint, error)

	// Match is the pull-based iterator the external SPARQL evaluator
	// consumes as its data source. Nil terms are wildcards. The
	// sequence is single-use; each call issues a fresh query.
	Match(ctx context.Context, s, p, o, g rdf.Term) iter.Seq2[Quint, error]

	// GetByGraphPrefix returns the quints whose graph term starts with
	// prefix. This is the tenant/namespace isolation primitive.
	GetByGraphPrefix(ctx context.Context, prefix string, opts *QueryOptions) ([]Quint, error)

	// Count returns the number of rows matching pattern.
	Count(ctx context.Context, pattern Pattern) (int64, error)

	// Put upserts one quint. On key conflict only the vector field is
	// replaced; the row is never duplicated.
	Put(ctx context.Context, q Quint) error

	// MultiPut upserts quints in a single transaction, all-or-nothing.
	// An empty input is a no-op.
	MultiPut(ctx context.Context, quints []Quint) error

	// UpdateEmbedding sets the vector on every row matching pattern
	// and returns the affected row count. A nil vector clears it.
	UpdateEmbedding(ctx context.Context, pattern Pattern, vector []float64) (int64, error)

	// Del deletes every row matching pattern and returns the affected
	// row count. An empty pattern deletes everything.
	Del(ctx context.Context, pattern Pattern) (int64, error)

	// MultiDel deletes the exact identity tuples of the given quints in
	// one transaction. Tuples that do not exist are skipped; the
	// present ones are still deleted atomically as a batch.
	MultiDel(ctx context.Context, quints []Quint) error

	// GetCompound joins the compound pattern's triple patterns on the
	// shared JoinOn field (and graph) in one round trip. A single
	// pattern degrades to a plain Get projection.
	GetCompound(ctx context.Context, cp CompoundPattern, opts *QueryOptions) ([]CompoundResult, error)

	// GetAttributes fetches the objects of every subject x predicate
	// combination in one batch, optionally scoped to a graph. Either
	// input list being empty yields an empty map without a query.
	GetAttributes(ctx context.Context, subjects, predicates []rdf.Term, graph rdf.Term) (AttributeMap, error)

	// Stats derives row, vector, and graph counts.
	Stats(ctx context.Context) (StoreStats, error)

	// Clear wipes the table unconditionally.
	Clear(ctx context.Context) error
}
