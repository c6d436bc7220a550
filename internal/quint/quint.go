package quint

import (
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Quint is the atomic stored unit: a named-graph triple plus an
// optional embedding vector. The tuple (Graph, Subject, Predicate,
// Object) is the primary key; Vector is payload, not identity.
type Quint struct {
	Graph     rdf.Term
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Vector    []float64 // nil when absent
}

// SameKey reports whether two quints share the same identity tuple.
func (q Quint) SameKey(other Quint) bool {
	return q.Graph.Equal(other.Graph) &&
		q.Subject.Equal(other.Subject) &&
		q.Predicate.Equal(other.Predicate) &&
		q.Object.Equal(other.Object)
}

// Field names one of the four identity columns.
type Field string

const (
	FieldGraph     Field = "graph"
	FieldSubject   Field = "subject"
	FieldPredicate Field = "predicate"
	FieldObject    Field = "object"
)

// Fields lists the identity columns in canonical declaration order.
var Fields = []Field{FieldGraph, FieldSubject, FieldPredicate, FieldObject}

// Valid reports whether f names an identity column.
func (f Field) Valid() bool {
	switch f {
	case FieldGraph, FieldSubject, FieldPredicate, FieldObject:
		return true
	default:
		return false
	}
}

// QueryOptions bound and order a read.
type QueryOptions struct {
	Limit   int     // 0 = unbounded
	Offset  int     // rows skipped before the first returned
	Order   []Field // composite sort; empty = backend order
	Reverse bool    // descending sort over Order
}

// StoreStats is derived on demand, never persisted.
type StoreStats struct {
	Quints      int64 // total rows
	WithVector  int64 // rows with a non-null vector
	NamedGraphs int64 // distinct graph values
}

// CompoundSelect projects one field of one pattern in a compound query
// under an alias.
type CompoundSelect struct {
	Pattern int // index into CompoundPattern.Patterns
	Field   Field
	Alias   string
}

// CompoundPattern joins N patterns on a shared field value within the
// same graph, executed as one SQL statement.
type CompoundPattern struct {
	Patterns []Pattern
	JoinOn   Field
	Select   []CompoundSelect // empty = default per-pattern object projection
}

// CompoundResult maps projection aliases to decoded terms.
type CompoundResult map[string]rdf.Term

// AttributeMap is the result shape of GetAttributes: encoded subject ->
// encoded predicate -> object terms.
type AttributeMap map[string]map[string][]rdf.Term
