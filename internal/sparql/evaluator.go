package sparql

import (
	"context"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Binding maps variable names (without the ? sigil) to terms.
type Binding map[string]rdf.Term

// Result is the outcome of query execution, from either the push-down
// path or the delegate.
type Result struct {
	Form     QueryForm
	Bindings []Binding // SELECT
	Bool     bool      // ASK

	// Delegated reports whether the external evaluator served the
	// query. False means the planner answered it from the store's
	// indexes directly.
	Delegated bool
}

// Evaluator is the external general-purpose SPARQL engine. The planner
// hands it every query it cannot push down, as the original query
// string; the evaluator in turn uses the store's Match primitive as
// its data source. Its internals are out of scope here.
type Evaluator interface {
	Evaluate(ctx context.Context, query string) (*Result, error)
}
