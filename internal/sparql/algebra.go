package sparql

import (
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// QueryForm classifies a parsed query by its result shape.
type QueryForm string

const (
	FormSelect    QueryForm = "SELECT"
	FormAsk       QueryForm = "ASK"
	FormConstruct QueryForm = "CONSTRUCT"
	FormDescribe  QueryForm = "DESCRIBE"
	FormUpdate    QueryForm = "UPDATE"
)

// Query is a parsed query: its form and the root of its algebra tree.
// CONSTRUCT, DESCRIBE, and UPDATE carry a nil Root - the planner
// always delegates them whole.
type Query struct {
	Form QueryForm
	Root Node
}

// Node is a sealed interface over the algebra operators the planner
// can walk. Only the types in this file implement it.
type Node interface {
	algebraNode() // Sealed - only these types implement it
}

// TermOrVar is one position of a triple pattern: either a concrete
// term or a variable name (without the ? sigil). Exactly one is set.
type TermOrVar struct {
	Var  string
	Term rdf.Term
}

// IsVar reports whether the position holds a variable.
func (tv TermOrVar) IsVar() bool { return tv.Var != "" }

// TriplePattern is one subject/predicate/object pattern inside a BGP.
type TriplePattern struct {
	Subject   TermOrVar
	Predicate TermOrVar
	Object    TermOrVar
}

// Project narrows the output to a variable list. An empty Vars means
// SELECT * - project everything bound.
type Project struct {
	Vars  []string
	Input Node
}

func (Project) algebraNode() {}

// Slice applies LIMIT/OFFSET. HasLimit distinguishes LIMIT 0 from no
// limit.
type Slice struct {
	Limit    int
	HasLimit bool
	Offset   int
	Input    Node
}

func (Slice) algebraNode() {}

// Distinct requires duplicate elimination.
type Distinct struct {
	Input Node
}

func (Distinct) algebraNode() {}

// Reduced permits (but does not require) duplicate elimination.
type Reduced struct {
	Input Node
}

func (Reduced) algebraNode() {}

// OrderCondition is a single ORDER BY condition. Simple is true only
// for a bare variable reference; expressions set Simple false and the
// raw text in Expr.
type OrderCondition struct {
	Var    string
	Desc   bool
	Simple bool
	Expr   string
}

// OrderBy sorts solutions.
type OrderBy struct {
	Conditions []OrderCondition
	Input      Node
}

func (OrderBy) algebraNode() {}

// Filter holds a FILTER expression. The planner never interprets Expr;
// its presence alone makes the query ineligible.
type Filter struct {
	Expr  string
	Input Node
}

func (Filter) algebraNode() {}

// Graph scopes its input to a named graph: either a concrete term or a
// graph variable.
type Graph struct {
	Graph TermOrVar
	Input Node
}

func (Graph) algebraNode() {}

// BGP is a basic graph pattern: a conjunction of triple patterns.
type BGP struct {
	Patterns []TriplePattern
}

func (BGP) algebraNode() {}

// Join, LeftJoin, Union, and Minus are modeled only far enough for the
// planner to recognize and refuse them.
type Join struct{ Left, Right Node }

func (Join) algebraNode() {}

type LeftJoin struct{ Left, Right Node }

func (LeftJoin) algebraNode() {}

type Union struct{ Left, Right Node }

func (Union) algebraNode() {}

type Minus struct{ Left, Right Node }

func (Minus) algebraNode() {}
