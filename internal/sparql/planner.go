package sparql

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// OptimizeParams accumulates what the planner learned walking the
// algebra tree outside-in. It is only meaningful when the walk
// terminated at a single-pattern BGP without aborting.
type OptimizeParams struct {
	Vars     []string // projected variables; nil = all bound
	Limit    int
	HasLimit bool
	Offset   int
	Distinct bool

	OrderField quint.Field
	OrderDesc  bool
	HasOrder   bool

	Graph  TermOrVar
	Triple TriplePattern
}

// Planner decides, per query, between answering directly from the
// store's indexes and delegating to the general evaluator.
type Planner struct {
	store   quint.Store
	eval    Evaluator
	builder *Builder
	logger  *slog.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithEvaluator sets the delegate for queries that cannot be pushed
// down. Without one, such queries fail with an explanatory error.
func WithEvaluator(e Evaluator) PlannerOption {
	return func(p *Planner) { p.eval = e }
}

// WithSecurityFilter installs the tenant filter merged into every
// pushed-down pattern.
func WithSecurityFilter(filter quint.Pattern) PlannerOption {
	return func(p *Planner) { p.builder.Security = filter }
}

// WithLogger injects a structured logger.
func WithLogger(l *slog.Logger) PlannerOption {
	return func(p *Planner) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		p.logger = l
	}
}

// NewPlanner creates a planner over the given store.
func NewPlanner(store quint.Store, opts ...PlannerOption) *Planner {
	p := &Planner{
		store:   store,
		builder: &Builder{},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Query executes a SPARQL query string: push-down when eligible,
// delegation otherwise. Parse failures delegate rather than error -
// the evaluator owns full SPARQL, this planner only its subset.
func (p *Planner) Query(ctx context.Context, query string) (*Result, error) {
	return p.QueryWithFilters(ctx, query, nil)
}

// QueryWithFilters additionally merges externally-derived pushdown
// filters (variable name -> operator set) into the store pattern.
// Filters are supplied by the caller's own FILTER analysis; the
// planner's walk still aborts on FILTER nodes it meets itself.
func (p *Planner) QueryWithFilters(ctx context.Context, query string, filters map[string]*quint.Operators) (*Result, error) {
	parsed, err := Parse(query)
	if err != nil {
		p.logger.Debug("parse failed, delegating", "error", err)
		return p.delegate(ctx, query)
	}

	switch parsed.Form {
	case FormConstruct, FormDescribe, FormUpdate:
		// Their correctness depends on more of the algebra than this
		// planner models.
		return p.delegate(ctx, query)
	}

	params, eligible := p.analyze(parsed)
	if !eligible {
		p.logger.Debug("not eligible for push-down, delegating")
		return p.delegate(ctx, query)
	}

	if parsed.Form == FormAsk {
		params.Limit, params.HasLimit, params.Offset = 1, true, 0
	}

	p.logger.Debug("push-down eligible",
		"vars", params.Vars,
		"limit", params.Limit,
		"distinct", params.Distinct,
		"ordered", params.HasOrder)

	bindings, err := p.execute(ctx, params, filters)
	if err != nil {
		return nil, err
	}

	if parsed.Form == FormAsk {
		return &Result{Form: FormAsk, Bool: len(bindings) > 0}, nil
	}
	return &Result{Form: FormSelect, Bindings: bindings}, nil
}

// Explain reports whether a query is push-down eligible and, when it
// is, the derived parameters. Parse failures are simply "not
// eligible".
func (p *Planner) Explain(query string) (*OptimizeParams, bool) {
	parsed, err := Parse(query)
	if err != nil {
		return nil, false
	}
	if parsed.Form != FormSelect && parsed.Form != FormAsk {
		return nil, false
	}
	params, eligible := p.analyze(parsed)
	if !eligible {
		return nil, false
	}
	return &params, true
}

// analyze walks the tree from the outermost operator inward. Any
// operator outside the model aborts: "not eligible" is normal control
// flow, never an error.
func (p *Planner) analyze(q *Query) (OptimizeParams, bool) {
	var params OptimizeParams
	var orderVar string

	node := q.Root
	for {
		switch n := node.(type) {
		case Project:
			params.Vars = n.Vars
			node = n.Input

		case Slice:
			params.Limit = n.Limit
			params.HasLimit = n.HasLimit
			params.Offset = n.Offset
			node = n.Input

		case Distinct:
			params.Distinct = true
			node = n.Input

		case Reduced:
			// Dedup is optional for REDUCED; treating it as DISTINCT
			// is always a valid answer.
			params.Distinct = true
			node = n.Input

		case OrderBy:
			if len(n.Conditions) != 1 || !n.Conditions[0].Simple {
				return params, false
			}
			orderVar = n.Conditions[0].Var
			params.OrderDesc = n.Conditions[0].Desc
			params.HasOrder = true
			node = n.Input

		case Filter:
			return params, false

		case Graph:
			params.Graph = n.Graph
			node = n.Input

		case BGP:
			if len(n.Patterns) != 1 {
				// Multi-pattern joins are the compound query's job,
				// invoked explicitly, never inferred here.
				return params, false
			}
			params.Triple = n.Patterns[0]
			if params.HasOrder {
				field, ok := resolveOrderField(orderVar, params)
				if !ok {
					return params, false
				}
				params.OrderField = field
			}
			return params, true

		case Join, LeftJoin, Union, Minus:
			return params, false

		default:
			return params, false
		}
	}
}

// resolveOrderField maps the ORDER BY variable to a tuple role: by the
// position it occupies in the triple pattern, or failing that by its
// name.
func resolveOrderField(orderVar string, params OptimizeParams) (quint.Field, bool) {
	switch orderVar {
	case params.Triple.Subject.Var:
		return quint.FieldSubject, true
	case params.Triple.Predicate.Var:
		return quint.FieldPredicate, true
	case params.Triple.Object.Var:
		return quint.FieldObject, true
	case params.Graph.Var:
		return quint.FieldGraph, true
	}
	switch orderVar {
	case "s", "subject":
		return quint.FieldSubject, true
	case "p", "predicate":
		return quint.FieldPredicate, true
	case "o", "object":
		return quint.FieldObject, true
	case "g", "graph":
		return quint.FieldGraph, true
	}
	return "", false
}

// execute runs an eligible plan: one store Get with the translated
// pattern, then client-side offset, limit, and distinct. The store is
// asked for limit+offset rows because its primitive has no
// offset-aware index seek across all backends.
func (p *Planner) execute(ctx context.Context, params OptimizeParams, filters map[string]*quint.Operators) ([]Binding, error) {
	pattern := p.builder.Build(params.Triple, params.Graph, filters)

	opts := &quint.QueryOptions{}
	if params.HasLimit {
		opts.Limit = params.Limit + params.Offset
	}
	if params.HasOrder {
		opts.Order = []quint.Field{params.OrderField}
		opts.Reverse = params.OrderDesc
	}

	quints, err := p.store.Get(ctx, pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("push-down query: %w", err)
	}

	bindings := make([]Binding, 0, len(quints))
	for _, q := range quints {
		bindings = append(bindings, p.bind(q, params))
	}

	if params.Offset > 0 {
		if params.Offset >= len(bindings) {
			bindings = nil
		} else {
			bindings = bindings[params.Offset:]
		}
	}
	if params.HasLimit && len(bindings) > params.Limit {
		bindings = bindings[:params.Limit]
	}
	if params.Distinct {
		bindings = dedupe(bindings)
	}
	return bindings, nil
}

// bind maps one quint's fields onto the triple's variables, keeping
// only projected variables when a projection was given.
func (p *Planner) bind(q quint.Quint, params OptimizeParams) Binding {
	binding := Binding{}
	set := func(pos TermOrVar, value rdf.Term) {
		if !pos.IsVar() {
			return
		}
		if len(params.Vars) > 0 && !containsVar(params.Vars, pos.Var) {
			return
		}
		binding[pos.Var] = value
	}
	set(params.Triple.Subject, q.Subject)
	set(params.Triple.Predicate, q.Predicate)
	set(params.Triple.Object, q.Object)
	set(params.Graph, q.Graph)
	return binding
}

// dedupe removes duplicate bindings. The dedup key is the sorted
// var=value rendering over the binding's variables.
func dedupe(bindings []Binding) []Binding {
	seen := make(map[string]struct{}, len(bindings))
	out := bindings[:0]
	for _, b := range bindings {
		key := bindingKey(b)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}

func bindingKey(b Binding) string {
	pairs := make([]string, 0, len(b))
	for name, term := range b {
		pairs = append(pairs, name+"="+term.String())
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\x1f")
}

func containsVar(vars []string, name string) bool {
	for _, v := range vars {
		if v == name {
			return true
		}
	}
	return false
}

// delegate hands the query string to the external evaluator.
func (p *Planner) delegate(ctx context.Context, query string) (*Result, error) {
	if p.eval == nil {
		return nil, fmt.Errorf("query requires the general evaluator, but none is configured")
	}
	result, err := p.eval.Evaluate(ctx, query)
	if err != nil {
		return nil, err
	}
	result.Delegated = true
	return result, nil
}
