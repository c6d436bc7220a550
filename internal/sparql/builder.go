package sparql

import (
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// Builder produces the store pattern for a single triple pattern by
// merging three layers, concrete terms always winning over operators:
//
//  1. the triple's own non-variable positions,
//  2. a security/tenant filter that fills fields the triple left
//     unset - this enforces subgraph isolation independent of what the
//     query author wrote,
//  3. pushed-down FILTER constraints bound to variables occupying the
//     triple's positions.
type Builder struct {
	// Security is the tenant filter. Fields it sets apply to every
	// built pattern unless the triple already pins the field to a
	// concrete term.
	Security quint.Pattern
}

// Build merges the three layers for a triple pattern in a graph
// position. pushdown maps variable names to operator sets derived from
// FILTER expressions; a filter landing on a concrete position is
// dropped (the concrete value already satisfies any consistent
// filter), a filter landing on an existing operator set is unioned in,
// last write winning per key.
func (b *Builder) Build(tp TriplePattern, graph TermOrVar, pushdown map[string]*quint.Operators) quint.Pattern {
	pattern := b.basePattern(tp, graph)
	pattern = b.applySecurity(pattern)

	if len(pushdown) == 0 {
		return pattern
	}
	for field, pos := range positions(tp, graph) {
		if !pos.IsVar() {
			continue
		}
		ops, ok := pushdown[pos.Var]
		if !ok {
			continue
		}
		switch existing := pattern.FieldMatch(field).(type) {
		case quint.Concrete:
			// Concrete value wins; no further narrowing is meaningful.
		case *quint.Operators:
			pattern = pattern.WithField(field, existing.Merge(ops))
		case nil:
			pattern = pattern.WithField(field, ops.Clone())
		}
	}
	return pattern
}

// BuildExistsPattern resolves the triple's variables against an
// already-bound partial solution instead of merging pushdown filters.
// Used for EXISTS / NOT EXISTS sub-evaluation.
func (b *Builder) BuildExistsPattern(tp TriplePattern, graph TermOrVar, solution Binding) quint.Pattern {
	resolve := func(pos TermOrVar) TermOrVar {
		if pos.IsVar() {
			if bound, ok := solution[pos.Var]; ok {
				return TermOrVar{Term: bound}
			}
		}
		return pos
	}
	resolved := TriplePattern{
		Subject:   resolve(tp.Subject),
		Predicate: resolve(tp.Predicate),
		Object:    resolve(tp.Object),
	}
	return b.applySecurity(b.basePattern(resolved, resolve(graph)))
}

// basePattern sets the concrete positions. Variables and the
// default-graph marker stay unset.
func (b *Builder) basePattern(tp TriplePattern, graph TermOrVar) quint.Pattern {
	var pattern quint.Pattern
	for field, pos := range positions(tp, graph) {
		if pos.IsVar() || pos.Term == nil {
			continue
		}
		if _, isDefault := pos.Term.(rdf.DefaultGraph); isDefault {
			continue
		}
		pattern = pattern.WithField(field, quint.Concrete{Term: pos.Term})
	}
	return pattern
}

// applySecurity fills fields the pattern left unset. It never
// overrides a value the query itself pinned.
func (b *Builder) applySecurity(pattern quint.Pattern) quint.Pattern {
	for _, field := range quint.Fields {
		if pattern.FieldMatch(field) != nil {
			continue
		}
		if sec := b.Security.FieldMatch(field); sec != nil {
			pattern = pattern.WithField(field, sec)
		}
	}
	return pattern
}

func positions(tp TriplePattern, graph TermOrVar) map[quint.Field]TermOrVar {
	return map[quint.Field]TermOrVar{
		quint.FieldSubject:   tp.Subject,
		quint.FieldPredicate: tp.Predicate,
		quint.FieldObject:    tp.Object,
		quint.FieldGraph:     graph,
	}
}
