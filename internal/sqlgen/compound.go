package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/undefinedsco/quintstore/internal/quint"
)

// aliasPattern restricts caller-supplied projection aliases to plain
// identifiers before they reach the SQL text.
var aliasPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Projection names one output column of a compound query: the alias it
// is selected under and the identity field it carries, so the caller
// can pick the object-aware decoder where it applies.
type Projection struct {
	Alias string
	Field quint.Field
}

// Compound compiles an N-pattern self-join into one SELECT. Each
// pattern binds to table alias tN; all patterns are joined on the
// shared JoinOn field and on graph, keeping the join inside one named
// graph. Returns the SQL, ordered parameters, and the projections in
// SELECT order for scanning.
//
// $regex constraints are rejected here: their client-side evaluation
// has no row shape to run against once patterns are fused into one
// result row.
func Compound(cp quint.CompoundPattern, opts *quint.QueryOptions) (string, []any, []Projection, error) {
	if len(cp.Patterns) < 2 {
		return "", nil, nil, fmt.Errorf("compound query needs at least 2 patterns, got %d", len(cp.Patterns))
	}
	if !cp.JoinOn.Valid() {
		return "", nil, nil, fmt.Errorf("invalid joinOn field %q", cp.JoinOn)
	}

	selects, projections, err := projection(cp)
	if err != nil {
		return "", nil, nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString(" FROM " + Table + " t0")

	for i := 1; i < len(cp.Patterns); i++ {
		ti := tableAlias(i)
		b.WriteString(fmt.Sprintf(" JOIN %s %s ON %s.%s = t0.%s",
			Table, ti, ti, cp.JoinOn, cp.JoinOn))
		if cp.JoinOn != quint.FieldGraph {
			b.WriteString(fmt.Sprintf(" AND %s.graph = t0.graph", ti))
		}
	}

	var (
		conds  []string
		params []any
	)
	for i, p := range cp.Patterns {
		clause, ps, posts, err := Where(p, tableAlias(i))
		if err != nil {
			return "", nil, nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		if len(posts) > 0 {
			return "", nil, nil, fmt.Errorf("pattern %d: $regex is not supported in compound queries", i)
		}
		if clause != "" {
			conds = append(conds, clause)
			params = append(params, ps...)
		}
	}
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	// Caller ordering applies to the anchor pattern's columns. Without
	// it, deterministic output order: graph then join value on the
	// anchor.
	if opts != nil && len(opts.Order) > 0 {
		orderBy, err := OrderBy(opts.Order, opts.Reverse, "t0")
		if err != nil {
			return "", nil, nil, err
		}
		b.WriteString(" ORDER BY " + orderBy)
	} else {
		b.WriteString(" ORDER BY t0.graph ASC, t0." + string(cp.JoinOn) + " ASC")
	}

	if opts != nil && opts.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, opts.Limit)
	}
	if opts != nil && opts.Offset > 0 {
		b.WriteString(" OFFSET ?")
		params = append(params, opts.Offset)
	}

	return b.String(), params, projections, nil
}

// projection renders the SELECT list. Explicit selects are validated
// per entry; the default projection exposes the join value, the graph,
// and each pattern's predicate/object pair.
func projection(cp quint.CompoundPattern) ([]string, []Projection, error) {
	if len(cp.Select) == 0 {
		selects := []string{"t0." + string(cp.JoinOn) + " AS " + string(cp.JoinOn)}
		projections := []Projection{{Alias: string(cp.JoinOn), Field: cp.JoinOn}}
		if cp.JoinOn != quint.FieldGraph {
			selects = append(selects, "t0.graph AS graph")
			projections = append(projections, Projection{Alias: "graph", Field: quint.FieldGraph})
		}
		for i := range cp.Patterns {
			ti := tableAlias(i)
			pAlias := fmt.Sprintf("predicate%d", i)
			oAlias := fmt.Sprintf("object%d", i)
			selects = append(selects,
				ti+".predicate AS "+pAlias,
				ti+".object AS "+oAlias)
			projections = append(projections,
				Projection{Alias: pAlias, Field: quint.FieldPredicate},
				Projection{Alias: oAlias, Field: quint.FieldObject})
		}
		return selects, projections, nil
	}

	var (
		selects     []string
		projections []Projection
	)
	for _, sel := range cp.Select {
		if sel.Pattern < 0 || sel.Pattern >= len(cp.Patterns) {
			return nil, nil, fmt.Errorf("select references pattern %d of %d", sel.Pattern, len(cp.Patterns))
		}
		if !sel.Field.Valid() {
			return nil, nil, fmt.Errorf("invalid select field %q", sel.Field)
		}
		if !aliasPattern.MatchString(sel.Alias) {
			return nil, nil, fmt.Errorf("invalid select alias %q", sel.Alias)
		}
		selects = append(selects, tableAlias(sel.Pattern)+"."+string(sel.Field)+" AS "+sel.Alias)
		projections = append(projections, Projection{Alias: sel.Alias, Field: sel.Field})
	}
	return selects, projections, nil
}

func tableAlias(i int) string {
	return fmt.Sprintf("t%d", i)
}
