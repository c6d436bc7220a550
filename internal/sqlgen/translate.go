package sqlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/undefinedsco/quintstore/internal/codec"
	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// PostFilter is a predicate that could not be expressed as an
// index-served SQL condition and must run in-process over the raw
// column value after the scan. Today that is only $regex: the SQL side
// gets a coarse literal-prefix range where one exists, and the compiled
// regex decides for real.
type PostFilter struct {
	Field quint.Field
	Re    *regexp.Regexp
}

// Where compiles a pattern into a WHERE fragment, its ordered
// parameters, and any post-filters. alias, when non-empty, qualifies
// column references for compound joins; it comes from the fixed tN set,
// never from caller input.
//
// Returns fragment "" for an unconstrained pattern.
func Where(p quint.Pattern, alias string) (string, []any, []PostFilter, error) {
	var (
		clauses []string
		params  []any
		posts   []PostFilter
	)

	for _, f := range quint.Fields {
		m := p.FieldMatch(f)
		if m == nil {
			continue
		}
		col := column(f, alias)

		switch match := m.(type) {
		case quint.Concrete:
			clauses = append(clauses, col+" = ?")
			params = append(params, encodeFor(f, match.Term))

		case *quint.Operators:
			cs, ps, pf, err := compileOperators(f, col, match)
			if err != nil {
				return "", nil, nil, err
			}
			clauses = append(clauses, cs...)
			params = append(params, ps...)
			posts = append(posts, pf...)

		default:
			return "", nil, nil, fmt.Errorf("unknown term match type %T on %s", m, f)
		}
	}

	return strings.Join(clauses, " AND "), params, posts, nil
}

// compileOperators compiles one field's operator set. Every present key
// contributes one conjunct, in a fixed order so output is deterministic.
func compileOperators(f quint.Field, col string, o *quint.Operators) ([]string, []any, []PostFilter, error) {
	var (
		clauses []string
		params  []any
		posts   []PostFilter
	)

	if o.Eq != nil {
		clauses = append(clauses, col+" = ?")
		params = append(params, encodeFor(f, o.Eq))
	}
	if o.Ne != nil {
		clauses = append(clauses, col+" <> ?")
		params = append(params, encodeFor(f, o.Ne))
	}

	// Ordering operators compare against the fpstring-only prefix when
	// the operand is a numeric or temporal literal, so every stored
	// lexical form of the same value falls on the right side of the
	// bound. $gt and $lte append a maximal suffix: the stored encoding
	// carries a separator-led tail, so the suffix turns the fpstring
	// prefix into an inclusive upper edge of the value class.
	if o.Gt != nil {
		clause, param := rangeBound(f, col, o.Gt, ">", true)
		clauses = append(clauses, clause)
		params = append(params, param)
	}
	if o.Gte != nil {
		clause, param := rangeBound(f, col, o.Gte, ">=", false)
		clauses = append(clauses, clause)
		params = append(params, param)
	}
	if o.Lt != nil {
		clause, param := rangeBound(f, col, o.Lt, "<", false)
		clauses = append(clauses, clause)
		params = append(params, param)
	}
	if o.Lte != nil {
		clause, param := rangeBound(f, col, o.Lte, "<=", true)
		clauses = append(clauses, clause)
		params = append(params, param)
	}

	if len(o.In) > 0 {
		clauses = append(clauses, col+" IN ("+placeholders(len(o.In))+")")
		for _, t := range o.In {
			params = append(params, encodeFor(f, t))
		}
	}
	if len(o.NotIn) > 0 {
		clauses = append(clauses, col+" NOT IN ("+placeholders(len(o.NotIn))+")")
		for _, t := range o.NotIn {
			params = append(params, encodeFor(f, t))
		}
	}

	if o.StartsWith != "" {
		// Half-open range instead of LIKE 'x%': index-served.
		clauses = append(clauses, col+" >= ? AND "+col+" < ?")
		params = append(params, o.StartsWith, o.StartsWith+codec.MaxSuffix)
	}
	if o.EndsWith != "" {
		// Leading wildcard defeats the indexes; accepted scan cost.
		clauses = append(clauses, col+" LIKE ? ESCAPE '\\'")
		params = append(params, "%"+escapeLike(o.EndsWith))
	}
	if o.Contains != "" {
		clauses = append(clauses, col+" LIKE ? ESCAPE '\\'")
		params = append(params, "%"+escapeLike(o.Contains)+"%")
	}

	if o.Regex != "" {
		re, err := regexp.Compile(o.Regex)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("compile $regex for %s: %w", f, err)
		}
		// Index-assisted prefilter when the regex is anchored at the
		// start and has a literal prefix. An unanchored regex matches
		// anywhere in the value, so no column range is sound for it.
		// The compiled regex runs in-process either way.
		if prefix, _ := re.LiteralPrefix(); prefix != "" && strings.HasPrefix(o.Regex, "^") {
			clauses = append(clauses, col+" >= ? AND "+col+" < ?")
			params = append(params, prefix, prefix+codec.MaxSuffix)
		}
		posts = append(posts, PostFilter{Field: f, Re: re})
	}

	if o.IsNull != nil {
		if *o.IsNull {
			clauses = append(clauses, col+" IS NULL")
		} else {
			clauses = append(clauses, col+" IS NOT NULL")
		}
	}

	return clauses, params, posts, nil
}

// rangeBound builds one ordering conjunct. maxSuffix widens the bound
// to the inclusive edge of a fpstring value class ($gt, $lte).
func rangeBound(f quint.Field, col string, t rdf.Term, op string, maxSuffix bool) (string, any) {
	if f == quint.FieldObject {
		if bound, ok := codec.NumericBound(t); ok {
			if maxSuffix {
				bound += codec.MaxSuffix
			}
			return col + " " + op + " ?", bound
		}
	}
	return col + " " + op + " ?", encodeFor(f, t)
}

// encodeFor encodes a term for comparison against the given column.
// The object column stores the literal-aware encoding.
func encodeFor(f quint.Field, t rdf.Term) string {
	if f == quint.FieldObject {
		return codec.EncodeObject(t)
	}
	return codec.EncodeTerm(t)
}

// column qualifies a column reference with an optional alias. Both
// inputs come from fixed internal sets.
func column(f quint.Field, alias string) string {
	if alias == "" {
		return string(f)
	}
	return alias + "." + string(f)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE metacharacters so user values match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// OrderBy renders an ORDER BY clause body from validated fields. An
// empty field list returns "". Invalid fields are an error, keeping
// identifier interpolation inside the fixed column set.
func OrderBy(fields []quint.Field, reverse bool, alias string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	dir := " ASC"
	if reverse {
		dir = " DESC"
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Valid() {
			return "", fmt.Errorf("invalid order field %q", f)
		}
		parts = append(parts, column(f, alias)+dir)
	}
	return strings.Join(parts, ", "), nil
}
