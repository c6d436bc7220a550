package quint

import (
	"github.com/undefinedsco/quintstore/internal/rdf"
)

// TermMatch is a sealed interface over the two pattern-constraint
// forms. Only Concrete and Operators implement it.
type TermMatch interface {
	termMatch() // Sealed - only these types implement it
}

// Concrete matches exactly one term.
type Concrete struct {
	Term rdf.Term
}

func (Concrete) termMatch() {}

// Operators is a conjunctive set of column tests. Every non-zero field
// applies; a zero field is absent. Nil term fields and nil slices mean
// the operator is not present.
type Operators struct {
	Eq  rdf.Term
	Ne  rdf.Term
	Gt  rdf.Term
	Gte rdf.Term
	Lt  rdf.Term
	Lte rdf.Term

	In    []rdf.Term
	NotIn []rdf.Term

	StartsWith string
	EndsWith   string
	Contains   string
	Regex      string

	IsNull *bool
}

func (*Operators) termMatch() {}

// Empty reports whether no operator is set.
func (o *Operators) Empty() bool {
	return o.Eq == nil && o.Ne == nil &&
		o.Gt == nil && o.Gte == nil && o.Lt == nil && o.Lte == nil &&
		len(o.In) == 0 && len(o.NotIn) == 0 &&
		o.StartsWith == "" && o.EndsWith == "" && o.Contains == "" &&
		o.Regex == "" && o.IsNull == nil
}

// Clone returns a deep copy; slices are copied, terms are immutable.
func (o *Operators) Clone() *Operators {
	c := *o
	if o.In != nil {
		c.In = append([]rdf.Term(nil), o.In...)
	}
	if o.NotIn != nil {
		c.NotIn = append([]rdf.Term(nil), o.NotIn...)
	}
	if o.IsNull != nil {
		v := *o.IsNull
		c.IsNull = &v
	}
	return &c
}

// Merge unions other's operators into a copy of o, last write winning
// per key. Used by the pattern builder when several pushed-down filters
// land on the same field.
func (o *Operators) Merge(other *Operators) *Operators {
	c := o.Clone()
	if other.Eq != nil {
		c.Eq = other.Eq
	}
	if other.Ne != nil {
		c.Ne = other.Ne
	}
	if other.Gt != nil {
		c.Gt = other.Gt
	}
	if other.Gte != nil {
		c.Gte = other.Gte
	}
	if other.Lt != nil {
		c.Lt = other.Lt
	}
	if other.Lte != nil {
		c.Lte = other.Lte
	}
	if len(other.In) > 0 {
		c.In = append([]rdf.Term(nil), other.In...)
	}
	if len(other.NotIn) > 0 {
		c.NotIn = append([]rdf.Term(nil), other.NotIn...)
	}
	if other.StartsWith != "" {
		c.StartsWith = other.StartsWith
	}
	if other.EndsWith != "" {
		c.EndsWith = other.EndsWith
	}
	if other.Contains != "" {
		c.Contains = other.Contains
	}
	if other.Regex != "" {
		c.Regex = other.Regex
	}
	if other.IsNull != nil {
		v := *other.IsNull
		c.IsNull = &v
	}
	return c
}

// Match wraps a concrete term as a TermMatch.
func Match(t rdf.Term) TermMatch {
	return Concrete{Term: t}
}

// Pattern constrains any subset of a quint's identity fields. A nil
// field matches anything.
type Pattern struct {
	Graph     TermMatch
	Subject   TermMatch
	Predicate TermMatch
	Object    TermMatch
}

// FieldMatch returns the constraint on the named field, nil if unset.
func (p Pattern) FieldMatch(f Field) TermMatch {
	switch f {
	case FieldGraph:
		return p.Graph
	case FieldSubject:
		return p.Subject
	case FieldPredicate:
		return p.Predicate
	case FieldObject:
		return p.Object
	default:
		return nil
	}
}

// WithField returns a copy of p with the named field set.
func (p Pattern) WithField(f Field, m TermMatch) Pattern {
	switch f {
	case FieldGraph:
		p.Graph = m
	case FieldSubject:
		p.Subject = m
	case FieldPredicate:
		p.Predicate = m
	case FieldObject:
		p.Object = m
	}
	return p
}

// Empty reports whether no field is constrained. An empty pattern
// matches (and on delete, removes) every row.
func (p Pattern) Empty() bool {
	return p.Graph == nil && p.Subject == nil && p.Predicate == nil && p.Object == nil
}

// MatchPattern builds a pattern from optional concrete terms; nil
// arguments leave the field unconstrained. This is the shape the
// external evaluator's match primitive uses.
func MatchPattern(s, p, o, g rdf.Term) Pattern {
	var pat Pattern
	if s != nil {
		pat.Subject = Concrete{Term: s}
	}
	if p != nil {
		pat.Predicate = Concrete{Term: p}
	}
	if o != nil {
		pat.Object = Concrete{Term: o}
	}
	if g != nil {
		pat.Graph = Concrete{Term: g}
	}
	return pat
}
