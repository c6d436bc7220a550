package quint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

func TestOperators_Empty(t *testing.T) {
	assert.True(t, (&Operators{}).Empty())
	assert.False(t, (&Operators{Eq: rdf.IRI("x")}).Empty())
	assert.False(t, (&Operators{StartsWith: "http://"}).Empty())

	isNull := false
	assert.False(t, (&Operators{IsNull: &isNull}).Empty(),
		"an explicit false IsNull is still a constraint")
}

func TestOperators_Clone(t *testing.T) {
	isNull := true
	o := &Operators{
		Gt:     rdf.NewInteger(5),
		In:     []rdf.Term{rdf.IRI("a"), rdf.IRI("b")},
		IsNull: &isNull,
	}

	c := o.Clone()
	require.Equal(t, o, c)

	// Mutating the clone must not reach back into the original.
	c.In[0] = rdf.IRI("z")
	*c.IsNull = false
	assert.Equal(t, rdf.IRI("a"), o.In[0])
	assert.True(t, *o.IsNull)
}

// TestOperators_Merge tests per-key last-write-wins merging.
func TestOperators_Merge(t *testing.T) {
	base := &Operators{
		Gt:         rdf.NewInteger(5),
		Lt:         rdf.NewInteger(100),
		StartsWith: "http://a/",
	}
	overlay := &Operators{
		Lt:    rdf.NewInteger(10),
		NotIn: []rdf.Term{rdf.IRI("x")},
	}

	merged := base.Merge(overlay)

	assert.Equal(t, rdf.NewInteger(5), merged.Gt, "unkeyed fields survive")
	assert.Equal(t, rdf.NewInteger(10), merged.Lt, "overlay wins on shared keys")
	assert.Equal(t, "http://a/", merged.StartsWith)
	assert.Equal(t, []rdf.Term{rdf.IRI("x")}, merged.NotIn)

	// Merge never mutates its receiver.
	assert.Equal(t, rdf.NewInteger(100), base.Lt)
}

func TestOperators_MergeEmpty(t *testing.T) {
	base := &Operators{Contains: "needle"}
	merged := base.Merge(&Operators{})
	assert.Equal(t, base, merged)
}

func TestPattern_FieldMatch(t *testing.T) {
	p := Pattern{
		Subject: Match(rdf.IRI("s")),
		Object:  &Operators{Gt: rdf.NewInteger(1)},
	}

	assert.Equal(t, Concrete{Term: rdf.IRI("s")}, p.FieldMatch(FieldSubject))
	assert.Nil(t, p.FieldMatch(FieldGraph))
	assert.Nil(t, p.FieldMatch(FieldPredicate))
	assert.NotNil(t, p.FieldMatch(FieldObject))
}

func TestPattern_WithField(t *testing.T) {
	p := Pattern{}
	q := p.WithField(FieldGraph, Match(rdf.IRI("g")))

	assert.True(t, p.Empty(), "WithField copies, never mutates")
	assert.False(t, q.Empty())
	assert.Equal(t, Concrete{Term: rdf.IRI("g")}, q.Graph)
}

func TestMatchPattern(t *testing.T) {
	p := MatchPattern(rdf.IRI("s"), nil, rdf.NewInteger(1), nil)

	assert.Equal(t, Concrete{Term: rdf.IRI("s")}, p.Subject)
	assert.Nil(t, p.Predicate)
	assert.Equal(t, Concrete{Term: rdf.NewInteger(1)}, p.Object)
	assert.Nil(t, p.Graph)

	assert.True(t, MatchPattern(nil, nil, nil, nil).Empty())
}

func TestFields(t *testing.T) {
	assert.Equal(t, []Field{FieldGraph, FieldSubject, FieldPredicate, FieldObject}, Fields)
	for _, f := range Fields {
		assert.True(t, f.Valid())
	}
	assert.False(t, Field("vector").Valid())
	assert.False(t, Field("").Valid())
}

func TestQuint_SameKey(t *testing.T) {
	a := Quint{
		Graph:     rdf.IRI("g"),
		Subject:   rdf.IRI("s"),
		Predicate: rdf.IRI("p"),
		Object:    rdf.NewLiteral("o"),
	}
	b := a
	b.Vector = []float64{1, 2, 3}
	assert.True(t, a.SameKey(b), "vector is not part of the identity key")

	c := a
	c.Object = rdf.NewLiteral("other")
	assert.False(t, a.SameKey(c))
}
