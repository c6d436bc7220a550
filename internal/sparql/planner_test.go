package sparql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undefinedsco/quintstore/internal/quint"
	"github.com/undefinedsco/quintstore/internal/rdf"
	"github.com/undefinedsco/quintstore/internal/store"
)

type fakeEvaluator struct {
	called  bool
	lastQry string
	result  *Result
	err     error
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, query string) (*Result, error) {
	f.called = true
	f.lastQry = query
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &Result{Form: FormSelect}, nil
}

func plannerStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New("sqlite::memory:")
	require.NoError(t, err)
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPlanner(t *testing.T, s *store.Store) {
	t.Helper()
	name := rdf.IRI("http://ex.org/name")
	age := rdf.IRI("http://ex.org/age")
	g := rdf.IRI("http://ex.org/g")
	require.NoError(t, s.MultiPut(context.Background(), []quint.Quint{
		{Graph: g, Subject: rdf.IRI("http://ex.org/alice"), Predicate: name, Object: rdf.NewLiteral("Alice")},
		{Graph: g, Subject: rdf.IRI("http://ex.org/alice"), Predicate: age, Object: rdf.NewInteger(30)},
		{Graph: g, Subject: rdf.IRI("http://ex.org/bob"), Predicate: name, Object: rdf.NewLiteral("Bob")},
		{Graph: g, Subject: rdf.IRI("http://ex.org/bob"), Predicate: age, Object: rdf.NewInteger(45)},
	}))
}

func TestPlanner_SimpleSelect(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	p := NewPlanner(s)

	res, err := p.Query(context.Background(),
		`SELECT ?s ?name WHERE { ?s <http://ex.org/name> ?name }`)
	require.NoError(t, err)

	assert.Equal(t, FormSelect, res.Form)
	assert.False(t, res.Delegated)
	require.Len(t, res.Bindings, 2)

	names := map[string]bool{}
	for _, b := range res.Bindings {
		require.Contains(t, b, "s")
		require.Contains(t, b, "name")
		names[b["name"].Value()] = true
	}
	assert.True(t, names["Alice"])
	assert.True(t, names["Bob"])
}

// TestPlanner_Projection tests that only projected variables appear in
// the bindings.
func TestPlanner_Projection(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	p := NewPlanner(s)

	res, err := p.Query(context.Background(),
		`SELECT ?name WHERE { ?s <http://ex.org/name> ?name }`)
	require.NoError(t, err)

	for _, b := range res.Bindings {
		assert.Contains(t, b, "name")
		assert.NotContains(t, b, "s")
	}
}

func TestPlanner_Ask(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	p := NewPlanner(s)
	ctx := context.Background()

	res, err := p.Query(ctx, `ASK { ?s <http://ex.org/name> "Alice" }`)
	require.NoError(t, err)
	assert.Equal(t, FormAsk, res.Form)
	assert.True(t, res.Bool)

	res, err = p.Query(ctx, `ASK { ?s <http://ex.org/name> "Nobody" }`)
	require.NoError(t, err)
	assert.False(t, res.Bool)
}

func TestPlanner_Distinct(t *testing.T) {
	s := plannerStore(t)
	p := NewPlanner(s)
	ctx := context.Background()

	name := rdf.IRI("http://ex.org/name")
	require.NoError(t, s.MultiPut(ctx, []quint.Quint{
		{Graph: rdf.IRI("g"), Subject: rdf.IRI("s1"), Predicate: name, Object: rdf.NewLiteral("Twin")},
		{Graph: rdf.IRI("g"), Subject: rdf.IRI("s2"), Predicate: name, Object: rdf.NewLiteral("Twin")},
	}))

	res, err := p.Query(ctx, `SELECT DISTINCT ?name WHERE { ?s <http://ex.org/name> ?name }`)
	require.NoError(t, err)
	assert.Len(t, res.Bindings, 1)

	// REDUCED may dedupe, and here does.
	res, err = p.Query(ctx, `SELECT REDUCED ?name WHERE { ?s <http://ex.org/name> ?name }`)
	require.NoError(t, err)
	assert.Len(t, res.Bindings, 1)
}

func TestPlanner_OrderLimitOffset(t *testing.T) {
	s := plannerStore(t)
	p := NewPlanner(s)
	ctx := context.Background()

	value := rdf.IRI("http://ex.org/value")
	var batch []quint.Quint
	for i := int64(1); i <= 5; i++ {
		batch = append(batch, quint.Quint{
			Graph:     rdf.IRI("g"),
			Subject:   rdf.IRI("s"),
			Predicate: value,
			Object:    rdf.NewInteger(i),
		})
	}
	require.NoError(t, s.MultiPut(ctx, batch))

	res, err := p.Query(ctx,
		`SELECT ?o WHERE { ?s <http://ex.org/value> ?o } ORDER BY DESC(?o) LIMIT 2`)
	require.NoError(t, err)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "5", res.Bindings[0]["o"].Value())
	assert.Equal(t, "4", res.Bindings[1]["o"].Value())

	res, err = p.Query(ctx,
		`SELECT ?o WHERE { ?s <http://ex.org/value> ?o } ORDER BY ?o LIMIT 2 OFFSET 1`)
	require.NoError(t, err)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "2", res.Bindings[0]["o"].Value())
	assert.Equal(t, "3", res.Bindings[1]["o"].Value())
}

func TestPlanner_GraphScope(t *testing.T) {
	s := plannerStore(t)
	p := NewPlanner(s)
	ctx := context.Background()

	name := rdf.IRI("http://ex.org/name")
	require.NoError(t, s.MultiPut(ctx, []quint.Quint{
		{Graph: rdf.IRI("http://ex.org/g1"), Subject: rdf.IRI("s1"), Predicate: name, Object: rdf.NewLiteral("in g1")},
		{Graph: rdf.IRI("http://ex.org/g2"), Subject: rdf.IRI("s2"), Predicate: name, Object: rdf.NewLiteral("in g2")},
	}))

	res, err := p.Query(ctx,
		`SELECT ?n WHERE { GRAPH <http://ex.org/g1> { ?s <http://ex.org/name> ?n } }`)
	require.NoError(t, err)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "in g1", res.Bindings[0]["n"].Value())

	// A graph variable binds to the graph term of each row.
	res, err = p.Query(ctx,
		`SELECT ?g ?n WHERE { GRAPH ?g { ?s <http://ex.org/name> ?n } }`)
	require.NoError(t, err)
	require.Len(t, res.Bindings, 2)
	for _, b := range res.Bindings {
		assert.Contains(t, b, "g")
	}
}

// TestPlanner_Delegation tests that out-of-model queries go to the
// evaluator and carry the Delegated flag.
func TestPlanner_Delegation(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	eval := &fakeEvaluator{}
	p := NewPlanner(s, WithEvaluator(eval))
	ctx := context.Background()

	queries := []string{
		`SELECT ?o WHERE { ?s <p> ?o FILTER (?o > 5) }`,
		`SELECT * WHERE { ?s <p> ?o OPTIONAL { ?s <q> ?x } }`,
		`SELECT * WHERE { { ?s <p> ?o } UNION { ?s <q> ?o } }`,
		`SELECT * WHERE { ?s <p> ?o . ?s <q> ?x }`,
		`CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }`,
		`INSERT DATA { <s> <p> <o> }`,
		`this is not sparql at all`,
	}
	for _, query := range queries {
		eval.called = false
		res, err := p.Query(ctx, query)
		require.NoError(t, err, "query %q", query)
		assert.True(t, eval.called, "query %q should delegate", query)
		assert.True(t, res.Delegated, "query %q", query)
	}
}

func TestPlanner_DelegationWithoutEvaluator(t *testing.T) {
	s := plannerStore(t)
	p := NewPlanner(s)

	_, err := p.Query(context.Background(),
		`SELECT ?o WHERE { ?s <p> ?o FILTER (?o > 5) }`)
	assert.ErrorContains(t, err, "general evaluator")
}

// TestPlanner_NoDelegationWhenEligible tests that an eligible query
// never touches the evaluator.
func TestPlanner_NoDelegationWhenEligible(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	eval := &fakeEvaluator{}
	p := NewPlanner(s, WithEvaluator(eval))

	_, err := p.Query(context.Background(),
		`SELECT ?s WHERE { ?s <http://ex.org/name> ?n }`)
	require.NoError(t, err)
	assert.False(t, eval.called)
}

func TestPlanner_Explain(t *testing.T) {
	s := plannerStore(t)
	p := NewPlanner(s)

	params, ok := p.Explain(`SELECT ?s WHERE { ?s <http://ex.org/p> ?o } LIMIT 3`)
	require.True(t, ok)
	assert.Equal(t, []string{"s"}, params.Vars)
	assert.Equal(t, 3, params.Limit)
	assert.True(t, params.HasLimit)
	assert.Equal(t, rdf.IRI("http://ex.org/p"), params.Triple.Predicate.Term)

	ineligible := []string{
		`SELECT ?o WHERE { ?s <p> ?o FILTER (?o > 5) }`,
		`SELECT * WHERE { ?s <p> ?o OPTIONAL { ?s <q> ?x } }`,
		`SELECT * WHERE { { ?s <p> ?o } UNION { ?s <q> ?o } }`,
		`SELECT * WHERE { ?s <p> ?o MINUS { ?s <q> ?o } }`,
		`SELECT * WHERE { ?s <p> ?o . ?s <q> ?x }`,
		`SELECT ?o WHERE { ?s <p> ?o } ORDER BY DESC(STR(?o))`,
		`SELECT ?o WHERE { ?s <p> ?o } ORDER BY ?s ?o`,
		`CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }`,
		`not sparql`,
	}
	for _, query := range ineligible {
		_, ok := p.Explain(query)
		assert.False(t, ok, "query %q must not be eligible", query)
	}
}

// TestPlanner_PushdownFilters tests externally supplied operator sets
// narrowing the store pattern.
func TestPlanner_PushdownFilters(t *testing.T) {
	s := plannerStore(t)
	seedPlanner(t, s)
	p := NewPlanner(s)

	res, err := p.QueryWithFilters(context.Background(),
		`SELECT ?s ?age WHERE { ?s <http://ex.org/age> ?age }`,
		map[string]*quint.Operators{
			"age": {Gt: rdf.NewInteger(40)},
		})
	require.NoError(t, err)

	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "http://ex.org/bob", res.Bindings[0]["s"].Value())
}

// TestPlanner_SecurityFilter tests tenant scoping applied to every
// pushed-down query.
func TestPlanner_SecurityFilter(t *testing.T) {
	s := plannerStore(t)
	ctx := context.Background()

	name := rdf.IRI("http://ex.org/name")
	require.NoError(t, s.MultiPut(ctx, []quint.Quint{
		{Graph: rdf.IRI("https://tenant.example/g1"), Subject: rdf.IRI("s1"), Predicate: name, Object: rdf.NewLiteral("mine")},
		{Graph: rdf.IRI("https://other.example/g1"), Subject: rdf.IRI("s2"), Predicate: name, Object: rdf.NewLiteral("theirs")},
	}))

	p := NewPlanner(s, WithSecurityFilter(quint.Pattern{
		Graph: &quint.Operators{StartsWith: "https://tenant.example/"},
	}))

	res, err := p.Query(ctx, `SELECT ?n WHERE { ?s <http://ex.org/name> ?n }`)
	require.NoError(t, err)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, "mine", res.Bindings[0]["n"].Value())
}
