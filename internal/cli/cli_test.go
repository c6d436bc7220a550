package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undefinedsco/quintstore/internal/rdf"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func tempEndpoint(t *testing.T) string {
	t.Helper()
	return "sqlite:" + filepath.Join(t.TempDir(), "test.db")
}

func writeQuads(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quads.nq")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))
	return path
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "stats", "-e", tempEndpoint(t))
	assert.ErrorContains(t, err, "invalid format")
}

func TestStatsCommand_Empty(t *testing.T) {
	out, err := execute(t, "stats", "-e", tempEndpoint(t))
	require.NoError(t, err)
	assert.Contains(t, out, "quints:       0")
}

func TestStatsCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "stats", "-e", tempEndpoint(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"quints": 0`)
}

func TestStatsCommand_NoEndpoint(t *testing.T) {
	_, err := execute(t, "stats")
	assert.ErrorContains(t, err, "no endpoint")
}

func TestLoadCommand(t *testing.T) {
	endpoint := tempEndpoint(t)
	quads := writeQuads(t, `
# people
<http://ex.org/alice> <http://ex.org/name> "Alice" <http://ex.org/g> .
<http://ex.org/alice> <http://ex.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> <http://ex.org/g> .
<http://ex.org/bob> <http://ex.org/name> "Bob"@en <http://ex.org/g> .
`)

	out, err := execute(t, "load", quads, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 3 quints")

	out, err = execute(t, "stats", "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "quints:       3")
}

func TestLoadCommand_BadFile(t *testing.T) {
	_, err := execute(t, "load", filepath.Join(t.TempDir(), "missing.nq"), "-e", tempEndpoint(t))
	assert.Error(t, err)

	short := writeQuads(t, `<s> <p> <o>`)
	_, err = execute(t, "load", short, "-e", tempEndpoint(t))
	assert.ErrorContains(t, err, "expected 4 terms")
}

func TestQueryCommand(t *testing.T) {
	endpoint := tempEndpoint(t)
	quads := writeQuads(t, `<http://ex.org/alice> <http://ex.org/name> "Alice" <http://ex.org/g> .`)
	_, err := execute(t, "load", quads, "-e", endpoint)
	require.NoError(t, err)

	out, err := execute(t, "query",
		`SELECT ?name WHERE { ?s <http://ex.org/name> ?name }`, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, `?name="Alice"`)
	assert.Contains(t, out, "(1 results)")

	out, err = execute(t, "query",
		`ASK { ?s <http://ex.org/name> "Alice" }`, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "true")
}

func TestQueryCommand_Explain(t *testing.T) {
	endpoint := tempEndpoint(t)

	out, err := execute(t, "query", "--explain",
		`SELECT ?s WHERE { ?s <http://ex.org/p> ?o } LIMIT 5`, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "push-down eligible")

	out, err = execute(t, "query", "--explain",
		`SELECT * WHERE { { ?s <p> ?o } UNION { ?s <q> ?o } }`, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "not eligible")
}

func TestQueryCommand_FromFile(t *testing.T) {
	endpoint := tempEndpoint(t)
	queryPath := filepath.Join(t.TempDir(), "q.rq")
	require.NoError(t, os.WriteFile(queryPath,
		[]byte(`ASK { ?s ?p ?o }`), 0o600))

	out, err := execute(t, "query", "-f", queryPath, "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "false")
}

func TestQueryCommand_NoQuery(t *testing.T) {
	_, err := execute(t, "query", "-e", tempEndpoint(t))
	assert.ErrorContains(t, err, "pass a query string or --file")
}

func TestClearCommand(t *testing.T) {
	endpoint := tempEndpoint(t)
	quads := writeQuads(t, `<s> <p> "v" <g> .`)
	_, err := execute(t, "load", quads, "-e", endpoint)
	require.NoError(t, err)

	_, err = execute(t, "clear", "-e", endpoint)
	assert.ErrorContains(t, err, "--force")

	out, err := execute(t, "clear", "--force", "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "store cleared")

	out, err = execute(t, "stats", "-e", endpoint)
	require.NoError(t, err)
	assert.Contains(t, out, "quints:       0")
}

func TestParseTerm(t *testing.T) {
	assert.Equal(t, rdf.IRI("http://ex.org/a"), parseTerm("<http://ex.org/a>"))
	assert.Equal(t, rdf.BlankNode("b1"), parseTerm("_:b1"))
	assert.Equal(t, rdf.IRI("bare"), parseTerm("bare"))
	assert.True(t, rdf.NewLiteral("hi").Equal(parseTerm(`"hi"`)))
	assert.True(t, rdf.NewLangLiteral("hi", "en").Equal(parseTerm(`"hi"@en`)))
	assert.True(t, rdf.NewTypedLiteral("5", rdf.XSDInteger).Equal(
		parseTerm(`"5"^^<http://www.w3.org/2001/XMLSchema#integer>`)))
	assert.True(t, rdf.NewLiteral(`with "quotes"`).Equal(parseTerm(`"with \"quotes\""`)))
}

func TestSplitTerms(t *testing.T) {
	terms, err := splitTerms(`<s> <p> "two words" <g>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"<s>", "<p>", `"two words"`, "<g>"}, terms)

	terms, err = splitTerms(`<s> <p> "esc \" quote" <g>`)
	require.NoError(t, err)
	assert.Len(t, terms, 4)

	_, err = splitTerms(`<s> <p> "unterminated`)
	assert.ErrorContains(t, err, "unterminated")
}
