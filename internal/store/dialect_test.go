package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	d, err := ParseEndpoint("sqlite:/var/data/pod.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	assert.Equal(t, "/var/data/pod.db", d.DSN())

	d, err = ParseEndpoint("sqlite::memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", d.DSN())

	d, err = ParseEndpoint("/var/data/pod.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name(), "bare paths keep working")

	d, err = ParseEndpoint("postgres://u:p@host/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
	assert.Equal(t, "postgres://u:p@host/db", d.DSN())

	d, err = ParseEndpoint("postgresql://u:p@host/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = ParseEndpoint("")
	assert.Error(t, err)
}

func TestPostgresRebind(t *testing.T) {
	d := &postgresDialect{}

	assert.Equal(t, "SELECT 1", d.Rebind("SELECT 1"))
	assert.Equal(t,
		"SELECT * FROM quints WHERE subject = $1 AND object IN ($2, $3)",
		d.Rebind("SELECT * FROM quints WHERE subject = ? AND object IN (?, ?)"))
}

// TestPostgresEncodeValue tests the NUL substitution round trip and its
// order preservation, which the range scans depend on.
func TestPostgresEncodeValue(t *testing.T) {
	d := &postgresDialect{}

	raw := "N\x00550050000000000000000\x00dt\x005"
	enc := d.EncodeValue(raw)
	assert.NotContains(t, enc, "\x00")
	assert.Equal(t, raw, d.DecodeValue(enc))

	a := d.EncodeValue("N\x00100")
	b := d.EncodeValue("N\x00200")
	assert.Less(t, a, b)
}

func TestLimitOffset(t *testing.T) {
	sqlite := &sqliteDialect{}
	pg := &postgresDialect{}

	clause, params := sqlite.LimitOffset(0, 0)
	assert.Empty(t, clause)
	assert.Empty(t, params)

	clause, params = sqlite.LimitOffset(10, 5)
	assert.Equal(t, " LIMIT ? OFFSET ?", clause)
	assert.Equal(t, []any{10, 5}, params)

	// SQLite cannot express OFFSET without LIMIT.
	clause, params = sqlite.LimitOffset(0, 5)
	assert.Equal(t, " LIMIT -1 OFFSET ?", clause)
	assert.Equal(t, []any{5}, params)

	clause, params = pg.LimitOffset(0, 5)
	assert.Equal(t, " OFFSET ?", clause)
	assert.Equal(t, []any{5}, params)
}
