package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableDDL(t *testing.T) {
	assert.Contains(t, TableDDL, "CREATE TABLE IF NOT EXISTS quints")
	assert.Contains(t, TableDDL, "PRIMARY KEY (graph, subject, predicate, object)")
	assert.Contains(t, TableDDL, "vector    TEXT NULL")
}

// TestIndexDDL tests that the six rotations exist and are idempotent to
// apply.
func TestIndexDDL(t *testing.T) {
	assert.Len(t, IndexDDL, 6)

	seen := map[string]bool{}
	for _, ddl := range IndexDDL {
		assert.Contains(t, ddl, "CREATE INDEX IF NOT EXISTS")
		assert.Contains(t, ddl, " ON quints (")

		// Every index covers all four identity columns.
		cols := ddl[strings.Index(ddl, "(")+1 : strings.Index(ddl, ")")]
		assert.Len(t, strings.Split(cols, ", "), 4, "index %q", ddl)
		assert.False(t, seen[cols], "duplicate rotation %q", cols)
		seen[cols] = true
	}
}
