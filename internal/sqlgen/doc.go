// Package sqlgen turns quint patterns into parameterized SQL.
//
// All values travel as bound parameters, never interpolated. The only
// interpolated strings are identifiers (table name, column names, join
// aliases), and those are drawn from fixed internal sets - caller input
// never reaches an identifier position.
//
// Generated fragments use ? placeholders throughout; the Postgres
// dialect rewrites them to $n mechanically before execution.
package sqlgen
