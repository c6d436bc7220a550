package sqlgen

// Table is the single logical table every backend maintains.
const Table = "quints"

// TableDDL creates the quints table. The four identity columns form the
// primary key; vector is an optional JSON payload.
const TableDDL = `
CREATE TABLE IF NOT EXISTS quints (
	graph     TEXT NOT NULL,
	subject   TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object    TEXT NOT NULL,
	vector    TEXT NULL,
	PRIMARY KEY (graph, subject, predicate, object)
)`

// IndexDDL lists the six covering indexes. One rotation per access
// shape: any 1-to-4-bound-field pattern finds an index whose leading
// columns are exactly the bound fields, so no lookup needs a full scan.
var IndexDDL = []string{
	`CREATE INDEX IF NOT EXISTS quints_spog ON quints (subject, predicate, object, graph)`,
	`CREATE INDEX IF NOT EXISTS quints_ogsp ON quints (object, graph, subject, predicate)`,
	`CREATE INDEX IF NOT EXISTS quints_gspo ON quints (graph, subject, predicate, object)`,
	`CREATE INDEX IF NOT EXISTS quints_sopg ON quints (subject, object, predicate, graph)`,
	`CREATE INDEX IF NOT EXISTS quints_pogs ON quints (predicate, object, graph, subject)`,
	`CREATE INDEX IF NOT EXISTS quints_gpos ON quints (graph, predicate, object, subject)`,
}
