// Package localtab implements a local reference binding for the
// conformance harness: a miniature copy-on-write table engine and object
// store over a single SQLite database. It exists so the harness can be
// run and integration-tested without a cloud account; it is not a table
// format.
// Implements: prd002-local-binding; docs/ARCHITECTURE.md § Local Binding.
package localtab

// Schema DDL (prd002-local-binding R3). The objects table is the
// simulated object store; schemas/tables/files hold engine state. A
// table's visible rows are the union of its active files' rows.
const (
	createObjects = `CREATE TABLE objects (
    bucket TEXT NOT NULL,
    key TEXT NOT NULL,
    body BLOB NOT NULL,
    PRIMARY KEY (bucket, key)
);`

	createSchemas = `CREATE TABLE schemas (
    name TEXT PRIMARY KEY,
    location TEXT NOT NULL
);`

	createTables = `CREATE TABLE tables (
    table_id TEXT PRIMARY KEY,
    schema_name TEXT NOT NULL,
    name TEXT NOT NULL,
    location TEXT NOT NULL,
    partitioned INTEGER NOT NULL,
    UNIQUE (schema_name, name),
    FOREIGN KEY (schema_name) REFERENCES schemas(name)
);`

	createFiles = `CREATE TABLE files (
    file_id TEXT PRIMARY KEY,
    table_id TEXT NOT NULL,
    key TEXT NOT NULL,
    active INTEGER NOT NULL,
    rows_json TEXT NOT NULL,
    FOREIGN KEY (table_id) REFERENCES tables(table_id)
);`
)

var schemaDDL = []string{createObjects, createSchemas, createTables, createFiles}
