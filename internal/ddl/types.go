package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN) and an ordered list of columns. The FQN
// may be dotted ("schema.table"); each segment is quoted separately.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Types maps the pipeline's logical column types onto one SQL dialect.
type Types struct {
	Text    string
	Integer string
	Float   string
}

// Dialect captures what differs between SQL backends when rendering DDL and
// simple INSERT statements.
type Dialect struct {
	Name string

	// Open and Close quote an identifier segment; Close is doubled inside it.
	Open, Close string

	// IfNotExists renders CREATE TABLE IF NOT EXISTS. Dialects without that
	// clause set Guard instead.
	IfNotExists bool
	// Guard, when set, returns a prefix that skips creation of an existing
	// table (the raw, unquoted FQN is passed).
	Guard func(fqn string) string

	// Placeholder returns the bind parameter for 1-based position i.
	Placeholder func(i int) string

	Types Types
}
