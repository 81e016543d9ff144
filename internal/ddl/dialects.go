package ddl

import (
	"fmt"
	"strconv"
	"strings"
)

func question(int) string { return "?" }

// SQLite renders double-quoted identifiers and ? placeholders.
var SQLite = Dialect{
	Name:        "sqlite",
	Open:        `"`,
	Close:       `"`,
	IfNotExists: true,
	Placeholder: question,
	Types:       Types{Text: "TEXT", Integer: "INTEGER", Float: "REAL"},
}

// Postgres renders double-quoted identifiers and $n placeholders.
var Postgres = Dialect{
	Name:        "postgres",
	Open:        `"`,
	Close:       `"`,
	IfNotExists: true,
	Placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
	Types:       Types{Text: "TEXT", Integer: "BIGINT", Float: "DOUBLE PRECISION"},
}

// MySQL renders backtick identifiers and ? placeholders.
var MySQL = Dialect{
	Name:        "mysql",
	Open:        "`",
	Close:       "`",
	IfNotExists: true,
	Placeholder: question,
	Types:       Types{Text: "VARCHAR(64)", Integer: "BIGINT", Float: "DOUBLE"},
}

// MSSQL renders [bracket] identifiers, @pN placeholders and an OBJECT_ID
// guard in place of IF NOT EXISTS.
var MSSQL = Dialect{
	Name:  "mssql",
	Open:  "[",
	Close: "]",
	Guard: func(fqn string) string {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n", strings.ReplaceAll(fqn, "'", "''"))
	},
	Placeholder: func(i int) string { return "@p" + strconv.Itoa(i) },
	Types:       Types{Text: "NVARCHAR(64)", Integer: "BIGINT", Float: "FLOAT"},
}
