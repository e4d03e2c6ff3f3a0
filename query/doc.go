// Package query parses and executes SELECT statements over document tables.
//
// The language is a small SQL dialect:
//
//	SELECT <col-list> FROM <table> [alias]
//	  [ {LEFT|RIGHT|INNER|FULL} [OUTER] JOIN <table> [alias] ON a.x = b.y ]*
//	  [WHERE <expr>] [GROUP BY <field>, ...] [ORDER BY <field> [ASC|DESC]]
//	  [LIMIT <n>] [OFFSET <n>] [;]
//
// Tables are dotted paths into the loaded document: "data" is the whole
// document and "data.users" the array found under the users key. The
// column list is *, plain or aliased fields, qualified wildcards (u.*) and
// COUNT, SUM, MIN, MAX or AVG calls.
//
// # Basic Usage
//
//	q, err := query.Parse("SELECT name FROM data.users WHERE age > 30 ORDER BY name")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows, err := query.Execute(q, document.NewTree(root))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Execution Phases
//
// Execute always runs join, filter, group, order, paginate and project in
// that order, whatever order the clauses were written in.
//
// JOIN ON matching is loose: 1 matches "1", and null never matches. WHERE
// comparisons are strict: = never converts between numbers and strings.
//
// # Errors
//
// Tokenize, Parse and Execute return *Error values. Use IsSyntaxError,
// IsParseError and IsExecError to tell the failing stage apart.
package query
