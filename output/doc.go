// Package output provides formatters for query result rows.
//
// This package defines the Formatter interface and provides implementations
// for text tables, JSON, JSON Lines, CSV, SQL INSERT statements and Excel
// 2003 XML spreadsheets. All formatters work with []document.Row and keep
// each row's column order.
//
// # Basic Usage
//
//	formatter, err := output.New("csv", os.Stdout, output.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(rows); err != nil {
//	    log.Fatal(err)
//	}
//
// # Several Tables
//
// WriteTables writes a whole table catalog. Formatters that can hold several
// tables in one document (the spreadsheet) do so; the others write each table
// under a "# <path>" heading.
//
// # Type Handling
//
//   - JSON and JSON Lines keep nested objects and arrays
//   - CSV, table and spreadsheet cells hold nested values as JSON text
//   - null and missing values are empty cells, or NULL in SQL
//   - CSV prefixes cells starting with =, +, -, @ and similar with a quote
//     so spreadsheets do not run them as formulas
package output
