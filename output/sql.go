package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// DefaultTableName is the INSERT target when none is configured
const DefaultTableName = "my_table"

// SQLFormatter outputs rows as a single multi-row INSERT statement
type SQLFormatter struct {
	writer io.Writer
	table  string
}

// NewSQLFormatter creates an INSERT statement formatter for table
func NewSQLFormatter(w io.Writer, table string) *SQLFormatter {
	if table == "" {
		table = DefaultTableName
	}
	return &SQLFormatter{writer: w, table: table}
}

// SetOutput sets the output writer
func (s *SQLFormatter) SetOutput(w io.Writer) {
	s.writer = w
}

// Format writes
//
//	INSERT INTO table (a, b) VALUES
//	(1, 'x'),
//	(2, NULL);
//
// Columns are sorted by name. Nothing is written for no rows.
func (s *SQLFormatter) Format(rows []document.Row) error {
	if len(rows) == 0 {
		return nil
	}

	columns := document.UniqueKeys(rows)
	sort.Strings(columns)

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES\n", s.table, strings.Join(columns, ", "))
	for i, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			v, err := sqlLiteral(field(row, col))
			if err != nil {
				return err
			}
			values[j] = v
		}
		b.WriteString("(" + strings.Join(values, ", ") + ")")
		if i < len(rows)-1 {
			b.WriteString(",\n")
		}
	}
	b.WriteString(";\n")

	_, err := io.WriteString(s.writer, b.String())
	return err
}

// sqlLiteral renders one value: NULL, TRUE/FALSE, plain numbers, and
// quoted strings with single quotes doubled. Containers are quoted JSON.
// Non-finite numbers are NULL.
func sqlLiteral(v document.Value) (string, error) {
	switch v.Kind() {
	case document.KindUndefined, document.KindNull:
		return "NULL", nil
	case document.KindBool:
		if v.Truthy() {
			return "TRUE", nil
		}
		return "FALSE", nil
	case document.KindNumber:
		data, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		if string(data) == "null" {
			return "NULL", nil
		}
		return string(data), nil
	}

	s, err := cellText(v)
	if err != nil {
		return "", err
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}
