package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// Output format names accepted by New
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTable = "table"
	FormatSQL   = "sql"
	FormatXLS   = "xls"
)

// Formats lists every format accepted by New
var Formats = []string{FormatTable, FormatJSON, FormatJSONL, FormatCSV, FormatSQL, FormatXLS}

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []document.Row) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// TablesFormatter is implemented by formatters that can write several
// tables into a single document, such as one worksheet per table.
type TablesFormatter interface {
	FormatTables(tables []document.Table) error
}

// Options tunes individual formatters
type Options struct {
	// TableName is the target table of INSERT statements
	TableName string
	// MaxWidth truncates table cells to this many columns, 0 for no limit
	MaxWidth int
}

// New creates the formatter for a format name
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatJSONL:
		return NewJSONLFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	case FormatTable:
		return NewTableFormatter(w, opts.MaxWidth), nil
	case FormatSQL:
		return NewSQLFormatter(w, opts.TableName), nil
	case FormatXLS:
		return NewXLSFormatter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (supported: %s)", format, strings.Join(Formats, ", "))
}

// WriteTables writes every table with f. Formatters implementing
// TablesFormatter write them in one go; others get a "# <path>" heading
// before each table and a blank line between tables.
func WriteTables(f Formatter, w io.Writer, tables []document.Table) error {
	if tf, ok := f.(TablesFormatter); ok {
		return tf.FormatTables(tables)
	}

	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", t.Path); err != nil {
			return err
		}
		if err := f.Format(t.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", t.Path, err)
		}
	}
	return nil
}

// cellText renders a value for text cells: nullish values are empty,
// containers are JSON and scalars use their plain string form
func cellText(v document.Value) (string, error) {
	switch v.Kind() {
	case document.KindUndefined, document.KindNull:
		return "", nil
	case document.KindSequence, document.KindMapping:
		data, err := v.MarshalJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return v.String(), nil
}

func field(row document.Row, col string) document.Value {
	v, _ := row.Get(col)
	return v
}
