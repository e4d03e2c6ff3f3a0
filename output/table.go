package output

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/jsonxml2sql/document"
)

// TableFormatter outputs rows as an aligned text table
type TableFormatter struct {
	writer   io.Writer
	maxWidth int
}

// NewTableFormatter creates a table formatter. Cells wider than maxWidth
// display columns are truncated; 0 disables truncation.
func NewTableFormatter(w io.Writer, maxWidth int) *TableFormatter {
	return &TableFormatter{writer: w, maxWidth: maxWidth}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes rows as a table followed by a row count
func (t *TableFormatter) Format(rows []document.Row) error {
	columns := document.UniqueKeys(rows)

	if len(columns) > 0 {
		table := tablewriter.NewWriter(t.writer)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(t.truncateAll(columns))

		for _, row := range rows {
			record := make([]string, len(columns))
			for i, col := range columns {
				s, err := cellText(field(row, col))
				if err != nil {
					return err
				}
				record[i] = t.truncate(s)
			}
			table.Append(record)
		}
		table.Render()
	}

	noun := "rows"
	if len(rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(t.writer, "(%d %s)\n", len(rows), noun)
	return err
}

func (t *TableFormatter) truncate(s string) string {
	if t.maxWidth <= 0 {
		return s
	}
	return runewidth.Truncate(s, t.maxWidth, "…")
}

func (t *TableFormatter) truncateAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = t.truncate(s)
	}
	return out
}
