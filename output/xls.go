package output

import (
	"bufio"
	"encoding/xml"
	"io"

	"github.com/vegasq/jsonxml2sql/document"
)

const (
	xlsHeader = `<?xml version="1.0"?>` + "\n" +
		`<?mso-application progid="Excel.Sheet"?>` + "\n" +
		`<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet" xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">`
	xlsFooter = "</Workbook>\n"

	// xlsDefaultSheet names the worksheet written by Format
	xlsDefaultSheet = "results"
)

// XLSFormatter outputs an Excel 2003 XML spreadsheet with one worksheet per table.
// Every cell is written as a string.
type XLSFormatter struct {
	writer io.Writer
}

// NewXLSFormatter creates a new spreadsheet formatter
func NewXLSFormatter(w io.Writer) *XLSFormatter {
	return &XLSFormatter{writer: w}
}

// SetOutput sets the output writer
func (x *XLSFormatter) SetOutput(w io.Writer) {
	x.writer = w
}

// Format writes rows as a workbook with a single "results" worksheet
func (x *XLSFormatter) Format(rows []document.Row) error {
	return x.FormatTables([]document.Table{{Path: xlsDefaultSheet, Rows: rows}})
}

// FormatTables writes one worksheet per table, named by its path
func (x *XLSFormatter) FormatTables(tables []document.Table) error {
	w := bufio.NewWriter(x.writer)
	w.WriteString(xlsHeader)

	for _, t := range tables {
		w.WriteString(`<Worksheet ss:Name="`)
		if err := xml.EscapeText(w, []byte(t.Path)); err != nil {
			return err
		}
		w.WriteString(`"><Table>`)

		columns := document.UniqueKeys(t.Rows)
		if err := writeXLSRow(w, columns); err != nil {
			return err
		}
		for _, row := range t.Rows {
			cells := make([]string, len(columns))
			for i, col := range columns {
				s, err := cellText(field(row, col))
				if err != nil {
					return err
				}
				cells[i] = s
			}
			if err := writeXLSRow(w, cells); err != nil {
				return err
			}
		}
		w.WriteString("</Table></Worksheet>")
	}

	w.WriteString(xlsFooter)
	return w.Flush()
}

func writeXLSRow(w *bufio.Writer, cells []string) error {
	w.WriteString("<Row>")
	for _, c := range cells {
		w.WriteString(`<Cell><Data ss:Type="String">`)
		if err := xml.EscapeText(w, []byte(c)); err != nil {
			return err
		}
		w.WriteString("</Data></Cell>")
	}
	w.WriteString("</Row>")
	return nil
}
