package output

import (
	"bytes"
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/vegasq/jsonxml2sql/document"
)

// JSONFormatter outputs rows as one indented JSON array
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON array formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as a JSON array, two-space indented
func (j *JSONFormatter) Format(rows []document.Row) error {
	items := make([]document.Value, len(rows))
	for i, row := range rows {
		items[i] = document.Mapping(row)
	}
	data, err := document.Sequence(items).MarshalJSON()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = j.writer.Write(buf.Bytes())
	return err
}

// JSONLFormatter outputs rows as JSON Lines format
type JSONLFormatter struct {
	writer io.Writer
}

// NewJSONLFormatter creates a new JSON Lines formatter
func NewJSONLFormatter(w io.Writer) *JSONLFormatter {
	return &JSONLFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONLFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line)
func (j *JSONLFormatter) Format(rows []document.Row) error {
	for _, row := range rows {
		data, err := row.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := j.writer.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}
