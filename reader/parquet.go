package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/jsonxml2sql/document"
)

// maxGlobFiles caps how many files one glob pattern may expand to
const maxGlobFiles = 1000

// FileColumn is the field ReadGlob adds to every row with its source path
const FileColumn = "_file"

// ParquetReader reads the rows of a Parquet file.
type ParquetReader struct {
	pqFile *parquet.File
}

// NewParquetReader opens Parquet data of the given size.
func NewParquetReader(r io.ReaderAt, size int64) (*ParquetReader, error) {
	pqFile, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	return &ParquetReader{pqFile: pqFile}, nil
}

// Schema returns the parquet file schema.
func (r *ParquetReader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// Columns returns the top-level column names in schema order
func (r *ParquetReader) Columns() []string {
	fields := r.pqFile.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// ReadAll reads every row into memory. Row fields follow the schema order.
func (r *ParquetReader) ReadAll() ([]document.Value, error) {
	columns := r.Columns()
	rows := make([]document.Value, 0, r.pqFile.NumRows())

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		row := make(map[string]interface{})
		err := reader.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		obj := document.NewObject()
		for _, col := range columns {
			if v, ok := row[col]; ok {
				obj.Set(col, document.FromGo(v))
			}
		}
		rows = append(rows, document.Mapping(obj))
	}

	return rows, nil
}

// ParseParquet decodes an in-memory Parquet file into a sequence of row mappings
func ParseParquet(data []byte) (document.Value, error) {
	r, err := NewParquetReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return document.Value{}, err
	}
	rows, err := r.ReadAll()
	if err != nil {
		return document.Value{}, err
	}
	return document.Sequence(rows), nil
}

// ReadGlob reads every file matching pattern and concatenates their rows.
// Each file must parse to a sequence. Mapping rows are tagged with FileColumn.
// A pattern without wildcards is read like ReadFile and left untagged.
func ReadGlob(pattern string, mode Mode) (document.Value, Mode, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return ReadFile(pattern, mode)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return document.Value{}, "", fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return document.Value{}, "", fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxGlobFiles {
		return document.Value{}, "", fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxGlobFiles)
	}

	var (
		all      []document.Value
		detected Mode
	)
	for _, path := range matches {
		v, m, err := ReadFile(path, mode)
		if err != nil {
			return document.Value{}, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		items, ok := v.AsSequence()
		if !ok {
			return document.Value{}, "", fmt.Errorf("cannot combine %s: top-level value is %s, not an array", path, v.Kind())
		}
		if detected == "" {
			detected = m
		}

		for _, item := range items {
			if obj, ok := item.AsMapping(); ok {
				obj.Set(FileColumn, document.String(path))
			}
			all = append(all, item)
		}
	}

	return document.Sequence(all), detected, nil
}
