package reader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// Mode selects how input text is interpreted
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeJSON    Mode = "json"
	ModeXML     Mode = "xml"
	ModeHTML    Mode = "html"
	ModeParquet Mode = "parquet"
)

// Modes lists every accepted mode, ModeAuto first
var Modes = []Mode{ModeAuto, ModeJSON, ModeXML, ModeHTML, ModeParquet}

var (
	// ErrUnrecognizedInput is returned when the input does not parse under the selected mode
	ErrUnrecognizedInput = errors.New("input is neither valid JSON nor valid XML")

	// ErrUnknownMode is returned by ParseMode for an unsupported mode name
	ErrUnknownMode = errors.New("unknown parse mode")
)

// ParseMode converts a mode name, case-insensitively. The empty string is ModeAuto.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return ModeAuto, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Parse converts raw input into a document tree and reports which format it
// was read as. ModeAuto tries Parquet (by its magic bytes), then JSON, then
// XML. HTML is only used when asked for explicitly.
func Parse(data []byte, mode Mode) (document.Value, Mode, error) {
	if mode == "" {
		mode = ModeAuto
	}

	if mode == ModeParquet || (mode == ModeAuto && IsParquet(data)) {
		v, err := ParseParquet(data)
		if err != nil {
			return document.Value{}, "", fmt.Errorf("%w: %v", ErrUnrecognizedInput, err)
		}
		return v, ModeParquet, nil
	}

	if mode == ModeJSON || mode == ModeAuto {
		if v, ok := ParseJSON(data); ok {
			return v, ModeJSON, nil
		}
	}
	if mode == ModeXML || mode == ModeAuto {
		if v, ok := ParseXML(data); ok {
			return v, ModeXML, nil
		}
	}
	if mode == ModeHTML {
		if v, ok := ParseHTML(data); ok {
			return v, ModeHTML, nil
		}
	}
	return document.Value{}, "", ErrUnrecognizedInput
}

// ReadFile reads, decompresses and parses the file at path
func ReadFile(path string, mode Mode) (document.Value, Mode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.Value{}, "", fmt.Errorf("failed to read file: %w", err)
	}

	data, err = Decompress(path, data)
	if err != nil {
		return document.Value{}, "", err
	}
	return Parse(data, mode)
}

// IsParquet reports whether data starts and ends with the Parquet magic bytes
func IsParquet(data []byte) bool {
	magic := []byte("PAR1")
	return len(data) >= 2*len(magic) &&
		bytes.HasPrefix(data, magic) &&
		bytes.HasSuffix(data, magic)
}
