// Package config holds the command line configuration and its validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vegasq/jsonxml2sql/document"
	"github.com/vegasq/jsonxml2sql/output"
	"github.com/vegasq/jsonxml2sql/reader"
)

// DefaultQuery is run when no query is given
const DefaultQuery = "SELECT * FROM data"

// Config is everything the command needs to load, query and print a document
type Config struct {
	// Input is a file path, a glob pattern, or "-" for stdin
	Input string

	Query    string
	Format   string
	Mode     string
	Limit    int
	LogLevel string

	// MaxCellWidth truncates table cells, 0 for no limit
	MaxCellWidth int
	// SQLTable is the INSERT target for the sql format
	SQLTable string

	// ListTables prints the table catalog instead of running a query
	ListTables bool
	// Schema prints the inferred columns of SchemaPath instead of running a query
	Schema     bool
	SchemaPath string
}

// Default returns the configuration used when no flags are set
func Default() Config {
	return Config{
		Input:      "-",
		Format:     output.FormatTable,
		Mode:       string(reader.ModeAuto),
		LogLevel:   "warn",
		SQLTable:   output.DefaultTableName,
		SchemaPath: document.RootTable,
	}
}

// Validate checks flag values and flag combinations
func (c Config) Validate() error {
	var errs []error

	if c.Limit < 0 {
		errs = append(errs, fmt.Errorf("limit must be non-negative, got %d", c.Limit))
	}
	if c.MaxCellWidth < 0 {
		errs = append(errs, fmt.Errorf("max-width must be non-negative, got %d", c.MaxCellWidth))
	}
	if !validFormat(c.Format) {
		errs = append(errs, fmt.Errorf("unsupported format %q (supported: %s)", c.Format, strings.Join(output.Formats, ", ")))
	}
	if _, err := reader.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level: %w", err))
	}

	// Validate flag combinations
	if c.ListTables && c.Schema {
		errs = append(errs, errors.New("--tables and --schema cannot be used together"))
	}
	if (c.ListTables || c.Schema) && c.Query != "" {
		errs = append(errs, errors.New("--tables and --schema cannot be combined with a query"))
	}

	return errors.Join(errs...)
}

// QueryText returns the query to run, DefaultQuery when none was given
func (c Config) QueryText() string {
	if strings.TrimSpace(c.Query) == "" {
		return DefaultQuery
	}
	return c.Query
}

// ParsedMode returns the parse mode; call Validate first
func (c Config) ParsedMode() reader.Mode {
	m, err := reader.ParseMode(c.Mode)
	if err != nil {
		return reader.ModeAuto
	}
	return m
}

// FromStdin reports whether input is read from standard input
func (c Config) FromStdin() bool {
	return c.Input == "" || c.Input == "-"
}

func validFormat(name string) bool {
	for _, f := range output.Formats {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}
