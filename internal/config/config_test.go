package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/jsonxml2sql/reader"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.FromStdin())
	assert.Equal(t, reader.ModeAuto, cfg.ParsedMode())
	assert.Equal(t, DefaultQuery, cfg.QueryText())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{
			name:   "csv upper case",
			modify: func(c *Config) { c.Format = "CSV" },
		},
		{
			name:   "xml mode",
			modify: func(c *Config) { c.Mode = "xml" },
		},
		{
			name:    "negative limit",
			modify:  func(c *Config) { c.Limit = -1 },
			wantErr: "limit must be non-negative, got -1",
		},
		{
			name:    "negative max width",
			modify:  func(c *Config) { c.MaxCellWidth = -3 },
			wantErr: "max-width must be non-negative",
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Format = "yaml" },
			wantErr: `unsupported format "yaml"`,
		},
		{
			name:    "unknown mode",
			modify:  func(c *Config) { c.Mode = "toml" },
			wantErr: "unknown parse mode",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "tables with schema",
			modify:  func(c *Config) { c.ListTables, c.Schema = true, true },
			wantErr: "--tables and --schema cannot be used together",
		},
		{
			name:    "schema with query",
			modify:  func(c *Config) { c.Schema, c.Query = true, "SELECT * FROM data" },
			wantErr: "cannot be combined with a query",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Limit = -1
	cfg.Format = "yaml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
	assert.Contains(t, err.Error(), "format")
}

func TestQueryText(t *testing.T) {
	cfg := Default()
	cfg.Query = "  "
	assert.Equal(t, DefaultQuery, cfg.QueryText())

	cfg.Query = "SELECT id FROM data"
	assert.Equal(t, "SELECT id FROM data", cfg.QueryText())
}

func TestFromStdin(t *testing.T) {
	cfg := Default()
	cfg.Input = "data.json"
	assert.False(t, cfg.FromStdin())
	cfg.Input = ""
	assert.True(t, cfg.FromStdin())
}
