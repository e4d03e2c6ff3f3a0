package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/vegasq/jsonxml2sql/document"
	"github.com/vegasq/jsonxml2sql/internal/config"
	"github.com/vegasq/jsonxml2sql/internal/logging"
	"github.com/vegasq/jsonxml2sql/output"
	"github.com/vegasq/jsonxml2sql/query"
	"github.com/vegasq/jsonxml2sql/reader"
	"github.com/vegasq/jsonxml2sql/session"
)

func main() {
	cmd := newCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	def := config.Default()

	return &cli.Command{
		Name:      "jsonxml2sql",
		Usage:     "query JSON, XML, HTML and Parquet documents with SQL",
		ArgsUsage: "[file|glob|-]",
		Description: "Reads a document (stdin when no file is given), exposes its arrays as tables\n" +
			"and runs a SELECT query against them.\n\n" +
			"Examples:\n" +
			"  jsonxml2sql data.json\n" +
			"  jsonxml2sql -q \"SELECT name FROM data.users WHERE age > 30\" users.xml\n" +
			"  jsonxml2sql -f csv -q \"SELECT u.name, o.total FROM data.users u JOIN data.orders o ON u.id = o.userId\" shop.json\n" +
			"  jsonxml2sql --tables data.json.gz\n" +
			"  cat page.html | jsonxml2sql -m html -f json -",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "query to run (default: " + config.DefaultQuery + ")",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   def.Format,
				Usage:   "output format: table, json, jsonl, csv, sql, xls",
				Sources: cli.EnvVars("JX2SQL_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Value:   def.Mode,
				Usage:   "input format: auto, json, xml, html, parquet",
				Sources: cli.EnvVars("JX2SQL_MODE"),
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "limit number of rows printed (0 = unlimited)",
			},
			&cli.BoolFlag{
				Name:  "tables",
				Usage: "list the tables found in the document",
			},
			&cli.BoolFlag{
				Name:    "schema",
				Aliases: []string{"describe"},
				Usage:   "show the inferred columns of --path instead of data",
			},
			&cli.StringFlag{
				Name:  "path",
				Value: def.SchemaPath,
				Usage: "table path used by --schema",
			},
			&cli.StringFlag{
				Name:  "sql-table",
				Value: def.SQLTable,
				Usage: "table name used in INSERT statements of the sql format",
			},
			&cli.IntFlag{
				Name:  "max-width",
				Usage: "truncate table cells to this many columns (0 = unlimited)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   def.LogLevel,
				Usage:   "log level: debug, info, warn, error",
				Sources: cli.EnvVars("JX2SQL_LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.Config{
				Input:        def.Input,
				Query:        cmd.String("query"),
				Format:       cmd.String("format"),
				Mode:         cmd.String("mode"),
				Limit:        int(cmd.Int("limit")),
				LogLevel:     cmd.String("log-level"),
				MaxCellWidth: int(cmd.Int("max-width")),
				SQLTable:     cmd.String("sql-table"),
				ListTables:   cmd.Bool("tables"),
				Schema:       cmd.Bool("schema"),
				SchemaPath:   cmd.String("path"),
			}
			if cmd.Args().Len() > 1 {
				return fmt.Errorf("expected at most one input, got %d", cmd.Args().Len())
			}
			if cmd.Args().Present() {
				cfg.Input = cmd.Args().First()
			}
			return run(cfg, cmd.Reader, cmd.Writer, cmd.ErrWriter)
		},
	}
}

func run(cfg config.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	sess := session.New(session.WithLogger(log))

	if err := load(sess, cfg, stdin); err != nil {
		return err
	}

	formatter, err := output.New(cfg.Format, stdout, output.Options{
		TableName: cfg.SQLTable,
		MaxWidth:  cfg.MaxCellWidth,
	})
	if err != nil {
		return err
	}

	switch {
	case cfg.ListTables:
		return formatter.Format(catalogRows(sess.Tables()))
	case cfg.Schema:
		cols, err := sess.Describe(cfg.SchemaPath)
		if err != nil {
			return err
		}
		return formatter.Format(schemaRows(cols))
	}

	text := cfg.QueryText()
	q, err := query.Parse(text)
	if err != nil {
		return err
	}

	// A bare SELECT * FROM data shows every table when there is more than one
	if q.SelectsWholeDocument() && cfg.Limit == 0 {
		if tables := sess.Tables(); len(tables) > 1 {
			return output.WriteTables(formatter, stdout, tables)
		}
	}

	rows, err := sess.Run(text)
	if err != nil {
		return err
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}
	return formatter.Format(rows)
}

func load(sess *session.Session, cfg config.Config, stdin io.Reader) error {
	mode := cfg.ParsedMode()

	if !cfg.FromStdin() {
		_, err := sess.LoadFile(cfg.Input, mode)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file '%s' not found", cfg.Input)
		}
		return err
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	data, err = reader.Decompress("", data)
	if err != nil {
		return err
	}
	_, err = sess.Load(data, mode)
	return err
}

// catalogRows describes each table as a row of path, row count and columns
func catalogRows(tables []document.Table) []document.Row {
	rows := make([]document.Row, 0, len(tables))
	for _, t := range tables {
		cols := t.Columns()
		names := make([]document.Value, len(cols))
		for i, c := range cols {
			names[i] = document.String(c)
		}

		row := document.NewObject()
		row.Set("table", document.String(t.Path))
		row.Set("rows", document.Number(float64(len(t.Rows))))
		row.Set("columns", document.Sequence(names))
		rows = append(rows, row)
	}
	return rows
}

func schemaRows(cols []document.ColumnInfo) []document.Row {
	rows := make([]document.Row, 0, len(cols))
	for _, c := range cols {
		row := document.NewObject()
		row.Set("name", document.String(c.Name))
		row.Set("type", document.String(c.Type))
		row.Set("nullable", document.Bool(c.Nullable))
		row.Set("repeated", document.Bool(c.Repeated))
		rows = append(rows, row)
	}
	return rows
}
