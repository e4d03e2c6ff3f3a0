package output

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/jsonxml2sql/document"
	"github.com/vegasq/jsonxml2sql/reader"
)

// testRows decodes a JSON array into rows
func testRows(t *testing.T, src string) []document.Row {
	t.Helper()
	v, ok := reader.ParseJSON([]byte(src))
	require.True(t, ok, "invalid fixture %s", src)
	items, ok := v.AsSequence()
	require.True(t, ok)
	return document.ToRows(items)
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{format: "json", want: &JSONFormatter{}},
		{format: "JSONL", want: &JSONLFormatter{}},
		{format: "csv", want: &CSVFormatter{}},
		{format: "table", want: &TableFormatter{}},
		{format: "sql", want: &SQLFormatter{}},
		{format: "xls", want: &XLSFormatter{}},
		{format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, &bytes.Buffer{}, Options{})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown output format")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want string
	}{
		{
			name: "empty rows",
			rows: `[]`,
			want: `[]`,
		},
		{
			name: "single row",
			rows: `[{"b":1,"a":"x"}]`,
			want: `[{"b":1,"a":"x"}]`,
		},
		{
			name: "nested values",
			rows: `[{"tags":["a"],"n":null},{"meta":{"k":true}}]`,
			want: `[{"tags":["a"],"n":null},{"meta":{"k":true}}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewJSONFormatter(&buf).Format(testRows(t, tt.rows)))
			assert.JSONEq(t, tt.want, buf.String())
			assert.True(t, strings.HasSuffix(buf.String(), "\n"))
		})
	}
}

func TestJSONFormatter_KeyOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(testRows(t, `[{"b":1,"a":"x"}]`)))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"b"`), strings.Index(out, `"a"`))
	assert.Contains(t, out, "\n  {")
}

func TestJSONLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	rows := testRows(t, `[{"id":1,"name":"alice"},{"id":2,"name":null}]`)
	require.NoError(t, NewJSONLFormatter(&buf).Format(rows))
	assert.Equal(t, "{\"id\":1,\"name\":\"alice\"}\n{\"id\":2,\"name\":null}\n", buf.String())

	buf.Reset()
	require.NoError(t, NewJSONLFormatter(&buf).Format(nil))
	assert.Empty(t, buf.String())
}

func TestCSVFormatter_Format(t *testing.T) {
	tests := []struct {
		name string
		rows string
		want [][]string
	}{
		{
			name: "first seen column order",
			rows: `[{"id":1,"name":"alice"},{"id":2,"email":"b@x"}]`,
			want: [][]string{
				{"id", "name", "email"},
				{"1", "alice", ""},
				{"2", "", "b@x"},
			},
		},
		{
			name: "nested values as json",
			rows: `[{"id":1,"tags":["a","b"],"meta":{"k":true}}]`,
			want: [][]string{
				{"id", "tags", "meta"},
				{"1", `["a","b"]`, `{"k":true}`},
			},
		},
		{
			name: "formula injection",
			rows: `[{"v":"=SUM(A1)"},{"v":"@cmd"},{"v":"-it's"},{"v":"plain"}]`,
			want: [][]string{
				{"v"},
				{"'=SUM(A1)"},
				{"'@cmd"},
				{"'-it''s"},
				{"plain"},
			},
		},
		{
			name: "negative numbers are not guarded",
			rows: `[{"v":-5}]`,
			want: [][]string{{"v"}, {"-5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVFormatter(&buf).Format(testRows(t, tt.rows)))

			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCSVFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(nil))
	assert.Empty(t, buf.String())
}

func TestTableFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	rows := testRows(t, `[{"id":1,"name":"alice"},{"id":2,"name":null}]`)
	require.NoError(t, NewTableFormatter(&buf, 0).Format(rows))

	out := buf.String()
	assert.Contains(t, out, "| id | name  |")
	assert.Contains(t, out, "|  1 | alice |")
	assert.True(t, strings.HasSuffix(out, "(2 rows)\n"), out)
}

func TestTableFormatter_Truncates(t *testing.T) {
	var buf bytes.Buffer
	rows := testRows(t, `[{"text":"abcdefghij"}]`)
	require.NoError(t, NewTableFormatter(&buf, 5).Format(rows))

	out := buf.String()
	assert.Contains(t, out, "abcd…")
	assert.NotContains(t, out, "abcdefghij")
	assert.True(t, strings.HasSuffix(out, "(1 row)\n"), out)
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, 0).Format(nil))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestSQLFormatter_Format(t *testing.T) {
	tests := []struct {
		name  string
		table string
		rows  string
		want  string
	}{
		{
			name: "sorted columns and literals",
			rows: `[{"name":"o'brien","id":1,"ok":true},{"id":2,"ok":false,"name":null}]`,
			want: "INSERT INTO my_table (id, name, ok) VALUES\n" +
				"(1, 'o''brien', TRUE),\n" +
				"(2, NULL, FALSE);\n",
		},
		{
			name:  "named table and missing columns",
			table: "users",
			rows:  `[{"a":1},{"b":[1,2]}]`,
			want: "INSERT INTO users (a, b) VALUES\n" +
				"(1, NULL),\n" +
				"(NULL, '[1,2]');\n",
		},
		{
			name: "no rows",
			rows: `[]`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewSQLFormatter(&buf, tt.table).Format(testRows(t, tt.rows)))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestSQLLiteral_NonFinite(t *testing.T) {
	s, err := sqlLiteral(document.Number(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "NULL", s)
}

func TestXLSFormatter_FormatTables(t *testing.T) {
	var buf bytes.Buffer
	tables := []document.Table{
		{Path: "data.users", Rows: testRows(t, `[{"id":1,"name":"<b>&"}]`)},
		{Path: "data.tags", Rows: testRows(t, `[{"value":"x"}]`)},
	}
	require.NoError(t, NewXLSFormatter(&buf).FormatTables(tables))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"?>`))
	assert.Contains(t, out, `<Worksheet ss:Name="data.users"><Table><Row><Cell><Data ss:Type="String">id</Data></Cell>`)
	assert.Contains(t, out, `<Data ss:Type="String">&lt;b&gt;&amp;</Data>`)
	assert.Contains(t, out, `<Worksheet ss:Name="data.tags">`)
	assert.Equal(t, 2, strings.Count(out, "<Worksheet "))
	assert.True(t, strings.HasSuffix(out, "</Workbook>\n"))
}

func TestWriteTables(t *testing.T) {
	tables := []document.Table{
		{Path: "data", Rows: testRows(t, `[{"id":1}]`)},
		{Path: "data.items", Rows: testRows(t, `[{"v":2}]`)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTables(NewJSONLFormatter(&buf), &buf, tables))
	assert.Equal(t, "# data\n{\"id\":1}\n\n# data.items\n{\"v\":2}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteTables(NewXLSFormatter(&buf), &buf, tables))
	assert.Equal(t, 2, strings.Count(buf.String(), "<Worksheet "))
	assert.NotContains(t, buf.String(), "# data")
}
