package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowJSON(t *testing.T, row Row) string {
	t.Helper()
	data, err := row.MarshalJSON()
	require.NoError(t, err)
	return string(data)
}

func TestToRow(t *testing.T) {
	obj := NewObject()
	obj.Set("id", Number(1))

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"mapping", Mapping(obj), `{"id":1}`},
		{"scalar", Number(5), `{"value":5}`},
		{"string", String("x"), `{"value":"x"}`},
		{"null", Null(), `{}`},
		{"undefined", Undefined(), `{}`},
		{"sequence", Sequence([]Value{Number(1), Mapping(obj)}), `{"value":[{"value":1},{"id":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rowJSON(t, ToRow(tt.value)))
		})
	}
}

func TestToRow_MappingIsSameRow(t *testing.T) {
	obj := NewObject()
	assert.Same(t, obj, ToRow(Mapping(obj)))
}

func TestDiscoverTables(t *testing.T) {
	root := sampleDocument(t)

	tables := DiscoverTables(root)
	paths := make([]string, len(tables))
	for i, tbl := range tables {
		paths[i] = tbl.Path
	}

	assert.Equal(t, []string{"data.users", "data.users[0].tags"}, paths)
	assert.Len(t, tables[0].Rows, 1)
	assert.Equal(t, []string{"id", "name", "address", "tags", "manager"}, tables[0].Columns())
	assert.Equal(t, `{"value":"admin"}`, rowJSON(t, tables[1].Rows[0]))
}

func TestDiscoverTables_RootSequence(t *testing.T) {
	inner := Sequence([]Value{Number(1), Number(2)})
	root := Sequence([]Value{inner, inner})

	tables := DiscoverTables(root)
	require.Len(t, tables, 3)
	assert.Equal(t, "data", tables[0].Path)
	assert.Equal(t, "data[0]", tables[1].Path)
	assert.Equal(t, "data[1]", tables[2].Path)
}

func TestDiscoverTables_DeduplicatesPathAndLength(t *testing.T) {
	// the same key reached twice only registers once
	child := NewObject()
	child.Set("items", Sequence([]Value{Number(1)}))
	root := NewObject()
	root.Set("a", Mapping(child))

	tables := DiscoverTables(Mapping(root))
	require.Len(t, tables, 1)
	assert.Equal(t, "data.a.items", tables[0].Path)
}

func TestDiscoverTables_DepthOrder(t *testing.T) {
	deep := NewObject()
	deep.Set("leaves", Sequence([]Value{Number(1)}))
	root := NewObject()
	root.Set("branch", Mapping(deep))
	root.Set("top", Sequence([]Value{Number(2)}))

	tables := DiscoverTables(Mapping(root))
	require.Len(t, tables, 2)
	assert.Equal(t, "data.top", tables[0].Path)
	assert.Equal(t, "data.branch.leaves", tables[1].Path)
}

func TestTree_Rows(t *testing.T) {
	tree := NewTree(sampleDocument(t))

	rows, err := tree.Rows("data")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"id", "name", "address", "tags", "manager"}, rows[0].Keys())

	rows, err = tree.Rows("data.users")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = tree.Rows("data.users[0].tags")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `{"value":"dev"}`, rowJSON(t, rows[1]))

	rows, err = tree.Rows("data.users.0.address")
	require.NoError(t, err)
	assert.Equal(t, `{"City":"Paris"}`, rowJSON(t, rows[0]))

	rows, err = tree.Rows("data.users.0.id")
	require.NoError(t, err)
	assert.Equal(t, `{"value":1}`, rowJSON(t, rows[0]))

	_, err = tree.Rows("data.missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestTree_RowsMatchCatalog(t *testing.T) {
	tree := NewTree(sampleDocument(t))

	for _, tbl := range tree.Catalog() {
		rows, err := tree.Rows(tbl.Path)
		require.NoError(t, err, tbl.Path)
		require.Len(t, rows, len(tbl.Rows), tbl.Path)
		for i := range rows {
			assert.Equal(t, rowJSON(t, tbl.Rows[i]), rowJSON(t, rows[i]))
		}
	}
}

func TestUniqueKeys(t *testing.T) {
	a := NewObject()
	a.Set("x", Number(1))
	a.Set("y", Number(2))
	b := NewObject()
	b.Set("z", Number(3))
	b.Set("x", Number(4))

	assert.Equal(t, []string{"x", "y", "z"}, UniqueKeys([]Row{a, b}))
}
