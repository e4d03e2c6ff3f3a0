package document

import (
	"sort"
	"strconv"
	"strings"
)

// RootTable is the table path naming the whole document
const RootTable = "data"

// ValueKey is the field that holds a non-mapping value wrapped into a row
const ValueKey = "value"

// Table is a candidate row-set discovered in a document
type Table struct {
	Path string
	Rows []Row
}

// Columns returns the union of the table's field names in first-seen order
func (t Table) Columns() []string {
	return UniqueKeys(t.Rows)
}

// ToRow canonicalizes any value into a row. A mapping already is a row,
// a sequence is wrapped as {"value": [ToRow(item)...]}, null and undefined
// give an empty row and any other scalar is wrapped as {"value": scalar}.
func ToRow(v Value) Row {
	switch v.kind {
	case KindMapping:
		return v.obj
	case KindUndefined, KindNull:
		return NewObject()
	case KindSequence:
		items := *v.seq
		wrapped := make([]Value, len(items))
		for i, item := range items {
			wrapped[i] = Mapping(ToRow(item))
		}
		row := NewObject()
		row.Set(ValueKey, Sequence(wrapped))
		return row
	default:
		row := NewObject()
		row.Set(ValueKey, v)
		return row
	}
}

// ToRows canonicalizes every item of a sequence
func ToRows(items []Value) []Row {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = ToRow(item)
	}
	return rows
}

// DiscoverTables walks root and registers every sequence it meets as a
// candidate table. The root itself is named "data", mapping keys extend a
// path with ".key" and sequence items with "[i]". Entries sharing the same
// path and length are kept once. Tables are ordered shallowest path first,
// ties in encounter order.
func DiscoverTables(root Value) []Table {
	var tables []Table
	seen := make(map[string]struct{})

	register := func(path string, items []Value) {
		key := path + "|" + strconv.Itoa(len(items))
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tables = append(tables, Table{Path: path, Rows: ToRows(items)})
	}

	var visit func(node Value, path string)
	visit = func(node Value, path string) {
		switch node.kind {
		case KindSequence:
			items := *node.seq
			register(path, items)
			for i, item := range items {
				visit(item, path+"["+strconv.Itoa(i)+"]")
			}
		case KindMapping:
			node.obj.Range(func(k string, v Value) bool {
				child := path + "." + k
				if items, ok := v.AsSequence(); ok {
					register(child, items)
				}
				visit(v, child)
				return true
			})
		}
	}
	visit(root, RootTable)

	sort.SliceStable(tables, func(i, j int) bool {
		return pathDepth(tables[i].Path) < pathDepth(tables[j].Path)
	})
	return tables
}

func pathDepth(path string) int {
	return strings.Count(path, ".") + 1
}

// Flatten turns a value into the rows of a table: a sequence yields one row
// per item, a mapping yields the rows of its first sequence-valued field or
// else itself as a single row, and anything else becomes {"value": v}.
func Flatten(v Value) []Row {
	switch v.kind {
	case KindSequence:
		return ToRows(*v.seq)
	case KindMapping:
		var rows []Row
		found := false
		v.obj.Range(func(_ string, field Value) bool {
			if items, ok := field.AsSequence(); ok {
				rows, found = ToRows(items), true
				return false
			}
			return true
		})
		if found {
			return rows
		}
		return []Row{v.obj}
	default:
		row := NewObject()
		row.Set(ValueKey, v)
		return []Row{row}
	}
}
