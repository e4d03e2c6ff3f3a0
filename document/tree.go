package document

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownTable is returned when a table path does not resolve inside the document
var ErrUnknownTable = errors.New("unknown table")

// Tree is a loaded document together with its lazily computed table catalog.
// A Tree is never modified after construction.
type Tree struct {
	root Value

	mu      sync.Mutex
	catalog []Table
	rows    map[string][]Row
}

// NewTree wraps root
func NewTree(root Value) *Tree {
	return &Tree{root: root, rows: make(map[string][]Row)}
}

// Root returns the document root
func (t *Tree) Root() Value {
	return t.root
}

// Catalog returns the discovered tables, shallowest first
func (t *Tree) Catalog() []Table {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.catalog == nil {
		t.catalog = DiscoverTables(t.root)
	}
	return t.catalog
}

// Rows returns the row-set addressed by a table path. "data" is the whole
// document; "data.a.b" and "data.items[0].tags" address nested values.
func (t *Tree) Rows(path string) ([]Row, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = RootTable
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if rows, ok := t.rows[path]; ok {
		return rows, nil
	}

	var rows []Row
	if path == RootTable {
		rows = Flatten(t.root)
	} else {
		wrapper := NewObject()
		wrapper.Set(RootTable, t.root)
		v := Resolve(Mapping(wrapper), NormalizePath(path))
		if v.IsUndefined() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, path)
		}
		rows = Flatten(v)
	}
	t.rows[path] = rows
	return rows, nil
}
