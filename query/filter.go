package query

import (
	"sort"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// resolveField looks a field reference up in row. "data" is the whole row;
// a "data." prefix is dropped, then the FROM scope prefix ("users." for
// FROM data.users). Without joins the table alias works as a prefix too.
// A dotted name that does not resolve as a path is tried as a plain key,
// which finds output columns such as "o.name".
func (ctx *ExecutionContext) resolveField(row document.Row, field string) document.Value {
	if field == document.RootTable {
		return document.Mapping(row)
	}

	path := strings.TrimPrefix(document.NormalizePath(field), document.RootTable+".")
	path = ctx.stripScope(path)

	v := document.Resolve(document.Mapping(row), path)
	if v.IsUndefined() && strings.Contains(field, ".") {
		if direct, ok := row.Get(field); ok {
			return direct
		}
	}
	return v
}

// stripScope removes the FROM scope or, without joins, the table alias from
// the front of path. A path equal to the scope itself addresses the row.
func (ctx *ExecutionContext) stripScope(path string) string {
	prefixes := make([]string, 0, 2)
	if ctx.scope != "" {
		prefixes = append(prefixes, ctx.scope)
	}
	if alias := ctx.Query.TableAlias; alias != "" && len(ctx.Query.Joins) == 0 {
		prefixes = append(prefixes, alias)
	}

	for _, prefix := range prefixes {
		if path == prefix {
			return ""
		}
		if strings.HasPrefix(path, prefix+".") {
			return path[len(prefix)+1:]
		}
	}
	return path
}

// evaluate computes the value of a WHERE expression for row
func (ctx *ExecutionContext) evaluate(row document.Row, expr Expression) document.Value {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value
	case *ColumnRef:
		return ctx.resolveField(row, e.Column)
	case *ComparisonExpr:
		left := ctx.evaluate(row, e.Left)
		right := ctx.evaluate(row, e.Right)
		return document.Bool(compare(left, e.Operator, right))
	case *BinaryExpr:
		left := ctx.evaluate(row, e.Left).Truthy()
		right := ctx.evaluate(row, e.Right).Truthy()
		if e.Operator == TokenAnd {
			return document.Bool(left && right)
		}
		return document.Bool(left || right)
	default:
		panic("unknown expression type")
	}
}

// compare applies a WHERE comparison. = and != are strict: no coercion
// between kinds. The ordering operators compare two strings lexically and
// anything else numerically; an unordered pair is never <, <=, > or >=.
func compare(left document.Value, operator TokenType, right document.Value) bool {
	switch operator {
	case TokenEqual:
		return document.StrictEqual(left, right)
	case TokenNotEqual:
		return !document.StrictEqual(left, right)
	}

	cmp, ok := document.Compare(left, right)
	if !ok {
		return false
	}
	switch operator {
	case TokenLess:
		return cmp < 0
	case TokenLessEqual:
		return cmp <= 0
	case TokenGreater:
		return cmp > 0
	case TokenGreaterEqual:
		return cmp >= 0
	}
	return false
}

// applyFilter keeps the rows for which filter is truthy
func (ctx *ExecutionContext) applyFilter(rows []document.Row, filter Expression) []document.Row {
	out := make([]document.Row, 0, len(rows))
	for _, row := range rows {
		if ctx.evaluate(row, filter).Truthy() {
			out = append(out, row)
		}
	}
	return out
}

// applyOrderBy sorts rows in place, keeping the input order of ties and of
// values that cannot be ordered against each other. Rows whose key is null
// or missing go last in either direction.
func (ctx *ExecutionContext) applyOrderBy(rows []document.Row, orderBy *OrderByItem) {
	keys := make([]document.Value, len(rows))
	for i, row := range rows {
		keys[i] = ctx.resolveField(row, orderBy.Column)
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		a, b := keys[idx[i]], keys[idx[j]]
		if a.IsNullish() || b.IsNullish() {
			return !a.IsNullish()
		}
		cmp, ok := document.Compare(a, b)
		if !ok {
			return false
		}
		if orderBy.Desc {
			return cmp > 0
		}
		return cmp < 0
	})

	sorted := make([]document.Row, len(rows))
	for i, k := range idx {
		sorted[i] = rows[k]
	}
	copy(rows, sorted)
}

// groupedOrderBy points the sort key at the output name of the matching
// SELECT column, since grouped rows are already projected (u.name is
// emitted as name)
func (ctx *ExecutionContext) groupedOrderBy(orderBy *OrderByItem) *OrderByItem {
	names := document.NewObject()
	for _, item := range ctx.Query.SelectList {
		switch it := item.(type) {
		case *ColumnItem:
			name := ctx.columnName(it, names)
			names.Set(name, document.Null())
			if it.Column == orderBy.Column && name != orderBy.Column {
				return &OrderByItem{Column: name, Desc: orderBy.Desc}
			}
		case *AggregateItem:
			names.Set(it.OutputName(), document.Null())
		}
	}
	return orderBy
}

// applyLimitOffset skips offset rows, then keeps at most limit rows
func applyLimitOffset(rows []document.Row, limit, offset *int64) []document.Row {
	start := int64(0)
	if offset != nil && *offset > 0 {
		start = *offset
	}
	if start >= int64(len(rows)) {
		return []document.Row{}
	}

	end := int64(len(rows))
	if limit != nil && *limit >= 0 && start+*limit < end {
		end = start + *limit
	}
	return rows[start:end]
}

// applySelectList projects every row through the SELECT list
func (ctx *ExecutionContext) applySelectList(rows []document.Row) []document.Row {
	out := make([]document.Row, len(rows))
	for i, row := range rows {
		out[i] = ctx.projectRow(row, nil)
	}
	return out
}

// projectRow builds one output row in SELECT list order. Within a group,
// plain columns that are grouping keys take the key value and aggregates
// are computed over the group's rows.
func (ctx *ExecutionContext) projectRow(row document.Row, g *group) document.Row {
	out := document.NewObject()

	for _, item := range ctx.Query.SelectList {
		switch it := item.(type) {
		case *StarItem:
			row.Range(func(k string, v document.Value) bool {
				out.Set(k, v)
				return true
			})
		case *WildcardItem:
			if obj, ok := ctx.resolveField(row, it.Path).AsMapping(); ok {
				obj.Range(func(k string, v document.Value) bool {
					out.Set(k, v)
					return true
				})
			}
		case *ColumnItem:
			v, ok := g.keyValue(ctx.Query.GroupBy, it.Column)
			if !ok {
				v = ctx.resolveField(row, it.Column)
			}
			out.Set(ctx.columnName(it, out), v)
		case *AggregateItem:
			var rows []document.Row
			if g != nil {
				rows = g.rows
			} else if row != nil {
				rows = []document.Row{row}
			}
			out.Set(it.OutputName(), ctx.aggregate(it, rows))
		default:
			panic("unknown select item type")
		}
	}
	return out
}

// columnName picks the output name of a plain column: its alias, else the
// path after a table alias (u.name gives name) unless that name is already
// taken, else the dotted name as written
func (ctx *ExecutionContext) columnName(item *ColumnItem, out document.Row) string {
	if item.Alias != "" {
		return item.Alias
	}
	if alias, rest, ok := strings.Cut(item.Column, "."); ok && ctx.isAlias(alias) {
		if !out.Has(rest) {
			return rest
		}
	}
	return item.Column
}
