package query

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/vegasq/jsonxml2sql/document"
)

// TableSource supplies the rows of a table path such as "data" or "data.users"
type TableSource interface {
	Rows(path string) ([]document.Row, error)
}

// ExecutionContext holds the state of one query execution
type ExecutionContext struct {
	Query  *Query
	Source TableSource

	// scope is the FROM path without its "data." prefix
	scope string
	// aliases lists the primary alias first, then one alias per join
	aliases []string
}

// NewExecutionContext creates a new execution context
func NewExecutionContext(q *Query, src TableSource) *ExecutionContext {
	ctx := &ExecutionContext{Query: q, Source: src}
	table := document.NormalizePath(q.TableName)
	if strings.HasPrefix(table, document.RootTable+".") {
		ctx.scope = table[len(document.RootTable)+1:]
	}
	return ctx
}

// Execute runs q against src. Phases run in a fixed order whatever the
// clause order in the text: join, filter, group, order, paginate, project.
// Any failure, including a runtime panic, is returned as an ErrExecute error.
func Execute(q *Query, src TableSource) (rows []document.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = execError(nil, "%v", r)
		}
	}()

	ctx := NewExecutionContext(q, src)
	return ctx.executeSelect()
}

// ExecuteQuery parses and executes a query string
func ExecuteQuery(query string, src TableSource) ([]document.Row, error) {
	q, err := Parse(query)
	if err != nil {
		return nil, err
	}
	return Execute(q, src)
}

func (ctx *ExecutionContext) executeSelect() ([]document.Row, error) {
	q := ctx.Query

	base, err := ctx.Source.Rows(q.TableName)
	if err != nil {
		return nil, execError(err, "cannot read table %s", q.TableName)
	}
	rows := make([]document.Row, len(base))
	copy(rows, base)

	if len(q.Joins) > 0 {
		rows, err = ctx.executeJoins(rows)
		if err != nil {
			return nil, err
		}
	}

	if q.Filter != nil {
		rows = ctx.applyFilter(rows, q.Filter)
	}

	grouped := len(q.GroupBy) > 0 || q.HasAggregates()
	if grouped {
		rows = ctx.applyGroupBy(rows)
	}

	if q.OrderBy != nil {
		orderBy := q.OrderBy
		if grouped {
			orderBy = ctx.groupedOrderBy(orderBy)
		}
		ctx.applyOrderBy(rows, orderBy)
	}

	rows = applyLimitOffset(rows, q.Limit, q.Offset)

	if !grouped && !q.IsSelectStar() {
		rows = ctx.applySelectList(rows)
	}
	return rows, nil
}

// defaultAlias names a table by the last segment of its path
func defaultAlias(table string) string {
	path := document.NormalizePath(table)
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func (ctx *ExecutionContext) aliasIndex(alias string) int {
	for i, a := range ctx.aliases {
		if a == alias {
			return i
		}
	}
	return -1
}

// isAlias reports whether name is a table alias visible to field references
func (ctx *ExecutionContext) isAlias(name string) bool {
	if ctx.Query.TableAlias != "" && name == ctx.Query.TableAlias {
		return true
	}
	return ctx.aliasIndex(name) >= 0
}

// combination is one joined tuple, one row per alias (nil when unmatched)
type combination []document.Row

// executeJoins applies every JOIN clause in order and flattens the result
func (ctx *ExecutionContext) executeJoins(rows []document.Row) ([]document.Row, error) {
	q := ctx.Query

	primary := q.TableAlias
	if primary == "" {
		primary = defaultAlias(q.TableName)
	}
	ctx.aliases = []string{primary}

	current := make([]combination, len(rows))
	for i, row := range rows {
		current[i] = combination{row}
	}

	for _, join := range q.Joins {
		var err error
		current, err = ctx.executeJoin(current, join)
		if err != nil {
			return nil, err
		}
	}

	out := make([]document.Row, len(current))
	for i, combo := range current {
		out[i] = ctx.flatten(combo)
	}
	return out, nil
}

// executeJoin extends every accumulated combination with the matching rows of join
func (ctx *ExecutionContext) executeJoin(current []combination, join Join) ([]combination, error) {
	alias := join.Alias
	if alias == "" {
		alias = defaultAlias(join.TableName)
	}
	if ctx.aliasIndex(alias) >= 0 {
		return nil, execError(nil, "duplicate table alias %q", alias)
	}

	rightRows, err := ctx.Source.Rows(join.TableName)
	if err != nil {
		return nil, execError(err, "cannot read table %s", join.TableName)
	}

	// ON sides may be written in either order
	leftRef, rightRef := join.Condition.Left, join.Condition.Right
	if leftRef.Alias == alias && rightRef.Alias != alias {
		leftRef, rightRef = rightRef, leftRef
	}
	leftIdx := ctx.aliasIndex(leftRef.Alias)

	ctx.aliases = append(ctx.aliases, alias)
	width := len(ctx.aliases)

	extend := func(left combination, right document.Row) combination {
		combo := make(combination, width)
		copy(combo, left)
		combo[width-1] = right
		return combo
	}

	rightKeys := make([]document.Value, len(rightRows))
	for i, r := range rightRows {
		rightKeys[i] = document.Resolve(document.Mapping(r), rightRef.Path)
	}

	matchedRight := make([]bool, len(rightRows))
	var out []combination

	for _, left := range current {
		lval := document.Undefined()
		if leftIdx >= 0 && leftIdx < len(left) && left[leftIdx] != nil {
			lval = document.Resolve(document.Mapping(left[leftIdx]), leftRef.Path)
		}

		matched := false
		for i, r := range rightRows {
			if looseEqual(lval, rightKeys[i]) {
				matched = true
				matchedRight[i] = true
				out = append(out, extend(left, r))
			}
		}
		if !matched && (join.Type == JoinLeft || join.Type == JoinFull) {
			out = append(out, extend(left, nil))
		}
	}

	if join.Type == JoinRight || join.Type == JoinFull {
		for i, r := range rightRows {
			if !matchedRight[i] {
				out = append(out, extend(nil, r))
			}
		}
	}
	return out, nil
}

// flatten merges a combination into one row: the primary row's fields at the
// top level, then every populated alias under its own name
func (ctx *ExecutionContext) flatten(combo combination) document.Row {
	row := document.NewObject()
	if combo[0] != nil {
		combo[0].Range(func(k string, v document.Value) bool {
			row.Set(k, v)
			return true
		})
	}
	for i, alias := range ctx.aliases {
		if i < len(combo) && combo[i] != nil {
			row.Set(alias, document.Mapping(combo[i]))
		}
	}
	return row
}

// looseEqual is the JOIN ON equality: strict equality, or equal finite
// numbers after coercion, or equal string forms. Null and undefined never match.
func looseEqual(a, b document.Value) bool {
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	if document.StrictEqual(a, b) {
		return true
	}
	if !isScalar(a) || !isScalar(b) {
		return false
	}
	fa, okA := toFinite(a)
	fb, okB := toFinite(b)
	if okA && okB {
		return fa == fb
	}
	return a.String() == b.String()
}

func isScalar(v document.Value) bool {
	switch v.Kind() {
	case document.KindBool, document.KindNumber, document.KindString:
		return true
	}
	return false
}

// toFinite coerces a scalar to a finite number. Strings are trimmed first;
// a blank string is not a number.
func toFinite(v document.Value) (float64, bool) {
	if !isScalar(v) {
		return 0, false
	}
	in := v.Interface()
	if s, ok := v.AsString(); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		in = s
	}
	f, err := cast.ToFloat64E(in)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
