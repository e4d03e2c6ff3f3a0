package query

import (
	"github.com/segmentio/encoding/json"

	"github.com/vegasq/jsonxml2sql/document"
)

// group is one GROUP BY bucket
type group struct {
	key  string           // serialized key tuple
	keys []document.Value // GROUP BY values, in GROUP BY order
	rows []document.Row
}

// keyValue returns the key value of a grouping column
func (g *group) keyValue(groupBy []string, column string) (document.Value, bool) {
	if g == nil {
		return document.Value{}, false
	}
	for i, col := range groupBy {
		if col == column && i < len(g.keys) {
			return g.keys[i], true
		}
	}
	return document.Value{}, false
}

// first returns the first row of the bucket, nil when it is empty
func (g *group) first() document.Row {
	if len(g.rows) == 0 {
		return nil
	}
	return g.rows[0]
}

// applyGroupBy buckets rows by their GROUP BY values, in order of first
// appearance, and projects one row per bucket. Aggregates without GROUP BY
// fold every row into a single bucket, which exists even for empty input.
func (ctx *ExecutionContext) applyGroupBy(rows []document.Row) []document.Row {
	groupBy := ctx.Query.GroupBy

	var groups []*group
	if len(groupBy) == 0 {
		groups = []*group{{rows: rows}}
	} else {
		byKey := make(map[string]*group)
		for _, row := range rows {
			keys := make([]document.Value, len(groupBy))
			for i, col := range groupBy {
				keys[i] = ctx.resolveField(row, col)
			}
			key := groupKey(keys)

			g, ok := byKey[key]
			if !ok {
				g = &group{key: key, keys: keys}
				byKey[key] = g
				groups = append(groups, g)
			}
			g.rows = append(g.rows, row)
		}
	}

	out := make([]document.Row, len(groups))
	for i, g := range groups {
		out[i] = ctx.projectRow(g.first(), g)
	}
	return out
}

// groupKey serializes a key tuple; null and undefined share a bucket
func groupKey(keys []document.Value) string {
	data, err := json.Marshal(document.Sequence(keys))
	if err != nil {
		panic(err)
	}
	return string(data)
}

// aggregate computes an aggregate call over rows
func (ctx *ExecutionContext) aggregate(item *AggregateItem, rows []document.Row) document.Value {
	if item.Function == "COUNT" && item.Arg == "*" {
		return document.Number(float64(len(rows)))
	}

	values := make([]document.Value, len(rows))
	for i, row := range rows {
		if item.Arg == "*" {
			values[i] = document.Mapping(row)
		} else {
			values[i] = ctx.resolveField(row, item.Arg)
		}
	}

	switch item.Function {
	case "COUNT":
		return evaluateCount(values)
	case "SUM":
		return evaluateSum(values)
	case "AVG":
		return evaluateAvg(values)
	case "MIN":
		return evaluateMinMax(values, false)
	case "MAX":
		return evaluateMinMax(values, true)
	}
	panic("unknown aggregate function " + item.Function)
}

// evaluateCount counts the values that are neither null nor undefined
func evaluateCount(values []document.Value) document.Value {
	n := 0
	for _, v := range values {
		if !v.IsNullish() {
			n++
		}
	}
	return document.Number(float64(n))
}

// evaluateSum adds values as numbers, counting anything non-numeric as 0
func evaluateSum(values []document.Value) document.Value {
	sum := 0.0
	for _, v := range values {
		if f, ok := toFinite(v); ok {
			sum += f
		}
	}
	return document.Number(sum)
}

// evaluateAvg averages the numeric values, null when there are none
func evaluateAvg(values []document.Value) document.Value {
	sum, n := 0.0, 0
	for _, v := range values {
		if f, ok := toFinite(v); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return document.Null()
	}
	return document.Number(sum / float64(n))
}

// evaluateMinMax finds the smallest or largest numeric value, null when there are none
func evaluateMinMax(values []document.Value, wantMax bool) document.Value {
	best, found := 0.0, false
	for _, v := range values {
		f, ok := toFinite(v)
		if !ok {
			continue
		}
		if !found || (wantMax && f > best) || (!wantMax && f < best) {
			best, found = f, true
		}
	}
	if !found {
		return document.Null()
	}
	return document.Number(best)
}
