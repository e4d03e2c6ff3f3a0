package query

import (
	"strconv"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// Format renders q as query text that parses back to an equivalent Query
func Format(q *Query) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	items := make([]string, len(q.SelectList))
	for i, item := range q.SelectList {
		items[i] = formatSelectItem(item)
	}
	b.WriteString(strings.Join(items, ", "))

	b.WriteString(" FROM ")
	b.WriteString(q.TableName)
	if q.TableAlias != "" {
		b.WriteString(" ")
		b.WriteString(q.TableAlias)
	}

	for _, j := range q.Joins {
		b.WriteString(" ")
		b.WriteString(j.Type.String())
		b.WriteString(" JOIN ")
		b.WriteString(j.TableName)
		if j.Alias != "" {
			b.WriteString(" ")
			b.WriteString(j.Alias)
		}
		b.WriteString(" ON ")
		b.WriteString(j.Condition.Left.String())
		b.WriteString(" = ")
		b.WriteString(j.Condition.Right.String())
	}

	if q.Filter != nil {
		b.WriteString(" WHERE ")
		b.WriteString(formatExpression(q.Filter, false))
	}
	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
	}
	if q.OrderBy != nil {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.OrderBy.Column)
		if q.OrderBy.Desc {
			b.WriteString(" DESC")
		}
	}
	if q.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(*q.Limit, 10))
	}
	if q.Offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.FormatInt(*q.Offset, 10))
	}
	return b.String()
}

func formatSelectItem(item SelectItem) string {
	switch it := item.(type) {
	case *StarItem:
		return "*"
	case *WildcardItem:
		return it.Path + ".*"
	case *ColumnItem:
		return withAlias(it.Column, it.Alias)
	case *AggregateItem:
		return withAlias(it.Function+"("+it.Arg+")", it.Alias)
	}
	return ""
}

func withAlias(s, alias string) string {
	if alias == "" {
		return s
	}
	return s + " AS " + alias
}

// formatExpression renders expr; nested AND/OR operands are parenthesized
func formatExpression(expr Expression, nested bool) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		return formatLiteral(e.Value)
	case *ColumnRef:
		return e.Column
	case *ComparisonExpr:
		return formatExpression(e.Left, true) + " " + e.Operator.String() + " " + formatExpression(e.Right, true)
	case *BinaryExpr:
		s := formatExpression(e.Left, true) + " " + e.Operator.String() + " " + formatExpression(e.Right, true)
		if nested {
			return "(" + s + ")"
		}
		return s
	}
	return ""
}

func formatLiteral(v document.Value) string {
	switch v.Kind() {
	case document.KindNull, document.KindUndefined:
		return "NULL"
	case document.KindBool:
		if v.Truthy() {
			return "TRUE"
		}
		return "FALSE"
	case document.KindString:
		s, _ := v.AsString()
		r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
		return "'" + r.Replace(s) + "'"
	}
	return v.String()
}
