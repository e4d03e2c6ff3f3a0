package query

import (
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenOrder
	TokenBy
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenTrue
	TokenFalse
	TokenNull
	TokenJoin
	TokenLeft
	TokenRight
	TokenInner
	TokenFull
	TokenOuter
	TokenOn
	TokenAs
	TokenGroup

	// Operators
	TokenEqual        // =
	TokenNotEqual     // !=
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Literals
	TokenString
	TokenNumber
	TokenIdent

	// Delimiters
	TokenComma        // ,
	TokenDot          // .
	TokenStar         // *
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenSemicolon    // ;
	TokenLeftBracket  // [
	TokenRightBracket // ]

	// Special
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenStar:         "*",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenSemicolon:    ";",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenEOF:          "end of input",
}

// String returns the keyword or operator spelling of t
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for word, typ := range keywords {
		if typ == t {
			return word
		}
	}
	return "unknown"
}

// IsKeyword reports whether t is a reserved word
func (t TokenType) IsKeyword() bool {
	return t >= TokenSelect && t <= TokenGroup
}

// Token represents a lexical token
type Token struct {
	Type TokenType
	// Value is the canonical value: upper-cased keywords, unescaped string contents
	Value string
	// Text is the token as written in the query
	Text string
	Pos  int
}

// Query represents a parsed SELECT statement
type Query struct {
	SelectList []SelectItem
	TableName  string // dotted table path, "data" for the whole document
	TableAlias string
	Joins      []Join
	Filter     Expression
	GroupBy    []string
	OrderBy    *OrderByItem
	Limit      *int64
	Offset     *int64
}

// JoinType represents the type of join operation
type JoinType int

const (
	JoinInner JoinType = iota // INNER JOIN (default)
	JoinLeft                  // LEFT JOIN / LEFT OUTER JOIN
	JoinRight                 // RIGHT JOIN / RIGHT OUTER JOIN
	JoinFull                  // FULL JOIN / FULL OUTER JOIN
)

// String returns the SQL spelling of the join type
func (j JoinType) String() string {
	switch j {
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	default:
		return "INNER"
	}
}

// Join represents a JOIN clause
type Join struct {
	Type      JoinType
	TableName string
	Alias     string
	Condition JoinCondition
}

// JoinCondition is the equality in an ON clause
type JoinCondition struct {
	Left  QualifiedRef
	Right QualifiedRef
}

// QualifiedRef is an alias-qualified field reference, alias.path
type QualifiedRef struct {
	Alias string
	Path  string
}

// String returns alias.path
func (r QualifiedRef) String() string {
	return r.Alias + "." + r.Path
}

// OrderByItem represents the sort key
type OrderByItem struct {
	Column string
	Desc   bool
}

// SelectItem is one entry of the SELECT list: *StarItem, *ColumnItem,
// *WildcardItem or *AggregateItem.
type SelectItem interface {
	selectItem()
}

// StarItem is an unqualified *
type StarItem struct{}

// ColumnItem is a plain field, optionally aliased
type ColumnItem struct {
	Column string
	Alias  string
}

// WildcardItem is a qualified wildcard such as u.* or data.users.*
type WildcardItem struct {
	Path string
}

// AggregateItem is COUNT, SUM, MIN, MAX or AVG over a field, or COUNT(*)
type AggregateItem struct {
	Function string // upper-case function name
	Arg      string // field path, "*" for COUNT(*)
	Alias    string
}

func (*StarItem) selectItem()      {}
func (*ColumnItem) selectItem()    {}
func (*WildcardItem) selectItem()  {}
func (*AggregateItem) selectItem() {}

// OutputName returns the column name an aggregate produces
func (a *AggregateItem) OutputName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return strings.ToLower(a.Function)
}

// Expression is a WHERE clause node: *LiteralExpr, *ColumnRef,
// *ComparisonExpr or *BinaryExpr.
type Expression interface {
	expression()
}

// LiteralExpr is a number, string, TRUE, FALSE or NULL
type LiteralExpr struct {
	Value document.Value
}

// ColumnRef references a field by dotted path
type ColumnRef struct {
	Column string
}

// ComparisonExpr compares two operands with =, !=, <, <=, > or >=
type ComparisonExpr struct {
	Left     Expression
	Operator TokenType
	Right    Expression
}

// BinaryExpr combines two expressions with AND or OR
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

func (*LiteralExpr) expression()    {}
func (*ColumnRef) expression()      {}
func (*ComparisonExpr) expression() {}
func (*BinaryExpr) expression()     {}

// aggregateFunctions lists the functions accepted in the SELECT list
var aggregateFunctions = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"MIN":   true,
	"MAX":   true,
	"AVG":   true,
}

// HasAggregates reports whether the SELECT list contains an aggregate call
func (q *Query) HasAggregates() bool {
	for _, item := range q.SelectList {
		if _, ok := item.(*AggregateItem); ok {
			return true
		}
	}
	return false
}

// IsSelectStar reports whether the SELECT list is a single unqualified *
func (q *Query) IsSelectStar() bool {
	if len(q.SelectList) != 1 {
		return false
	}
	_, ok := q.SelectList[0].(*StarItem)
	return ok
}

// SelectsWholeDocument reports whether q is a bare SELECT * FROM data with
// no other clause, the query that asks for every table of the document.
func (q *Query) SelectsWholeDocument() bool {
	return q.IsSelectStar() &&
		strings.EqualFold(q.TableName, document.RootTable) &&
		len(q.Joins) == 0 && q.Filter == nil && len(q.GroupBy) == 0 &&
		q.OrderBy == nil && q.Limit == nil && q.Offset == nil
}
