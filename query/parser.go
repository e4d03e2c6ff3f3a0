package query

import (
	"strconv"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// Parser parses a token stream into a Query
type Parser struct {
	tokens       []Token
	pos          int
	depthCounter *ExpressionDepthCounter
}

// NewParser creates a new parser
func NewParser(tokens []Token) *Parser {
	return &Parser{
		tokens:       tokens,
		depthCounter: NewExpressionDepthCounter(),
	}
}

// current returns the current token
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos]
}

// peek returns the next token without advancing
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return p.eof()
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) eof() Token {
	if n := len(p.tokens); n > 0 && p.tokens[n-1].Type == TokenEOF {
		return p.tokens[n-1]
	}
	return Token{Type: TokenEOF, Pos: -1}
}

// advance moves to the next token
func (p *Parser) advance() {
	p.pos++
}

// expect consumes a token of the given type or fails naming what was expected
func (p *Parser) expect(tokType TokenType, expected string) (Token, error) {
	tok := p.current()
	if tok.Type != tokType {
		return tok, parseError(tok, expected)
	}
	p.advance()
	return tok, nil
}

// invalid reports a token rejected by a validation limit
func (p *Parser) invalid(tok Token, err error) error {
	return &Error{
		Code:    ErrParse,
		Pos:     tok.Pos,
		Found:   tok.Text,
		Message: "invalid query",
		Cause:   err,
	}
}

// Parse parses a query string. Trailing semicolons are ignored; any other
// token left after a complete statement is an error.
func Parse(query string) (*Query, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, &Error{Code: ErrParse, Pos: -1, Message: "invalid query", Cause: err}
	}

	tokens, err := Tokenize(query)
	if err != nil {
		return nil, err
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, &Error{Code: ErrParse, Pos: -1, Message: "invalid query", Cause: err}
	}

	parser := NewParser(tokens)
	q, err := parser.parseQuery()
	if err != nil {
		return nil, err
	}

	for parser.current().Type == TokenSemicolon {
		parser.advance()
	}
	if parser.current().Type != TokenEOF {
		return nil, parseError(parser.current(), "end of query")
	}
	return q, nil
}

// parseQuery parses: SELECT list FROM table [alias] join* clause*
func (p *Parser) parseQuery() (*Query, error) {
	if _, err := p.expect(TokenSelect, "SELECT"); err != nil {
		return nil, err
	}

	selectList, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenFrom, "FROM"); err != nil {
		return nil, err
	}

	q := &Query{SelectList: selectList}
	q.TableName, q.TableAlias, err = p.parseTableRef()
	if err != nil {
		return nil, err
	}

	for isJoinStart(p.current().Type) {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		q.Joins = append(q.Joins, *join)
	}

	if err := p.parseClauses(q); err != nil {
		return nil, err
	}
	return q, nil
}

func isJoinStart(t TokenType) bool {
	switch t {
	case TokenJoin, TokenInner, TokenLeft, TokenRight, TokenFull:
		return true
	}
	return false
}

// parseTableRef parses a table path and its optional alias. A bare alias is
// only taken when the next token is an identifier rather than a keyword.
func (p *Parser) parseTableRef() (string, string, error) {
	tok := p.current()
	name, err := p.parseDottedName("identifier for table name")
	if err != nil {
		return "", "", err
	}
	if err := ValidateTableName(name); err != nil {
		return "", "", p.invalid(tok, err)
	}

	alias := ""
	switch p.current().Type {
	case TokenAs:
		p.advance()
		aliasTok, err := p.expect(TokenIdent, "alias after AS")
		if err != nil {
			return "", "", err
		}
		alias = aliasTok.Value
	case TokenIdent:
		alias = p.current().Value
		p.advance()
	}
	return name, alias, nil
}

// parseDottedName parses IDENT ('.' segment | '[' index ']')*. After a dot,
// keywords and integers are accepted as segments so paths like
// items.0.order work. Bracket indexes are kept as written.
func (p *Parser) parseDottedName(expected string) (string, error) {
	first, err := p.expect(TokenIdent, expected)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(first.Value)

	for {
		switch p.current().Type {
		case TokenDot:
			next := p.peek()
			switch {
			case next.Type == TokenIdent || next.Type.IsKeyword():
			case next.Type == TokenNumber && isPathIndex(next.Text):
			default:
				// leave the dot for the caller, as in u.*
				return b.String(), nil
			}
			b.WriteString(".")
			b.WriteString(next.Text)
			p.advance()
			p.advance()

		case TokenLeftBracket:
			p.advance()
			idx := p.current()
			if idx.Type != TokenNumber || !isIndexLiteral(idx.Text) {
				return "", parseError(idx, "array index")
			}
			p.advance()
			if _, err := p.expect(TokenRightBracket, "]"); err != nil {
				return "", err
			}
			b.WriteString("[" + idx.Text + "]")

		default:
			return b.String(), nil
		}
	}
}

func isIndexLiteral(text string) bool {
	return !strings.Contains(text, ".") && isPathIndex(text)
}

// isPathIndex reports whether a number token is usable as path segments.
// "0.1" is two index segments written as a single number token.
func isPathIndex(text string) bool {
	if text == "" || text[0] == '-' {
		return false
	}
	for _, ch := range text {
		if !isDigit(ch) && ch != '.' {
			return false
		}
	}
	return true
}

// parseSelectList parses a comma-separated list of projections
func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	tok := p.current()

	if tok.Type == TokenStar {
		p.advance()
		return &StarItem{}, nil
	}

	if tok.Type == TokenIdent && p.peek().Type == TokenLeftParen {
		return p.parseAggregate()
	}

	column, err := p.parseDottedName("column name, * or aggregate")
	if err != nil {
		return nil, err
	}
	if err := ValidateColumnName(column); err != nil {
		return nil, p.invalid(tok, err)
	}

	if p.current().Type == TokenDot && p.peek().Type == TokenStar {
		p.advance()
		p.advance()
		return &WildcardItem{Path: column}, nil
	}

	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	return &ColumnItem{Column: column, Alias: alias}, nil
}

// parseAggregate parses FUNC '(' ('*' | dottedName) ')' [AS alias]
func (p *Parser) parseAggregate() (SelectItem, error) {
	nameTok := p.current()
	funcName := strings.ToUpper(nameTok.Value)
	if !aggregateFunctions[funcName] {
		return nil, parseError(nameTok, "aggregate function COUNT, SUM, MIN, MAX or AVG")
	}
	p.advance() // function name
	p.advance() // (

	agg := &AggregateItem{Function: funcName}
	if p.current().Type == TokenStar {
		agg.Arg = "*"
		p.advance()
	} else {
		arg, err := p.parseDottedName("column name or * in " + funcName + "()")
		if err != nil {
			return nil, err
		}
		agg.Arg = arg
	}

	if _, err := p.expect(TokenRightParen, ")"); err != nil {
		return nil, err
	}

	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	agg.Alias = alias
	return agg, nil
}

func (p *Parser) parseOptionalAlias() (string, error) {
	if p.current().Type != TokenAs {
		return "", nil
	}
	p.advance()
	tok, err := p.expect(TokenIdent, "alias after AS")
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}

// parseJoin parses [LEFT|RIGHT|INNER|FULL] [OUTER] JOIN table [alias] ON a.x = b.y
func (p *Parser) parseJoin() (*Join, error) {
	join := &Join{Type: JoinInner}

	switch p.current().Type {
	case TokenLeft:
		join.Type = JoinLeft
		p.advance()
	case TokenRight:
		join.Type = JoinRight
		p.advance()
	case TokenFull:
		join.Type = JoinFull
		p.advance()
	case TokenInner:
		p.advance()
	}
	if p.current().Type == TokenOuter {
		p.advance()
	}
	if _, err := p.expect(TokenJoin, "JOIN"); err != nil {
		return nil, err
	}

	var err error
	join.TableName, join.Alias, err = p.parseTableRef()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(TokenOn, "ON"); err != nil {
		return nil, err
	}

	left, err := p.parseQualifiedRef()
	if err != nil {
		return nil, err
	}

	op := p.current()
	if op.Type != TokenEqual {
		if isComparison(op.Type) {
			return nil, &Error{
				Code:     ErrParse,
				Pos:      op.Pos,
				Found:    op.Text,
				Expected: "=",
				Message:  "only = is supported in JOIN ON conditions, got " + op.Text,
			}
		}
		return nil, parseError(op, "= in JOIN ON condition")
	}
	p.advance()

	right, err := p.parseQualifiedRef()
	if err != nil {
		return nil, err
	}

	join.Condition = JoinCondition{Left: left, Right: right}
	return join, nil
}

// parseQualifiedRef parses alias.path
func (p *Parser) parseQualifiedRef() (QualifiedRef, error) {
	tok := p.current()
	name, err := p.parseDottedName("alias.column")
	if err != nil {
		return QualifiedRef{}, err
	}
	alias, path, ok := strings.Cut(name, ".")
	if !ok {
		return QualifiedRef{}, &Error{
			Code:     ErrParse,
			Pos:      tok.Pos,
			Found:    name,
			Expected: "alias.column",
			Message:  "use alias.column in JOIN ON conditions, got " + name,
		}
	}
	return QualifiedRef{Alias: alias, Path: path}, nil
}

// parseClauses parses WHERE, GROUP BY, ORDER BY, LIMIT and OFFSET in any
// order, each at most once. It stops at the first token that does not
// start a clause not yet seen.
func (p *Parser) parseClauses(q *Query) error {
	var seenWhere, seenGroup, seenOrder, seenLimit, seenOffset bool

	for {
		switch tok := p.current(); {
		case tok.Type == TokenWhere && !seenWhere:
			p.advance()
			expr, err := p.parseOr()
			if err != nil {
				return err
			}
			q.Filter = expr
			seenWhere = true

		case tok.Type == TokenGroup && !seenGroup:
			p.advance()
			groupBy, err := p.parseGroupBy()
			if err != nil {
				return err
			}
			q.GroupBy = groupBy
			seenGroup = true

		case tok.Type == TokenOrder && !seenOrder:
			p.advance()
			orderBy, err := p.parseOrderBy()
			if err != nil {
				return err
			}
			q.OrderBy = orderBy
			seenOrder = true

		case tok.Type == TokenLimit && !seenLimit:
			p.advance()
			limit, err := p.parseCount("LIMIT")
			if err != nil {
				return err
			}
			q.Limit = &limit
			seenLimit = true

		case tok.Type == TokenOffset && !seenOffset:
			p.advance()
			offset, err := p.parseCount("OFFSET")
			if err != nil {
				return err
			}
			q.Offset = &offset
			seenOffset = true

		default:
			return nil
		}
	}
}

// parseGroupBy parses: BY col1, col2, ...
func (p *Parser) parseGroupBy() ([]string, error) {
	if _, err := p.expect(TokenBy, "BY after GROUP"); err != nil {
		return nil, err
	}

	var columns []string
	for {
		col, err := p.parseDottedName("column name in GROUP BY")
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)

		if p.current().Type != TokenComma {
			return columns, nil
		}
		p.advance()
	}
}

// parseOrderBy parses: BY col [ASC|DESC]
func (p *Parser) parseOrderBy() (*OrderByItem, error) {
	if _, err := p.expect(TokenBy, "BY after ORDER"); err != nil {
		return nil, err
	}

	col, err := p.parseDottedName("column name in ORDER BY")
	if err != nil {
		return nil, err
	}

	item := &OrderByItem{Column: col}
	switch p.current().Type {
	case TokenAsc:
		p.advance()
	case TokenDesc:
		item.Desc = true
		p.advance()
	}
	return item, nil
}

// parseCount parses the non-negative integer after LIMIT or OFFSET
func (p *Parser) parseCount(clause string) (int64, error) {
	tok, err := p.expect(TokenNumber, "number after "+clause)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil || n < 0 {
		return 0, parseError(tok, "non-negative integer after "+clause)
	}
	return n, nil
}

// parseOr parses: and_expr (OR and_expr)*
func (p *Parser) parseOr() (Expression, error) {
	if err := p.depthCounter.Enter(); err != nil {
		return nil, p.invalid(p.current(), err)
	}
	defer p.depthCounter.Exit()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenOr, Right: right}
	}
	return left, nil
}

// parseAnd parses: comparison (AND comparison)*
func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: TokenAnd, Right: right}
	}
	return left, nil
}

// parseComparison parses: primary [op primary]
func (p *Parser) parseComparison() (Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	op := p.current().Type
	if !isComparison(op) {
		return left, nil
	}
	p.advance()

	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return &ComparisonExpr{Left: left, Operator: op, Right: right}, nil
}

func isComparison(t TokenType) bool {
	switch t {
	case TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual:
		return true
	}
	return false
}

// parsePrimary parses a literal, a field or a parenthesized expression
func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		n, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, parseError(tok, "number")
		}
		p.advance()
		return &LiteralExpr{Value: document.Number(n)}, nil
	case TokenString:
		p.advance()
		return &LiteralExpr{Value: document.String(tok.Value)}, nil
	case TokenTrue:
		p.advance()
		return &LiteralExpr{Value: document.Bool(true)}, nil
	case TokenFalse:
		p.advance()
		return &LiteralExpr{Value: document.Bool(false)}, nil
	case TokenNull:
		p.advance()
		return &LiteralExpr{Value: document.Null()}, nil
	case TokenIdent:
		col, err := p.parseDottedName("column name")
		if err != nil {
			return nil, err
		}
		if err := ValidateColumnName(col); err != nil {
			return nil, p.invalid(tok, err)
		}
		return &ColumnRef{Column: col}, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, parseError(tok, "expression")
}
