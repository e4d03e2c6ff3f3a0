package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var keywords = map[string]TokenType{
	"SELECT": TokenSelect,
	"FROM":   TokenFrom,
	"WHERE":  TokenWhere,
	"AND":    TokenAnd,
	"OR":     TokenOr,
	"ORDER":  TokenOrder,
	"BY":     TokenBy,
	"ASC":    TokenAsc,
	"DESC":   TokenDesc,
	"LIMIT":  TokenLimit,
	"OFFSET": TokenOffset,
	"TRUE":   TokenTrue,
	"FALSE":  TokenFalse,
	"NULL":   TokenNull,
	"JOIN":   TokenJoin,
	"LEFT":   TokenLeft,
	"RIGHT":  TokenRight,
	"INNER":  TokenInner,
	"FULL":   TokenFull,
	"OUTER":  TokenOuter,
	"ON":     TokenOn,
	"AS":     TokenAs,
	"GROUP":  TokenGroup,
}

// Lexer tokenizes query strings
type Lexer struct {
	input string
	pos   int  // offset of ch
	next  int  // offset after ch
	ch    rune // current character, 0 at end of input
}

// NewLexer creates a new lexer
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// readChar reads the next character
func (l *Lexer) readChar() {
	l.pos = l.next
	if l.next >= len(l.input) {
		l.ch = 0
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.next:])
	l.ch = r
	l.next += size
}

// peekChar looks at the next character without advancing
func (l *Lexer) peekChar() rune {
	if l.next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.next:])
	return r
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.ch) {
		l.readChar()
	}
}

// readString reads a quoted string. A backslash takes the following
// character literally. An unterminated string ends at end of input.
func (l *Lexer) readString(quote rune) string {
	var result strings.Builder
	l.readChar() // skip opening quote

	for !l.atEnd() && l.ch != quote {
		if l.ch == '\\' {
			l.readChar()
			if l.atEnd() {
				break
			}
		}
		result.WriteRune(l.ch)
		l.readChar()
	}

	if !l.atEnd() {
		l.readChar() // skip closing quote
	}
	return result.String()
}

// readNumber reads digits with at most one decimal point, and an optional leading minus
func (l *Lexer) readNumber() string {
	start := l.pos
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos]
}

// readIdentifier reads letters, digits and underscores. Dots are separate tokens.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.atEnd() && (unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_') {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

// NextToken returns the next token, or an error for an unrecognized character
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	single := func(t TokenType) Token {
		text := string(l.ch)
		l.readChar()
		return Token{Type: t, Value: text, Text: text, Pos: start}
	}
	double := func(t TokenType) Token {
		l.readChar()
		l.readChar()
		text := l.input[start:l.pos]
		return Token{Type: t, Value: text, Text: text, Pos: start}
	}

	if l.atEnd() {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	switch l.ch {
	case '=':
		return single(TokenEqual), nil
	case '!':
		if l.peekChar() == '=' {
			return double(TokenNotEqual), nil
		}
		return Token{}, syntaxError(start, "!")
	case '<':
		if l.peekChar() == '=' {
			return double(TokenLessEqual), nil
		}
		return single(TokenLess), nil
	case '>':
		if l.peekChar() == '=' {
			return double(TokenGreaterEqual), nil
		}
		return single(TokenGreater), nil
	case ',':
		return single(TokenComma), nil
	case '.':
		return single(TokenDot), nil
	case '*':
		return single(TokenStar), nil
	case '(':
		return single(TokenLeftParen), nil
	case ')':
		return single(TokenRightParen), nil
	case ';':
		return single(TokenSemicolon), nil
	case '[':
		return single(TokenLeftBracket), nil
	case ']':
		return single(TokenRightBracket), nil
	case '\'', '"':
		value := l.readString(l.ch)
		return Token{Type: TokenString, Value: value, Text: l.input[start:l.pos], Pos: start}, nil
	}

	if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
		text := l.readNumber()
		return Token{Type: TokenNumber, Value: text, Text: text, Pos: start}, nil
	}

	if isIdentStart(l.ch) {
		text := l.readIdentifier()
		upper := strings.ToUpper(text)
		if typ, ok := keywords[upper]; ok {
			return Token{Type: typ, Value: upper, Text: text, Pos: start}, nil
		}
		return Token{Type: TokenIdent, Value: text, Text: text, Pos: start}, nil
	}

	return Token{}, syntaxError(start, string(l.ch))
}

// Tokenize converts a query string into tokens ending with TokenEOF
func Tokenize(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}
