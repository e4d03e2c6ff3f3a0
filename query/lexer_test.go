package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "simple select",
			input: "SELECT * FROM data",
			want:  []TokenType{TokenSelect, TokenStar, TokenFrom, TokenIdent, TokenEOF},
		},
		{
			name:  "keywords are case-insensitive",
			input: "select name from data where x = 1",
			want:  []TokenType{TokenSelect, TokenIdent, TokenFrom, TokenIdent, TokenWhere, TokenIdent, TokenEqual, TokenNumber, TokenEOF},
		},
		{
			name:  "operators",
			input: "= != < > <= >=",
			want:  []TokenType{TokenEqual, TokenNotEqual, TokenLess, TokenGreater, TokenLessEqual, TokenGreaterEqual, TokenEOF},
		},
		{
			name:  "dotted path with index",
			input: "data.users.0.name",
			want:  []TokenType{TokenIdent, TokenDot, TokenIdent, TokenDot, TokenNumber, TokenDot, TokenIdent, TokenEOF},
		},
		{
			name:  "bracket index",
			input: "items[2]",
			want:  []TokenType{TokenIdent, TokenLeftBracket, TokenNumber, TokenRightBracket, TokenEOF},
		},
		{
			name:  "join",
			input: "LEFT OUTER JOIN data.o o ON u.id = o.uid",
			want: []TokenType{TokenLeft, TokenOuter, TokenJoin, TokenIdent, TokenDot, TokenIdent, TokenIdent, TokenOn,
				TokenIdent, TokenDot, TokenIdent, TokenEqual, TokenIdent, TokenDot, TokenIdent, TokenEOF},
		},
		{
			name:  "punctuation",
			input: "COUNT(*), x;",
			want:  []TokenType{TokenIdent, TokenLeftParen, TokenStar, TokenRightParen, TokenComma, TokenIdent, TokenSemicolon, TokenEOF},
		},
		{
			name:  "empty",
			input: "   ",
			want:  []TokenType{TokenEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tokenTypes(tokens))
		})
	}
}

func TestTokenizeLiterals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		value string
	}{
		{"single quoted", "'hello world'", TokenString, "hello world"},
		{"double quoted", `"x y"`, TokenString, "x y"},
		{"escaped quote", `'it\'s'`, TokenString, "it's"},
		{"escaped backslash", `'a\\b'`, TokenString, `a\b`},
		{"unterminated string", `'open`, TokenString, "open"},
		{"integer", "42", TokenNumber, "42"},
		{"decimal", "3.14", TokenNumber, "3.14"},
		{"negative", "-7", TokenNumber, "-7"},
		{"keyword value is upper case", "select", TokenSelect, "SELECT"},
		{"identifier keeps case", "userName", TokenIdent, "userName"},
		{"unicode identifier", "名前", TokenIdent, "名前"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, tokens, 2)
			assert.Equal(t, tt.typ, tokens[0].Type)
			assert.Equal(t, tt.value, tokens[0].Value)
		})
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens, err := Tokenize("SELECT a FROM b")
	require.NoError(t, err)

	positions := make([]int, len(tokens))
	for i, tok := range tokens {
		positions[i] = tok.Pos
	}
	assert.Equal(t, []int{0, 7, 9, 14, 15}, positions)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"bare bang", "a ! b", 2},
		{"unknown character", "SELECT # FROM x", 7},
		{"plus", "a + b", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.True(t, IsSyntaxError(err))

			var qerr *Error
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, tt.pos, qerr.Pos)
		})
	}
}
