package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the stage that rejected a query
type ErrorCode int

const (
	// ErrTokenize indicates an unrecognized character in the query text
	ErrTokenize ErrorCode = iota + 1
	// ErrParse indicates the token stream does not match the grammar
	ErrParse
	// ErrExecute indicates a failure while evaluating a parsed query
	ErrExecute
)

// String returns the stage name
func (c ErrorCode) String() string {
	switch c {
	case ErrTokenize:
		return "syntax error"
	case ErrParse:
		return "parse error"
	case ErrExecute:
		return "execution error"
	default:
		return "error"
	}
}

// Error is returned by Tokenize, Parse and Execute
type Error struct {
	Code ErrorCode
	// Pos is the byte offset in the query text, -1 when unknown
	Pos int
	// Found is the offending character or token text
	Found string
	// Expected names the construct the parser was looking for
	Expected string
	Message  string
	Cause    error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Pos >= 0 {
		fmt.Fprintf(&b, " at position %d", e.Pos)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

func codeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// IsSyntaxError reports whether err came from the tokenizer
func IsSyntaxError(err error) bool { return codeOf(err) == ErrTokenize }

// IsParseError reports whether err came from the parser
func IsParseError(err error) bool { return codeOf(err) == ErrParse }

// IsExecError reports whether err came from query execution
func IsExecError(err error) bool { return codeOf(err) == ErrExecute }

func syntaxError(pos int, ch string) *Error {
	return &Error{
		Code:    ErrTokenize,
		Pos:     pos,
		Found:   ch,
		Message: fmt.Sprintf("unexpected character %q", ch),
	}
}

func parseError(tok Token, expected string) *Error {
	found := tok.Text
	if tok.Type == TokenEOF {
		found = "end of input"
	}
	return &Error{
		Code:     ErrParse,
		Pos:      tok.Pos,
		Found:    found,
		Expected: expected,
		Message:  fmt.Sprintf("expected %s, got %s", expected, describe(tok)),
	}
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Text)
}

func execError(cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    ErrExecute,
		Pos:     -1,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
