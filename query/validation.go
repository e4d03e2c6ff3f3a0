package query

import (
	"errors"
	"fmt"
)

// Limits applied to query text before and during parsing
const (
	// MaxQueryLength is the maximum query text length in bytes
	MaxQueryLength = 64 * 1024

	// MaxTokens is the maximum number of tokens in a query
	MaxTokens = 2000

	// MaxExpressionDepth is the maximum nesting depth of WHERE expressions
	MaxExpressionDepth = 100

	// MaxColumnNameLength is the maximum length of a dotted field path
	MaxColumnNameLength = 512

	// MaxTableNameLength is the maximum length of a table path
	MaxTableNameLength = 1024
)

var (
	ErrQueryTooLong      = errors.New("query too long")
	ErrTooManyTokens     = errors.New("too many tokens in query")
	ErrExpressionTooDeep = errors.New("expression nesting too deep")
	ErrColumnNameTooLong = errors.New("column name too long")
	ErrTableNameTooLong  = errors.New("table name too long")
	ErrEmptyTableName    = errors.New("table name cannot be empty")
)

// ValidateQuery checks the raw query text
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrQueryTooLong, len(query), MaxQueryLength)
	}
	return nil
}

// ValidateTableName checks a FROM or JOIN table path
func ValidateTableName(name string) error {
	if name == "" {
		return ErrEmptyTableName
	}
	if len(name) > MaxTableNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrTableNameTooLong, len(name), MaxTableNameLength)
	}
	return nil
}

// ValidateColumnName checks a field path length
func ValidateColumnName(name string) error {
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("%w: %d chars (max %d)", ErrColumnNameTooLong, len(name), MaxColumnNameLength)
	}
	return nil
}

// ValidateTokens checks the token count
func ValidateTokens(tokens []Token) error {
	if len(tokens) > MaxTokens {
		return fmt.Errorf("%w: %d tokens (max %d)", ErrTooManyTokens, len(tokens), MaxTokens)
	}
	return nil
}

// ExpressionDepthCounter tracks expression nesting depth while parsing
type ExpressionDepthCounter struct {
	depth    int
	maxDepth int
}

// NewExpressionDepthCounter creates a counter limited to MaxExpressionDepth
func NewExpressionDepthCounter() *ExpressionDepthCounter {
	return &ExpressionDepthCounter{maxDepth: MaxExpressionDepth}
}

// Enter increments depth and returns an error past the limit
func (c *ExpressionDepthCounter) Enter() error {
	c.depth++
	if c.depth > c.maxDepth {
		return fmt.Errorf("%w: %d (max %d)", ErrExpressionTooDeep, c.depth, c.maxDepth)
	}
	return nil
}

// Exit decrements depth
func (c *ExpressionDepthCounter) Exit() {
	c.depth--
}
