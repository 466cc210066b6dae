package querysql

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlmongo/internal/queryir"
)

// ParseErrorCode categorizes parse errors.
type ParseErrorCode string

const (
	// ErrCodeUnexpectedToken indicates a token that does not fit the grammar
	// at its position.
	ErrCodeUnexpectedToken ParseErrorCode = "UNEXPECTED_TOKEN"

	// ErrCodeUnterminatedString indicates a string literal or quoted
	// identifier that runs to the end of the input.
	ErrCodeUnterminatedString ParseErrorCode = "UNTERMINATED_STRING"

	// ErrCodeUnknownOperator indicates a run of operator characters that is
	// not a comparison operator (==, =<, !, ...).
	ErrCodeUnknownOperator ParseErrorCode = "UNKNOWN_OPERATOR"

	// ErrCodeMalformedLiteral indicates a number or date literal that cannot
	// be read.
	ErrCodeMalformedLiteral ParseErrorCode = "MALFORMED_LITERAL"

	// ErrCodeMissingClause indicates a missing SELECT or FROM clause.
	ErrCodeMissingClause ParseErrorCode = "MISSING_CLAUSE"

	// ErrCodeUnsupported indicates valid SQL that this subset does not
	// implement. Errors with this code wrap queryir.ErrUnsupported.
	ErrCodeUnsupported ParseErrorCode = "UNSUPPORTED"
)

// ParseError reports malformed query text.
//
// Token is the offending token as written in the input (empty at end of
// input) and Pos is its 0-based byte offset.
type ParseError struct {
	Code    ParseErrorCode
	Message string
	Token   string
	Pos     int
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("parse error at position %d near %q: %s", e.Pos, e.Token, e.Message)
}

// Unwrap returns the wrapped cause, queryir.ErrUnsupported for unsupported
// constructs and nil otherwise.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsUnsupported returns true if err reports an unsupported construct.
// Uses errors.As to handle wrapped errors.
func IsUnsupported(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeUnsupported
	}
	return false
}

func newParseError(code ParseErrorCode, tok token, format string, args ...any) *ParseError {
	return &ParseError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Token:   tok.text,
		Pos:     tok.pos,
	}
}

func unsupported(tok token, feature string) *ParseError {
	return &ParseError{
		Code:    ErrCodeUnsupported,
		Message: feature + " not supported",
		Token:   tok.text,
		Pos:     tok.pos,
		Err:     queryir.ErrUnsupported,
	}
}
