package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlmongo/internal/queryir"
)

// TranslationErrorCode categorizes translation errors.
type TranslationErrorCode string

const (
	// ErrCodeUnsupported indicates a construct the native query model can
	// not express. Errors with this code wrap queryir.ErrUnsupported.
	ErrCodeUnsupported TranslationErrorCode = "UNSUPPORTED"

	// ErrCodeInvalidLiteral indicates a literal whose shape does not fit its
	// operator (a list outside IN, a nested list inside IN, NULL in a range).
	ErrCodeInvalidLiteral TranslationErrorCode = "INVALID_LITERAL"

	// ErrCodeDuplicateAlias indicates two SELECT columns with the same name.
	ErrCodeDuplicateAlias TranslationErrorCode = "DUPLICATE_ALIAS"

	// ErrCodeInvalidPath indicates a field path the store cannot address.
	ErrCodeInvalidPath TranslationErrorCode = "INVALID_PATH"

	// ErrCodeInvalidQuery indicates a structurally broken query tree, such
	// as an empty collection name or a logical node missing an operand.
	ErrCodeInvalidQuery TranslationErrorCode = "INVALID_QUERY"
)

// TranslationError reports a syntactically valid query that cannot be turned
// into a native filter and projection.
type TranslationError struct {
	// Code identifies the error category.
	Code TranslationErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the field path involved, if any.
	Path string

	// Err is the wrapped cause (queryir.ErrUnsupported for ErrCodeUnsupported).
	Err error
}

// Error implements the error interface.
func (e *TranslationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *TranslationError) Unwrap() error {
	return e.Err
}

// IsTranslationError returns true if err is or wraps a *TranslationError.
func IsTranslationError(err error) bool {
	var te *TranslationError
	return errors.As(err, &te)
}

func newTranslationError(code TranslationErrorCode, path string, format string, args ...any) *TranslationError {
	te := &TranslationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
	if code == ErrCodeUnsupported {
		te.Err = queryir.ErrUnsupported
	}
	return te
}

// problemCodes maps structural problems found by queryir.Validate to
// translation error codes.
var problemCodes = map[string]TranslationErrorCode{
	queryir.ProblemEmptyCollection: ErrCodeInvalidQuery,
	queryir.ProblemInvalidPath:     ErrCodeInvalidPath,
	queryir.ProblemDuplicateAlias:  ErrCodeDuplicateAlias,
	queryir.ProblemNilPredicate:    ErrCodeInvalidQuery,
	queryir.ProblemUnknownOperator: ErrCodeUnsupported,
	queryir.ProblemUnknownNode:     ErrCodeUnsupported,
}

func fromProblem(p queryir.Problem) *TranslationError {
	code, ok := problemCodes[p.Code]
	if !ok {
		code = ErrCodeInvalidQuery
	}
	return newTranslationError(code, p.Path, "%s", p.Message)
}
