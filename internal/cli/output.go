package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/fixture"
	"github.com/roach88/sqlmongo/internal/querysql"
	"github.com/roach88/sqlmongo/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Execution failure (connection lost, store error, unwritable output)
	ExitCommandError = 2 // Command error (usage, missing setting, unparsable or untranslatable query)
)

// Error codes reported for errors that carry no code of their own.
const (
	ErrCodeGeneric         = "ERROR"
	ErrCodeExecution       = "EXECUTION"
	ErrCodeMissingSetting  = "MISSING_SETTING"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeUnknownScheme   = "UNKNOWN_SCHEME"
	ErrCodeFixture         = "FIXTURE"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	// Reported is set when the error was already written as a JSON
	// response and must not be printed again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already written to the output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// ErrorCode returns the code shown for err: the parse or translation error
// code when there is one, otherwise a code for the failing layer.
func ErrorCode(err error) string {
	var pe *querysql.ParseError
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var te *compiler.TranslationError
	if errors.As(err, &te) {
		return string(te.Code)
	}
	var fe *fixture.Error
	switch {
	case errors.As(err, &fe):
		return ErrCodeFixture
	case engine.IsExecutionError(err):
		return ErrCodeExecution
	case config.IsMissingError(err):
		return ErrCodeMissingSetting
	case config.IsArgError(err):
		return ErrCodeInvalidArgument
	case errors.Is(err, store.ErrUnknownScheme):
		return ErrCodeUnknownScheme
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text status output for CLI commands.
// Query results are written by the format package.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "UNEXPECTED_TOKEN", "EXECUTION", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail returns err with an exit code. In JSON mode the error is written as
// a response first and marked reported; in text mode the caller of Execute
// prints it.
func (f *OutputFormatter) Fail(code int, message string, err error) error {
	exitErr := WrapExitError(code, message, err)
	if f.Format == "json" {
		_ = f.Error(ErrorCode(err), exitErr.Error(), nil)
		exitErr.Reported = true
	}
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
