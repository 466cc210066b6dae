package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/fixture"
	"github.com/roach88/sqlmongo/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("UNEXPECTED_TOKEN", "invalid query", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNEXPECTED_TOKEN", resp.Error.Code)
	assert.Equal(t, "invalid query", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(ImportResult{Collection: "c", Files: []string{"a.json"}, Documents: 2})
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 document(s) from 1 file(s) into c\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("EXECUTION", "query failed", "cursor lost")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [EXECUTION]: query failed")
	assert.Contains(t, buf.String(), "Details: cursor lost")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Loaded %d document(s) from %s", 3, "a.yaml")

			assert.Empty(t, out.String(), "diagnostics never go to the JSON stream")
			if tt.wantLog {
				assert.Equal(t, "Loaded 3 document(s) from a.yaml\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	cause := &compiler.TranslationError{Code: compiler.ErrCodeInvalidPath, Message: "bad"}

	text := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}
	err := text.Fail(ExitCommandError, "invalid query", cause)
	assert.False(t, IsReported(err))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, text.Writer.(*bytes.Buffer).String(), "text errors are printed by the caller")

	buf := &bytes.Buffer{}
	js := &OutputFormatter{Format: "json", Writer: buf}
	err = js.Fail(ExitCommandError, "invalid query", cause)
	assert.True(t, IsReported(err))
	assert.ErrorIs(t, err, cause)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "INVALID_PATH", resp.Error.Code)
	assert.Equal(t, "invalid query: INVALID_PATH: bad", resp.Error.Message)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"translation", fmt.Errorf("x: %w", &compiler.TranslationError{Code: compiler.ErrCodeUnsupported}), "UNSUPPORTED"},
		{"execution", &engine.ExecutionError{Op: "find", Err: errors.New("down")}, ErrCodeExecution},
		{"missing setting", &config.MissingError{Key: "uri"}, ErrCodeMissingSetting},
		{"argument", &config.ArgError{Arg: "x"}, ErrCodeInvalidArgument},
		{"fixture", &fixture.Error{File: "a.json"}, ErrCodeFixture},
		{"scheme", fmt.Errorf("%w: redis", store.ErrUnknownScheme), ErrCodeUnknownScheme},
		{"other", errors.New("boom"), ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "usage")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "x", nil))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "usage", NewExitError(ExitCommandError, "usage").Error())
	assert.Equal(t, "failed to connect: refused", WrapExitError(ExitFailure, "failed to connect", errors.New("refused")).Error())
}
