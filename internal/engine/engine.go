package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/store"
)

// Execute runs spec against conn and returns the matching records.
//
// One find is issued: spec.Filter always, spec.Projection only when the
// query is not a wildcard. The caller owns the returned Result and must
// drain it or Close it.
func Execute(ctx context.Context, conn store.Conn, spec *compiler.QuerySpec) (*Result, error) {
	projection := spec.Projection
	if spec.Wildcard() {
		projection = nil
	}

	cur, err := conn.Find(ctx, spec.Collection, spec.Filter, projection)
	if err != nil {
		return nil, &ExecutionError{Op: "find", Collection: spec.Collection, Err: err}
	}

	slog.Debug("query executed",
		"collection", spec.Collection,
		"fields", spec.Fields.Len(),
		"wildcard", spec.Wildcard(),
	)

	return &Result{
		fields:     spec.Fields,
		collection: spec.Collection,
		cur:        cur,
	}, nil
}

// Run parses, compiles and executes query text in one step. Errors are
// *querysql.ParseError, *compiler.TranslationError or *ExecutionError.
func Run(ctx context.Context, conn store.Conn, text string) (*Result, error) {
	spec, err := compiler.CompileString(text)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, conn, spec)
}
