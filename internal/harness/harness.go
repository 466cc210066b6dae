package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/fixture"
	"github.com/roach88/sqlmongo/internal/format"
	"github.com/roach88/sqlmongo/internal/querysql"
	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/store/docstore"
	"github.com/roach88/sqlmongo/internal/testutil"
)

// ErrCodeExecution is the code of a step that failed in the store.
const ErrCodeExecution = "EXECUTION"

// render is how values are shown in results.
var render = format.Config{NullValue: "null", DateLayout: time.RFC3339}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store for isolation.
// Sequential ids keep generated _id values reproducible.
//
// Execution flow:
// 1. Create fresh in-memory store
// 2. Seed fixtures in order
// 3. Run each step and compare it with its expectations
// 4. Return result with pass/fail, step outcomes and errors
//
// The returned error reports a scenario that could not be set up; failed
// expectations are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	s, err := docstore.Open(":memory:", docstore.WithIDGenerator(testutil.NewSequentialIDs("")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	conn := store.OpenDocstore(s)
	ctx := context.Background()
	defer conn.Close(ctx)

	if err := seed(ctx, conn, scenario.Fixtures); err != nil {
		return nil, err
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		sr := runStep(ctx, conn, step.Query)
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(step.Expect, sr) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i+1, step.Query, msg))
		}
	}
	return result, nil
}

func seed(ctx context.Context, conn store.Conn, fixtures []Fixture) error {
	for i, f := range fixtures {
		docs, err := loadFixture(f)
		if err != nil {
			return fmt.Errorf("fixtures[%d]: %w", i, err)
		}
		if _, err := conn.Insert(ctx, f.Collection, docs); err != nil {
			return fmt.Errorf("fixtures[%d]: seed %s: %w", i, f.Collection, err)
		}
	}
	return nil
}

func loadFixture(f Fixture) ([]bson.D, error) {
	if f.File != "" {
		return fixture.LoadFile(f.File)
	}
	data, err := yaml.Marshal(&f.Documents)
	if err != nil {
		return nil, fmt.Errorf("encode inline documents: %w", err)
	}
	return fixture.Load(fixture.FormatYAML, "documents", data)
}

// runStep runs one query and renders every record.
func runStep(ctx context.Context, conn store.Conn, query string) StepResult {
	sr := StepResult{Query: query, Rows: [][]string{}}

	res, err := engine.Run(ctx, conn, query)
	if err != nil {
		sr.Error = errorCode(err)
		return sr
	}
	defer res.Close(ctx)

	fields := res.Fields()
	if !res.Wildcard() {
		sr.Columns = fields.Aliases()
	}

	for doc, err := range res.All(ctx) {
		if err != nil {
			sr.Error = errorCode(err)
			return sr
		}
		row := []string{}
		if res.Wildcard() {
			for _, f := range doc.Document() {
				row = append(row, f.Key+": "+format.Value(f.Value, render))
			}
		} else {
			for _, path := range fields.All() {
				row = append(row, format.Value(doc.GetValue(path), render))
			}
		}
		sr.Rows = append(sr.Rows, row)
	}
	return sr
}

// errorCode names the layer an error came from by its code.
func errorCode(err error) string {
	var pe *querysql.ParseError
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var te *compiler.TranslationError
	if errors.As(err, &te) {
		return string(te.Code)
	}
	if engine.IsExecutionError(err) {
		return ErrCodeExecution
	}
	return "ERROR"
}
