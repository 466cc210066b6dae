package harness

import (
	"fmt"
	"slices"
	"strings"
)

// checkExpect compares a step's outcome with its expectations and returns
// one message per mismatch.
func checkExpect(e Expect, sr StepResult) []string {
	if e.Error != "" {
		if sr.Error != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %s", e.Error, describeOutcome(sr))}
		}
		return nil
	}
	if sr.Error != "" {
		return []string{fmt.Sprintf("unexpected error %s", sr.Error)}
	}

	var msgs []string
	if len(e.Columns) > 0 && !slices.Equal(e.Columns, sr.Columns) {
		msgs = append(msgs, fmt.Sprintf("columns: expected %v, got %v", e.Columns, sr.Columns))
	}
	if e.Count != nil && *e.Count != len(sr.Rows) {
		msgs = append(msgs, fmt.Sprintf("count: expected %d, got %d", *e.Count, len(sr.Rows)))
	}
	if e.rowsSet {
		msgs = append(msgs, compareRows(e.Rows, sr.Rows)...)
	}
	return msgs
}

func compareRows(want, got [][]string) []string {
	var msgs []string
	for i := 0; i < max(len(want), len(got)); i++ {
		switch {
		case i >= len(got):
			msgs = append(msgs, fmt.Sprintf("row %d: expected %s, got nothing", i+1, formatRow(want[i])))
		case i >= len(want):
			msgs = append(msgs, fmt.Sprintf("row %d: unexpected %s", i+1, formatRow(got[i])))
		case !slices.Equal(want[i], got[i]):
			msgs = append(msgs, fmt.Sprintf("row %d: expected %s, got %s", i+1, formatRow(want[i]), formatRow(got[i])))
		}
	}
	return msgs
}

func formatRow(row []string) string {
	quoted := make([]string, len(row))
	for i, cell := range row {
		quoted[i] = fmt.Sprintf("%q", cell)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func describeOutcome(sr StepResult) string {
	if sr.Error != "" {
		return sr.Error
	}
	return fmt.Sprintf("%d row(s)", len(sr.Rows))
}
