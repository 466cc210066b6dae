package compiler

import (
	"iter"
	"slices"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/ir"
)

// QuerySpec is the translator's output: everything the executor needs to run
// one query against a document store.
//
// A QuerySpec is never modified after Compile returns it. Filter and
// Projection are handed to the store as-is; callers must not mutate them.
type QuerySpec struct {
	// Collection is the collection to query.
	Collection string

	// Filter is the native filter document. It is empty (never nil) when
	// the query has no WHERE clause and so matches every record.
	Filter bson.D

	// Projection is the native projection document, nil in wildcard mode.
	Projection bson.D

	// Fields is the ordered SELECT list, empty in wildcard mode.
	Fields Fields
}

// Wildcard reports whether the query selected every field (SELECT *).
func (s *QuerySpec) Wildcard() bool {
	return s.Fields.Len() == 0
}

// Field is one output column: the name it is shown under and the path of the
// value it shows.
type Field struct {
	Alias string
	Path  ir.Path
}

// Fields is an ordered, read-only mapping from output alias to field path.
// The zero value is the empty mapping, which means wildcard mode.
//
// Fields is safe for concurrent reads; accessors hand out copies.
type Fields struct {
	entries []Field
}

// NewFields builds a Fields from entries in declaration order. The entries
// are copied.
func NewFields(entries ...Field) Fields {
	out := make([]Field, len(entries))
	for i, e := range entries {
		out[i] = Field{Alias: e.Alias, Path: slices.Clone(e.Path)}
	}
	return Fields{entries: out}
}

// Len returns the number of output columns.
func (f Fields) Len() int {
	return len(f.entries)
}

// At returns the i-th column.
func (f Fields) At(i int) Field {
	e := f.entries[i]
	return Field{Alias: e.Alias, Path: slices.Clone(e.Path)}
}

// Aliases returns the column names in declaration order.
func (f Fields) Aliases() []string {
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Alias
	}
	return out
}

// Path returns the field path shown under alias.
func (f Fields) Path(alias string) (ir.Path, bool) {
	for _, e := range f.entries {
		if e.Alias == alias {
			return slices.Clone(e.Path), true
		}
	}
	return nil, false
}

// All iterates the columns in declaration order.
func (f Fields) All() iter.Seq2[string, ir.Path] {
	return func(yield func(string, ir.Path) bool) {
		for _, e := range f.entries {
			if !yield(e.Alias, slices.Clone(e.Path)) {
				return
			}
		}
	}
}
