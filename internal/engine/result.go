package engine

import (
	"context"
	"iter"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/store"
)

// Result is the lazy, forward-only sequence of records a query matched,
// together with the declared output fields.
//
// Usage:
//
//	res, err := engine.Execute(ctx, conn, spec)
//	if err != nil { ... }
//	defer res.Close(ctx)
//	for res.Next(ctx) {
//	    v := res.Doc().GetValue(path)
//	}
//	if err := res.Err(); err != nil { ... }
type Result struct {
	fields     compiler.Fields
	collection string
	cur        store.Cursor
	doc        *Doc
	err        error
	started    bool
	closed     bool
}

// Fields returns the ordered alias → path mapping. It is empty in wildcard
// mode, where Doc.GetFieldNames supplies the columns per record.
func (r *Result) Fields() compiler.Fields {
	return r.fields
}

// Wildcard reports whether the query selected every field.
func (r *Result) Wildcard() bool {
	return r.fields.Len() == 0
}

// Next advances to the next record. It returns false at the end of the
// records, on error, or after Close; the cursor is released in all three
// cases. Check Err after Next returns false.
func (r *Result) Next(ctx context.Context) bool {
	if r.closed {
		return false
	}
	r.started = true

	if !r.cur.Next(ctx) {
		if err := r.cur.Err(); err != nil {
			r.err = &ExecutionError{Op: "iterate", Collection: r.collection, Err: err}
		}
		r.release(ctx)
		return false
	}

	doc, err := NewDoc(r.cur.Current())
	if err != nil {
		r.err = &ExecutionError{Op: "decode", Collection: r.collection, Err: err}
		r.release(ctx)
		return false
	}
	r.doc = doc
	return true
}

// Doc returns the record the last successful Next moved to.
func (r *Result) Doc() *Doc {
	return r.doc
}

// Err returns the error that ended iteration, if any.
func (r *Result) Err() error {
	return r.err
}

// Close releases the store cursor. Closing early abandons the remaining
// records. Close is safe to call more than once and after exhaustion.
func (r *Result) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.doc = nil
	if err := r.cur.Close(ctx); err != nil {
		return &ExecutionError{Op: "close", Collection: r.collection, Err: err}
	}
	return nil
}

func (r *Result) release(ctx context.Context) {
	if err := r.Close(ctx); err != nil && r.err == nil {
		r.err = err
	}
}

// All returns an iterator over the remaining records. The cursor is closed
// when the loop finishes or the body breaks out of it. An iteration error
// is yielded once, as the final pair, with a nil Doc.
//
// A Result can be ranged over once; a second All yields ErrResultConsumed.
func (r *Result) All(ctx context.Context) iter.Seq2[*Doc, error] {
	return func(yield func(*Doc, error) bool) {
		if r.started || r.closed {
			yield(nil, ErrResultConsumed)
			return
		}
		defer r.Close(ctx)

		for r.Next(ctx) {
			if !yield(r.doc, nil) {
				return
			}
		}
		if r.err != nil {
			yield(nil, r.err)
		}
	}
}
