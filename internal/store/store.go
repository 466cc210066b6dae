package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Conn is an open connection to a document store.
type Conn interface {
	// Find issues one query against collection. A nil projection returns
	// whole documents. The returned cursor must be closed.
	Find(ctx context.Context, collection string, filter, projection bson.D) (Cursor, error)

	// Insert stores docs in collection and returns how many were written.
	Insert(ctx context.Context, collection string, docs []bson.D) (int, error)

	// Collections lists the collection names, sorted.
	Collections(ctx context.Context) ([]string, error)

	// Drop removes a collection and its documents.
	Drop(ctx context.Context, collection string) error

	Close(ctx context.Context) error
}

// Cursor is a forward-only stream of raw records.
type Cursor interface {
	// Next advances to the next record and reports whether there is one.
	Next(ctx context.Context) bool

	// Current returns the record Next moved to.
	Current() bson.Raw

	// Err returns the error that ended iteration, if any.
	Err() error

	Close(ctx context.Context) error
}
