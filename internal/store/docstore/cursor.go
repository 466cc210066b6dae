package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
)

// Find returns a cursor over the documents of collection that match filter,
// in insertion order, each shaped by projection (nil keeps whole documents).
//
// Rows are read from SQLite one at a time as the cursor advances; nothing is
// buffered beyond what the driver does. The caller must Close the cursor.
func (s *Store) Find(ctx context.Context, collection string, filter, projection bson.D) (*Cursor, error) {
	proj, err := compileProjection(projection)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}

	query, args, err := compileQuery(collection, filter)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	slog.Debug("docstore find", "collection", collection, "sql", query, "params", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return &Cursor{rows: rows, proj: proj}, nil
}

// Cursor is a forward-only iterator over the results of Find.
//
// Usage mirrors a MongoDB cursor:
//
//	for cur.Next(ctx) {
//	    raw := cur.Current()
//	}
//	if err := cur.Err(); err != nil { ... }
//	cur.Close(ctx)
type Cursor struct {
	rows    *sql.Rows
	proj    projection
	current bson.Raw
	err     error
	closed  bool
}

// Next advances to the next document. It returns false at the end of the
// results, on error, or once the cursor is closed; Err tells them apart.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.closed || c.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		c.err = err
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		c.current = nil
		return false
	}

	var body string
	if err := c.rows.Scan(&body); err != nil {
		c.err = fmt.Errorf("scan document: %w", err)
		return false
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(body), false, &doc); err != nil {
		c.err = fmt.Errorf("decode document: %w", err)
		return false
	}

	raw, err := bson.Marshal(c.proj.apply(doc))
	if err != nil {
		c.err = fmt.Errorf("encode document: %w", err)
		return false
	}
	c.current = raw
	return true
}

// Current returns the document the last successful Next moved to. The bytes
// stay valid after the next call to Next.
func (c *Cursor) Current() bson.Raw {
	return c.current
}

// Err returns the error that stopped iteration, if any.
func (c *Cursor) Err() error {
	return c.err
}

// Close releases the underlying rows. It is safe to call more than once.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.current = nil
	return c.rows.Close()
}
