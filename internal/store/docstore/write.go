package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Insert stores docs in collection, in order, inside one transaction, and
// returns the number of documents written.
//
// A document without an _id gets one from the store's IDGenerator. _id is always moved
// to the front of the stored document. Inserting an _id that already exists
// in the collection fails and nothing from the batch is kept.
func (s *Store) Insert(ctx context.Context, collection string, docs []bson.D) (int, error) {
	if collection == "" {
		return 0, fmt.Errorf("insert: collection name is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (collection, id, body)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("insert: prepare: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		doc, err := withID(doc, s.ids)
		if err != nil {
			return 0, fmt.Errorf("insert document %d: %w", i, err)
		}
		id, err := idKey(doc[0].Value)
		if err != nil {
			return 0, fmt.Errorf("insert document %d: %w", i, err)
		}
		body, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return 0, fmt.Errorf("insert document %d: encode: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, id, string(body)); err != nil {
			return 0, fmt.Errorf("insert document %d (_id %s): %w", i, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert: commit: %w", err)
	}
	return len(docs), nil
}

// withID returns doc with _id as its first element, generating one when
// the document has none. doc itself is not modified.
func withID(doc bson.D, ids IDGenerator) (bson.D, error) {
	out := make(bson.D, 0, len(doc)+1)
	var id any
	found := false
	for _, e := range doc {
		if e.Key == "_id" {
			if found {
				return nil, fmt.Errorf("duplicate _id field")
			}
			id, found = e.Value, true
			continue
		}
		out = append(out, e)
	}
	if !found {
		id = ids.Generate()
	}
	return append(bson.D{{Key: "_id", Value: id}}, out...), nil
}

// idKey renders an _id value as canonical Extended JSON, which gives every
// distinct value (including its type) a distinct key.
func idKey(id any) (string, error) {
	b, err := bson.MarshalExtJSON(bson.D{{Key: "_id", Value: id}}, true, false)
	if err != nil {
		return "", fmt.Errorf("encode _id: %w", err)
	}
	return string(b), nil
}
