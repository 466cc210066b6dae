// Package mongostore runs queries against a MongoDB server.
package mongostore

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabase is used when the connection string names no database.
const DefaultDatabase = "test"

// Store is a client bound to one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// DatabaseName returns the database a connection string selects.
func DatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid connection string: %w", err)
	}
	if cs.Database == "" {
		return DefaultDatabase, nil
	}
	return cs.Database, nil
}

// Open connects to the server at uri and checks it is reachable.
func Open(ctx context.Context, uri string) (*Store, error) {
	name, err := DatabaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(name)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Find runs a find command. A nil projection returns whole documents.
func (s *Store) Find(ctx context.Context, collection string, filter, projection bson.D) (*Cursor, error) {
	opts := options.Find()
	if projection != nil {
		opts.SetProjection(projection)
	}
	if filter == nil {
		filter = bson.D{}
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return &Cursor{cur: cur}, nil
}

// Insert writes docs with one insertMany.
func (s *Store) Insert(ctx context.Context, collection string, docs []bson.D) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	batch := make([]any, len(docs))
	for i, d := range docs {
		batch[i] = d
	}

	res, err := s.db.Collection(collection).InsertMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return len(res.InsertedIDs), nil
}

// Collections lists the database's collections, sorted.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Drop drops a collection.
func (s *Store) Drop(ctx context.Context, collection string) error {
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		return fmt.Errorf("drop collection %s: %w", collection, err)
	}
	return nil
}

// Cursor adapts *mongo.Cursor, whose current document is a field, to a
// method set.
type Cursor struct {
	cur *mongo.Cursor
}

func (c *Cursor) Next(ctx context.Context) bool {
	return c.cur.Next(ctx)
}

// Current returns a copy of the current document; the driver reuses its
// batch buffer on the following Next.
func (c *Cursor) Current() bson.Raw {
	return slices.Clone(c.cur.Current)
}

func (c *Cursor) Err() error {
	return c.cur.Err()
}

func (c *Cursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}
