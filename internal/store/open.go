package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/store/docstore"
	"github.com/roach88/sqlmongo/internal/store/mongostore"
)

// ErrUnknownScheme is returned by Open for a URI no backend understands.
var ErrUnknownScheme = errors.New("unknown connection scheme")

// Backend identifies the store implementation a URI selects.
type Backend string

const (
	BackendMongo    Backend = "mongodb"
	BackendDocstore Backend = "docstore"
)

// ParseURI picks the backend for uri and returns the address that backend
// is opened with: the URI itself for MongoDB, a SQLite DSN for docstore.
func ParseURI(uri string) (Backend, string, error) {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return BackendMongo, uri, nil
	case strings.HasPrefix(uri, "sqlite://"):
		path := strings.TrimPrefix(uri, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("%q: missing database path", uri)
		}
		return BackendDocstore, path, nil
	case strings.HasPrefix(uri, "file:"):
		return BackendDocstore, uri, nil
	default:
		return "", "", fmt.Errorf("%w: %q (expected mongodb://, mongodb+srv://, sqlite:// or file:)", ErrUnknownScheme, uri)
	}
}

// Open connects to the store uri names.
func Open(ctx context.Context, uri string) (Conn, error) {
	backend, addr, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	slog.Debug("opening store", "backend", backend)

	switch backend {
	case BackendMongo:
		s, err := mongostore.Open(ctx, addr)
		if err != nil {
			return nil, err
		}
		return mongoConn{s}, nil
	default:
		s, err := docstore.Open(addr)
		if err != nil {
			return nil, err
		}
		return docConn{s}, nil
	}
}

// OpenDocstore wraps an already open embedded store as a Conn.
func OpenDocstore(s *docstore.Store) Conn {
	return docConn{s}
}

type docConn struct {
	s *docstore.Store
}

func (c docConn) Find(ctx context.Context, collection string, filter, projection bson.D) (Cursor, error) {
	cur, err := c.s.Find(ctx, collection, filter, projection)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (c docConn) Insert(ctx context.Context, collection string, docs []bson.D) (int, error) {
	return c.s.Insert(ctx, collection, docs)
}

func (c docConn) Collections(ctx context.Context) ([]string, error) {
	return c.s.Collections(ctx)
}

func (c docConn) Drop(ctx context.Context, collection string) error {
	return c.s.Drop(ctx, collection)
}

func (c docConn) Close(context.Context) error {
	return c.s.Close()
}

type mongoConn struct {
	s *mongostore.Store
}

func (c mongoConn) Find(ctx context.Context, collection string, filter, projection bson.D) (Cursor, error) {
	cur, err := c.s.Find(ctx, collection, filter, projection)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (c mongoConn) Insert(ctx context.Context, collection string, docs []bson.D) (int, error) {
	return c.s.Insert(ctx, collection, docs)
}

func (c mongoConn) Collections(ctx context.Context) ([]string, error) {
	return c.s.Collections(ctx)
}

func (c mongoConn) Drop(ctx context.Context, collection string) error {
	return c.s.Drop(ctx, collection)
}

func (c mongoConn) Close(ctx context.Context) error {
	return c.s.Close(ctx)
}
