package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri     string
		backend Backend
		addr    string
	}{
		{"mongodb://localhost:27017/mydb", BackendMongo, "mongodb://localhost:27017/mydb"},
		{"mongodb+srv://cluster0.example.net/shop", BackendMongo, "mongodb+srv://cluster0.example.net/shop"},
		{"sqlite:///tmp/docs.db", BackendDocstore, "/tmp/docs.db"},
		{"sqlite://docs.db", BackendDocstore, "docs.db"},
		{"sqlite://:memory:", BackendDocstore, ":memory:"},
		{"file:docs.db?mode=ro", BackendDocstore, "file:docs.db?mode=ro"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			backend, addr, err := ParseURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.backend, backend)
			assert.Equal(t, tt.addr, addr)
		})
	}
}

func TestParseURI_Errors(t *testing.T) {
	for _, uri := range []string{"", "postgres://localhost/db", "localhost:27017", "sqlite://"} {
		t.Run(uri, func(t *testing.T) {
			_, _, err := ParseURI(uri)
			assert.Error(t, err)
		})
	}

	_, _, err := ParseURI("redis://localhost")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestOpen_Docstore(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	defer conn.Close(ctx)

	n, err := conn.Insert(ctx, "people", []bson.D{
		{{Key: "name", Value: "ann"}, {Key: "age", Value: int32(31)}},
		{{Key: "name", Value: "bob"}, {Key: "age", Value: int32(25)}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cur, err := conn.Find(ctx, "people",
		bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: int64(30)}}}},
		bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 0}},
	)
	require.NoError(t, err)

	var got []string
	for cur.Next(ctx) {
		got = append(got, cur.Current().Lookup("name").StringValue())
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close(ctx))
	assert.Equal(t, []string{"ann"}, got)

	names, err := conn.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, names)

	require.NoError(t, conn.Drop(ctx, "people"))
}

func TestOpen_FindErrorIsNilCursor(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer conn.Close(ctx)

	cur, err := conn.Find(ctx, "c", bson.D{{Key: "$where", Value: "1"}}, nil)
	require.Error(t, err)
	assert.Nil(t, cur)
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "http://localhost")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}
