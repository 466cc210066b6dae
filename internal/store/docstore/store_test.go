package docstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// findAll drains a Find into decoded documents.
func findAll(t *testing.T, s *Store, collection string, filter, projection bson.D) []bson.D {
	t.Helper()
	ctx := context.Background()

	cur, err := s.Find(ctx, collection, filter, projection)
	require.NoError(t, err)
	defer cur.Close(ctx)

	var docs []bson.D
	for cur.Next(ctx) {
		var d bson.D
		require.NoError(t, bson.Unmarshal(cur.Current(), &d))
		docs = append(docs, d)
	}
	require.NoError(t, cur.Err())
	return docs
}

func TestOpen_Pragmas(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.Insert(ctx, "c", []bson.D{{{Key: "a", Value: 1}}})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	docs := findAll(t, s2, "c", bson.D{}, nil)
	assert.Len(t, docs, 1)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Insert(ctx, "c", []bson.D{{{Key: "a", Value: 1}}})
	require.NoError(t, err)

	// One pooled connection keeps the in-memory database alive between calls.
	assert.Len(t, findAll(t, s, "c", bson.D{}, nil), 1)
}

func TestInsert_AssignsIDFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Insert(ctx, "people", []bson.D{
		{{Key: "name", Value: "ann"}},
		{{Key: "name", Value: "bob"}, {Key: "_id", Value: "b-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs := findAll(t, s, "people", bson.D{}, nil)
	require.Len(t, docs, 2)

	assert.Equal(t, "_id", docs[0][0].Key)
	generated, ok := docs[0][0].Value.(string)
	require.True(t, ok)
	assert.Len(t, generated, 36, "UUID string")

	assert.Equal(t, bson.D{{Key: "_id", Value: "b-1"}, {Key: "name", Value: "bob"}}, docs[1])
}

func TestInsert_DuplicateIDRollsBackBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", []bson.D{{{Key: "_id", Value: int32(1)}}})
	require.NoError(t, err)

	_, err = s.Insert(ctx, "c", []bson.D{
		{{Key: "_id", Value: int32(2)}},
		{{Key: "_id", Value: int32(1)}},
	})
	require.Error(t, err)

	assert.Len(t, findAll(t, s, "c", bson.D{}, nil), 1)
}

func TestInsert_SameIDInOtherCollection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "a", []bson.D{{{Key: "_id", Value: "x"}}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "b", []bson.D{{{Key: "_id", Value: "x"}}})
	require.NoError(t, err)
}

func TestInsert_DistinguishesIDTypes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", []bson.D{
		{{Key: "_id", Value: "1"}},
		{{Key: "_id", Value: int32(1)}},
	})
	require.NoError(t, err)
}

func TestInsert_EmptyCollectionName(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Insert(context.Background(), "", []bson.D{{{Key: "a", Value: 1}}})
	assert.Error(t, err)
}

func TestCollectionsAndDrop(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "zeta", []bson.D{{{Key: "a", Value: 1}}})
	require.NoError(t, err)
	_, err = s.Insert(ctx, "alpha", []bson.D{{{Key: "a", Value: 1}}})
	require.NoError(t, err)

	names, err := s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	require.NoError(t, s.Drop(ctx, "zeta"))
	require.NoError(t, s.Drop(ctx, "missing"))

	names, err = s.Collections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names)
}

func TestFind_PreservesInsertionOrderAndKeyOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", []bson.D{
		{{Key: "_id", Value: 3}, {Key: "z", Value: "first"}, {Key: "a", Value: "second"}},
		{{Key: "_id", Value: 1}, {Key: "m", Value: "only"}},
	})
	require.NoError(t, err)

	docs := findAll(t, s, "c", bson.D{}, nil)
	require.Len(t, docs, 2)
	assert.Equal(t, []string{"_id", "z", "a"}, keys(docs[0]))
	assert.Equal(t, []string{"_id", "m"}, keys(docs[1]))
}

func TestFind_UnknownCollectionIsEmpty(t *testing.T) {
	s := openTestStore(t)
	assert.Empty(t, findAll(t, s, "nothing", bson.D{}, nil))
}

func TestCursor_CloseIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, "c", []bson.D{{{Key: "a", Value: 1}}, {{Key: "a", Value: 2}}})
	require.NoError(t, err)

	cur, err := s.Find(ctx, "c", bson.D{}, nil)
	require.NoError(t, err)
	require.True(t, cur.Next(ctx))

	require.NoError(t, cur.Close(ctx))
	require.NoError(t, cur.Close(ctx))
	assert.False(t, cur.Next(ctx))
	assert.Nil(t, cur.Current())

	// The connection is free again after an abandoned cursor is closed.
	_, err = s.Insert(ctx, "c", []bson.D{{{Key: "a", Value: 3}}})
	require.NoError(t, err)
}

func TestCursor_CanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := s.Insert(ctx, "c", []bson.D{{{Key: "a", Value: 1}}})
	require.NoError(t, err)

	cur, err := s.Find(ctx, "c", bson.D{}, nil)
	require.NoError(t, err)
	defer cur.Close(context.Background())

	cancel()
	assert.False(t, cur.Next(ctx))
	assert.ErrorIs(t, cur.Err(), context.Canceled)
}

func keys(d bson.D) []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Key
	}
	return out
}
