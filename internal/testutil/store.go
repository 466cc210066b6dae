package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/store/docstore"
)

// OpenStore opens an empty embedded document store in a temporary
// directory. Generated ids are sequential. The store is closed when the test
// ends.
func OpenStore(t testing.TB) store.Conn {
	t.Helper()
	s, err := docstore.Open(filepath.Join(t.TempDir(), "docs.db"),
		docstore.WithIDGenerator(NewSequentialIDs("")))
	if err != nil {
		t.Fatalf("docstore.Open() failed: %v", err)
	}
	conn := store.OpenDocstore(s)
	t.Cleanup(func() { conn.Close(context.Background()) })
	return conn
}

// SeedStore opens an embedded store holding docs in collection.
func SeedStore(t testing.TB, collection string, docs []bson.D) store.Conn {
	t.Helper()
	conn := OpenStore(t)
	Seed(t, conn, collection, docs)
	return conn
}

// Seed inserts docs into collection of an open store.
func Seed(t testing.TB, conn store.Conn, collection string, docs []bson.D) {
	t.Helper()
	if _, err := conn.Insert(context.Background(), collection, docs); err != nil {
		t.Fatalf("seed %s: %v", collection, err)
	}
}

// Coupons is the two-record coupon collection used in usage examples.
func Coupons() []bson.D {
	return []bson.D{
		{{Key: "userEmail", Value: "a@x.com"}, {Key: "couponState", Value: int32(4)}},
		{{Key: "userEmail", Value: "b@x.com"}, {Key: "couponState", Value: int32(2)}},
	}
}

// Date returns a UTC date at midnight as a stored date value.
func Date(year int, month time.Month, day int) primitive.DateTime {
	return primitive.NewDateTimeFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// People is a small collection with nested documents, arrays, dates, nulls
// and fields missing from some records.
func People() []bson.D {
	return []bson.D{
		{
			{Key: "_id", Value: int32(1)},
			{Key: "name", Value: "Ann"},
			{Key: "age", Value: int32(31)},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Oslo"}, {Key: "zip", Value: "0150"}}},
			{Key: "tags", Value: bson.A{"admin", "ops"}},
			{Key: "joined", Value: Date(2020, time.March, 1)},
			{Key: "active", Value: true},
		},
		{
			{Key: "_id", Value: int32(2)},
			{Key: "name", Value: "Bob"},
			{Key: "age", Value: int32(25)},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Bergen"}}},
			{Key: "tags", Value: bson.A{"dev"}},
			{Key: "joined", Value: Date(2022, time.July, 15)},
			{Key: "active", Value: false},
		},
		{
			{Key: "_id", Value: int32(3)},
			{Key: "name", Value: "Cleo"},
			{Key: "age", Value: 42.5},
			{Key: "address", Value: nil},
			{Key: "active", Value: true},
		},
	}
}
