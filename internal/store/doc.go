// Package store defines the connection contract the executor runs queries
// against and opens connections from a URI.
//
// Two backends implement it:
//
//	mongodb://host/db, mongodb+srv://…   MongoDB server (mongostore)
//	sqlite://path, sqlite://:memory:     embedded document store (docstore)
//	file:path?mode=…                     embedded store, SQLite URI filename
//
// Both accept the same native filter and projection documents (bson.D) and
// return records as raw BSON, so everything above this package is
// backend-agnostic.
package store
