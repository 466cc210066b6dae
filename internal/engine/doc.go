// Package engine runs compiled queries against a store and exposes the
// matching records as a Result.
//
// FLOW:
//
//	text ──querysql.Parse──▶ queryir.Query ──compiler.Compile──▶ QuerySpec
//	QuerySpec ──Execute(conn)──▶ Result ──Next/Doc──▶ Doc.GetValue(path)
//
// Execute issues exactly one find against the spec's collection with the
// native filter, and with the native projection unless the query is a
// wildcard. There are no retries: store failures surface unchanged, wrapped
// in an *ExecutionError that unwraps to the store's error.
//
// RESOURCE MODEL:
//
// A Result is single-pass and pull-based. Records are read from the store
// cursor only when the consumer calls Next, nothing is buffered, and the
// store order is preserved. The cursor is released when iteration reaches
// the end, when it fails, or when the consumer calls Close (or breaks out
// of All). A Result must not be iterated from more than one goroutine.
//
// VALUES:
//
// Doc converts raw BSON into ir.IRValue. Missing fields and stored nulls
// both resolve to ir.IRNull through GetValue; Lookup tells them apart.
package engine
