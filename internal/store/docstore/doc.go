// Package docstore is an embedded, SQLite-backed document store.
//
// It keeps schema-less documents grouped in named collections and answers the
// same filter and projection documents a MongoDB server accepts, for the
// operator subset sqlmongo emits:
//
//	{path: v}, $eq, $ne, $gt, $gte, $lt, $lte, $in, $nin, $and, $or
//
// # Storage
//
// Every document is one row of the documents table. The body column holds
// the document as relaxed Extended JSON, so dates, ObjectIds and the like
// survive a round trip while numbers, strings and booleans stay plain JSON
// values that SQLite's JSON functions can compare. Rows are always returned
// in insertion order (ORDER BY seq). Integer width is not kept: a small
// int64 reads back as an int32, as relaxed Extended JSON specifies.
//
// # Filters
//
// A filter document is compiled to a parameterised WHERE clause over
// json_extract/json_type. Comparisons follow the store's type bracketing: a
// number literal only matches numbers, a string only strings, a date only
// dates. A condition on a field holding an array matches when any element
// satisfies it, and $ne/$nin are the negation of $eq/$in. Equality with null
// matches both explicit nulls and missing fields.
//
// Paths are dot notation. A numeric segment after the first addresses an
// array element. Paths that pass through an array of sub-documents
// ("items.name") are not expanded.
//
// # Projections
//
// Projections are applied to the decoded document in Go. Inclusion
// projections keep the listed paths (and _id unless it is excluded) in the
// document's own key order; exclusion projections drop the listed paths.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - One connection: a cursor holds it until closed
package docstore
