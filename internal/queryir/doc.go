// Package queryir provides the abstract syntax tree for sqlmongo's SQL subset.
//
// QueryIR is the boundary between the text parser (internal/querysql) and the
// translator that turns a query into a store-native filter and projection
// (internal/compiler):
//
//	[query text] → [QueryIR] → [native filter + projection] → [cursor]
//
// A Query names exactly one collection, an ordered projection (empty means
// SELECT *) and an optional filter. Filters are a tree of Comparison leaves
// joined by binary And/Or nodes. There are no joins, subqueries, grouping,
// ordering or aggregates; the parser rejects those before a Query exists.
//
// SEALED INTERFACES:
//
// Predicate is a sealed interface using the marker method pattern. Only
// Comparison, And and Or implement it, which keeps type switches in the
// translator and validator exhaustive:
//
//	switch p := pred.(type) {
//	case Comparison:
//	    // Handle leaf
//	case And:
//	    // Handle conjunction
//	case Or:
//	    // Handle disjunction
//	}
//
// IMMUTABILITY:
//
// A Query is built once by the parser and only read afterwards. Nothing in
// this package mutates a Query, so one value may be shared between goroutines.
//
// LITERALS:
//
// Comparison values are ir.IRValue. An IN comparison carries an ir.IRArray;
// every other operator expects a scalar. The parser accepts any literal shape
// the grammar allows and leaves shape checks to the translator.
package queryir
