// Package ir provides the tagged value representation shared by the query
// compiler and the result layer.
//
// This package contains value types only. Every other internal package
// imports ir; ir imports nothing internal. Literals in the query AST and the
// values read back out of store records are both expressed as IRValue, so the
// formatter never has to inspect driver types.
//
// Key design constraints:
//   - IRValue is sealed; exhaustive type switches are safe
//   - IRDocument keeps keys in the order the store returned them
//   - Absent fields and explicit nulls both resolve to IRNull
//   - Field path segments are never empty strings
package ir
