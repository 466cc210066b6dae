// Package compiler translates a parsed query (queryir.Query) into the native
// query model of a document store: a filter document, a projection document
// and the ordered list of output columns.
//
// Filter and projection use the driver's ordered document type (bson.D), so
// the same QuerySpec runs unchanged against MongoDB and against the embedded
// document store, which reads the same operator subset.
//
// Translation is pure. Anything the native model cannot express with the same
// meaning is a *TranslationError; nothing is silently dropped or approximated.
package compiler
