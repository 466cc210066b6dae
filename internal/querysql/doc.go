// Package querysql reads sqlmongo's SQL subset into a queryir.Query.
//
// The lexer works on the raw query text and is pulled one token at a time by
// a recursive-descent parser, so the first problem in reading order is the one
// reported. Every failure is a *ParseError carrying a code, the offending
// token and its byte offset in the input.
//
// Identifiers are dotted field paths ("address.city", "tags.0"). A segment can
// be quoted with backticks or double quotes when it is a keyword or contains
// characters outside a plain identifier. Segments are normalised to Unicode
// NFC so that composed and decomposed spellings address the same field.
//
// Constructs that are valid SQL but outside the subset (joins, GROUP BY,
// ORDER BY, LIMIT, DISTINCT, subqueries, functions, NOT, LIKE, ...) fail with
// ErrCodeUnsupported and wrap queryir.ErrUnsupported.
package querysql
