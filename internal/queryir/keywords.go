package queryir

import "strings"

// reserved holds the words the lexer always treats as keywords when they
// appear as a bare, single-segment identifier. Field names that collide with
// one of them must be quoted (`order`, "limit").
//
// The second group is recognised only so the parser can reject the construct
// with an "unsupported" error instead of a confusing syntax error.
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AS": true,
	"AND": true, "OR": true, "IN": true,
	"TRUE": true, "FALSE": true, "NULL": true,

	"JOIN": true, "INNER": true, "LEFT": true, "RIGHT": true, "OUTER": true,
	"CROSS": true, "ON": true, "GROUP": true, "ORDER": true, "BY": true,
	"HAVING": true, "LIMIT": true, "OFFSET": true, "UNION": true,
	"DISTINCT": true, "NOT": true, "LIKE": true, "BETWEEN": true, "IS": true,
	"EXISTS": true, "INSERT": true, "UPDATE": true, "DELETE": true,
}

// IsReserved reports whether word is a reserved keyword (case-insensitive).
func IsReserved(word string) bool {
	return reserved[strings.ToUpper(word)]
}
