package ir

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Path is a parsed field path: the dot-separated segments addressing a value
// nested inside sub-documents (and, by numeric segment, arrays).
type Path []string

// ParsePath splits a dotted field path into segments.
// Returns an error if the path or any segment is empty ("a..b", ".a", "a.").
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty field path")
	}
	segs := strings.Split(s, ".")
	for i, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("field path %q: segment %d is empty", s, i)
		}
	}
	return Path(segs), nil
}

// MustParsePath is ParsePath for paths known to be valid. It panics otherwise.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String joins the segments back into dotted form.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Resolve walks path through v and returns the value found there.
//
// Documents are entered by key; arrays are entered by a non-negative decimal
// index segment. The boolean is false when any segment does not exist, in
// which case the returned value is IRNull. Resolve is pure: v is never
// modified.
func Resolve(v IRValue, path Path) (IRValue, bool) {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case IRDocument:
			next, ok := node.Get(seg)
			if !ok {
				return IRNull{}, false
			}
			cur = next
		case IRArray:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return IRNull{}, false
			}
			cur = node[idx]
		default:
			return IRNull{}, false
		}
	}
	if cur == nil {
		return IRNull{}, true
	}
	return cur, true
}

// NormalizeKey returns key in Unicode NFC form. Identifiers typed in a query
// and keys loaded from fixture files go through this so that composed and
// decomposed spellings of the same name address the same field.
func NormalizeKey(key string) string {
	return norm.NFC.String(key)
}
