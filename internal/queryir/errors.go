package queryir

import "errors"

// ErrUnsupported marks a query construct the compiler recognises but does not
// implement (joins, grouping, ordering, subqueries, aggregates, ...). Parse and
// translation errors for such constructs wrap it, so callers can tell "not
// supported" apart from "malformed" with errors.Is.
var ErrUnsupported = errors.New("unsupported")
