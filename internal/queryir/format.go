package queryir

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sqlmongo/internal/ir"
)

// String renders the query back to SQL text. Parsing the result yields a
// Query equal to q.
func (q Query) String() string {
	r := strings.Builder{}

	r.WriteString("SELECT ")
	if q.Wildcard() {
		r.WriteString("*")
	}
	for i, f := range q.Projection {
		if i > 0 {
			r.WriteString(", ")
		}
		r.WriteString(FormatPath(f.Path))
		if f.Alias != "" {
			r.WriteString(" AS ")
			r.WriteString(quoteSegment(f.Alias, true, true))
		}
	}

	r.WriteString(" FROM ")
	r.WriteString(quoteSegment(q.Collection, true, true))

	if q.Filter != nil {
		r.WriteString(" WHERE ")
		r.WriteString(q.Filter.String())
	}
	return r.String()
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", FormatPath(c.Path), c.Op, FormatLiteral(c.Value))
}

func (a And) String() string {
	return fmt.Sprintf("(%s AND %s)", predicateString(a.Left), predicateString(a.Right))
}

func (o Or) String() string {
	return fmt.Sprintf("(%s OR %s)", predicateString(o.Left), predicateString(o.Right))
}

func predicateString(p Predicate) string {
	if p == nil {
		return "<nil>"
	}
	return p.String()
}

// FormatPath renders a field path, quoting segments that are not plain
// identifiers.
func FormatPath(p ir.Path) string {
	parts := make([]string, len(p))
	for i, seg := range p {
		// Keywords only collide when the path has a single segment.
		parts[i] = quoteSegment(seg, i == 0, len(p) == 1)
	}
	return strings.Join(parts, ".")
}

func quoteSegment(seg string, leading, checkReserved bool) string {
	if isBareSegment(seg, leading) && !(checkReserved && IsReserved(seg)) {
		return seg
	}
	return "`" + strings.ReplaceAll(seg, "`", "``") + "`"
}

// isBareSegment reports whether seg lexes back as itself without quotes.
// Numeric segments (array indexes) are only bare after a dot.
func isBareSegment(seg string, leading bool) bool {
	if seg == "" {
		return false
	}
	if isAllDigits(seg) {
		return !leading
	}
	for i, r := range seg {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatLiteral renders a literal the way the parser reads it.
func FormatLiteral(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "NULL"
	case ir.IRString:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRFloat:
		s := strconv.FormatFloat(float64(val), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			// Keep the float a float when it is parsed back.
			s += ".0"
		}
		return s
	case ir.IRBool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case ir.IRDateTime:
		return "DATE '" + val.Time().UTC().Format(time.RFC3339Nano) + "'"
	case ir.IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = FormatLiteral(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		out, err := ir.MarshalIRValue(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(out)
	}
}
