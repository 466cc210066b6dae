package docstore

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrUnsupportedFilter is wrapped by errors for filter documents that use an
// operator or value this store does not implement.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// dateMillis converts a stored {"$date": ...} object to epoch
// milliseconds. Relaxed Extended JSON writes years 1970 to 9999 as an
// ISO-8601 string and every other date as {"$numberLong": "..."}.
const dateMillis = `COALESCE(` +
	`CAST(json_extract(%[1]s, '$."$date"."$numberLong"') AS INTEGER), ` +
	`CAST(ROUND((julianday(json_extract(%[1]s, '$."$date"')) - 2440587.5) * 86400000) AS INTEGER))`

// filterCompiler compiles a filter document to a SQL condition over the
// body column.
//
// CRITICAL: Values and paths are NEVER interpolated - always placeholders.
// Placeholders are numbered (?1, ?2, ...) so an expression that mentions the
// same path twice binds it once.
type filterCompiler struct {
	args []any
}

// compileQuery builds the SELECT for one find: the documents of collection
// matching filter, in insertion order. An empty filter matches every
// document.
func compileQuery(collection string, filter bson.D) (string, []any, error) {
	c := &filterCompiler{}
	coll := c.arg(collection)
	cond, err := c.document(filter)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT body FROM documents WHERE collection = %s AND %s ORDER BY seq ASC", coll, cond)
	return sql, c.args, nil
}

// arg registers a parameter and returns its placeholder.
func (c *filterCompiler) arg(v any) string {
	c.args = append(c.args, v)
	return "?" + strconv.Itoa(len(c.args))
}

// document compiles the implicit conjunction of a filter document's
// elements.
func (c *filterCompiler) document(d bson.D) (string, error) {
	if len(d) == 0 {
		return "1", nil
	}
	parts := make([]string, 0, len(d))
	for _, e := range d {
		var part string
		var err error
		switch {
		case e.Key == "$and" || e.Key == "$or":
			part, err = c.logical(e.Key, e.Value)
		case strings.HasPrefix(e.Key, "$"):
			err = fmt.Errorf("%w: top-level operator %s", ErrUnsupportedFilter, e.Key)
		default:
			part, err = c.field(e.Key, e.Value)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return joinConditions(parts, "AND"), nil
}

// logical compiles {$and: [...]} and {$or: [...]}.
func (c *filterCompiler) logical(op string, v any) (string, error) {
	clauses, err := documentList(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(clauses) == 0 {
		return "", fmt.Errorf("%s: must be a non-empty array", op)
	}
	parts := make([]string, len(clauses))
	for i, clause := range clauses {
		if parts[i], err = c.document(clause); err != nil {
			return "", err
		}
	}
	if op == "$or" {
		return joinConditions(parts, "OR"), nil
	}
	return joinConditions(parts, "AND"), nil
}

func documentList(v any) ([]bson.D, error) {
	switch list := v.(type) {
	case []bson.D:
		return list, nil
	case bson.A:
		return toDocuments(list)
	case []any:
		return toDocuments(list)
	default:
		return nil, fmt.Errorf("expected an array of documents, got %T", v)
	}
}

func toDocuments(list []any) ([]bson.D, error) {
	out := make([]bson.D, len(list))
	for i, elem := range list {
		d, ok := elem.(bson.D)
		if !ok {
			return nil, fmt.Errorf("element %d: expected a document, got %T", i, elem)
		}
		out[i] = d
	}
	return out, nil
}

// field compiles the condition on one field path: either a literal (implicit
// $eq) or an operator document such as {$gt: 1, $lt: 5}.
func (c *filterCompiler) field(key string, v any) (string, error) {
	if _, err := jsonPath(key); err != nil {
		return "", err
	}

	ops, isOps := v.(bson.D)
	if !isOps || len(ops) == 0 || !strings.HasPrefix(ops[0].Key, "$") {
		return c.operator(key, "$eq", v)
	}

	parts := make([]string, len(ops))
	for i, op := range ops {
		var err error
		if parts[i], err = c.operator(key, op.Key, op.Value); err != nil {
			return "", fmt.Errorf("field %s: %w", key, err)
		}
	}
	return joinConditions(parts, "AND"), nil
}

var rangeOps = map[string]string{
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

func (c *filterCompiler) operator(key, op string, v any) (string, error) {
	switch op {
	case "$eq":
		return c.compare(key, "=", v)
	case "$ne":
		cond, err := c.compare(key, "=", v)
		if err != nil {
			return "", err
		}
		return "NOT " + cond, nil
	case "$gt", "$gte", "$lt", "$lte":
		if v == nil {
			return "", fmt.Errorf("%w: %s null", ErrUnsupportedFilter, op)
		}
		return c.compare(key, rangeOps[op], v)
	case "$in":
		return c.in(key, v)
	case "$nin":
		cond, err := c.in(key, v)
		if err != nil {
			return "", err
		}
		return "NOT " + cond, nil
	default:
		return "", fmt.Errorf("%w: operator %s", ErrUnsupportedFilter, op)
	}
}

func (c *filterCompiler) in(key string, v any) (string, error) {
	var list []any
	switch l := v.(type) {
	case bson.A:
		list = l
	case []any:
		list = l
	default:
		return "", fmt.Errorf("$in needs an array, got %T", v)
	}
	if len(list) == 0 {
		return "0", nil
	}
	parts := make([]string, len(list))
	for i, elem := range list {
		var err error
		if parts[i], err = c.compare(key, "=", elem); err != nil {
			return "", err
		}
	}
	return joinConditions(parts, "OR"), nil
}

// compare emits "value at key <op> v". The field matches when its own value
// satisfies the comparison or, for an array, when any element does. A path
// that crosses an array of sub-documents continues into every element.
func (c *filterCompiler) compare(key, op string, v any) (string, error) {
	lit, err := toLiteral(v)
	if err != nil {
		return "", err
	}

	segs := strings.Split(key, ".")
	if lit.null {
		if op != "=" {
			return "", fmt.Errorf("%w: null only supports equality", ErrUnsupportedFilter)
		}
		p := c.arg(segmentsPath(segs))
		return fmt.Sprintf(
			"(json_type(body, %[1]s) IS NULL OR json_type(body, %[1]s) = 'null' OR "+
				"(json_type(body, %[1]s) = 'array' AND EXISTS (SELECT 1 FROM json_each(body, %[1]s) AS e WHERE e.type = 'null')))",
			p), nil
	}

	param := c.arg(lit.param)
	match := func(typ, val string) string {
		return "COALESCE(" + lit.condition(typ, val, op, param) + ", 0)"
	}
	return c.locate("", segs, 0, match), nil
}

// locate returns the condition that a value reached by segs satisfies
// match. prefix is a SQL expression yielding the JSON path segs start
// from, or "" for the document root. Alias e<depth> names the array
// elements visited at this depth.
func (c *filterCompiler) locate(prefix string, segs []string, depth int, match func(typ, val string) string) string {
	p := c.pathExpr(prefix, segs)
	e := "e" + strconv.Itoa(depth)

	parts := []string{
		match("json_type(body, "+p+")", "json_extract(body, "+p+")"),
		fmt.Sprintf("(json_type(body, %[1]s) = 'array' AND EXISTS (SELECT 1 FROM json_each(body, %[1]s) AS %[2]s WHERE %[3]s))",
			p, e, match(e+".type", e+".value")),
	}
	for k := 1; k < len(segs); k++ {
		if _, ok := arrayIndex(segs[k]); ok {
			continue
		}
		arr := c.pathExpr(prefix, segs[:k])
		elem := "(" + arr + " || '[' || " + e + ".key || ']')"
		parts = append(parts, fmt.Sprintf(
			"(json_type(body, %[1]s) = 'array' AND EXISTS (SELECT 1 FROM json_each(body, %[1]s) AS %[2]s WHERE %[2]s.type = 'object' AND %[3]s))",
			arr, e, c.locate(elem, segs[k:], depth+1, match)))
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// pathExpr registers the JSON path of segs below prefix and returns the SQL
// expression for it.
func (c *filterCompiler) pathExpr(prefix string, segs []string) string {
	if prefix == "" {
		return c.arg(segmentsPath(segs))
	}
	return "(" + prefix + " || " + c.arg(strings.TrimPrefix(segmentsPath(segs), "$")) + ")"
}

// literal describes how a filter value is compared with a JSON value.
type literal struct {
	null bool

	// types are the json_type names the literal is comparable with.
	types []string

	// kind selects how the stored value is turned into something SQL can
	// compare with the parameter.
	kind literalKind

	param any
}

type literalKind int

const (
	literalPlain literalKind = iota
	literalBool
	literalDate
)

// condition renders the type guard and comparison for one location whose
// JSON type and SQL value are given by the typ and val expressions.
func (l literal) condition(typ, val, op, param string) string {
	quoted := make([]string, len(l.types))
	for i, t := range l.types {
		quoted[i] = "'" + t + "'"
	}
	guard := fmt.Sprintf("%s IN (%s)", typ, strings.Join(quoted, ", "))

	switch l.kind {
	case literalBool:
		return fmt.Sprintf("(%s AND (%s = 'true') %s %s)", guard, typ, op, param)
	case literalDate:
		return fmt.Sprintf("(%s AND %s %s %s)", guard, fmt.Sprintf(dateMillis, val), op, param)
	default:
		return fmt.Sprintf("(%s AND %s %s %s)", guard, val, op, param)
	}
}

var numberTypes = []string{"integer", "real"}

func toLiteral(v any) (literal, error) {
	switch val := v.(type) {
	case nil:
		return literal{null: true}, nil
	case string:
		return literal{types: []string{"text"}, param: val}, nil
	case int:
		return literal{types: numberTypes, param: int64(val)}, nil
	case int32:
		return literal{types: numberTypes, param: int64(val)}, nil
	case int64:
		return literal{types: numberTypes, param: val}, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return literal{}, fmt.Errorf("%w: non-finite number %v", ErrUnsupportedFilter, val)
		}
		return literal{types: numberTypes, param: val}, nil
	case bool:
		p := 0
		if val {
			p = 1
		}
		return literal{types: []string{"true", "false"}, kind: literalBool, param: p}, nil
	case primitive.DateTime:
		return dateLiteral(val.Time()), nil
	case time.Time:
		return dateLiteral(val), nil
	default:
		return literal{}, fmt.Errorf("%w: value of type %T", ErrUnsupportedFilter, v)
	}
}

func dateLiteral(t time.Time) literal {
	return literal{
		types: []string{"object"},
		kind:  literalDate,
		param: t.UnixMilli(),
	}
}

// jsonPath converts a dotted field path to a SQLite JSON path. Segments are
// quoted labels; a numeric segment after the first is an array index:
// "a.b.0" → $."a"."b"[0].
func jsonPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty field path")
	}
	segs := strings.Split(key, ".")
	for i, seg := range segs {
		if seg == "" {
			return "", fmt.Errorf("field path %q: segment %d is empty", key, i)
		}
		if strings.ContainsAny(seg, `"\`) {
			return "", fmt.Errorf("%w: field path %q: quote or backslash in segment", ErrUnsupportedFilter, key)
		}
	}
	return segmentsPath(segs), nil
}

// segmentsPath renders validated segments; the first is always a label.
func segmentsPath(segs []string) string {
	var b strings.Builder
	b.WriteString("$")
	for i, seg := range segs {
		if i > 0 {
			if n, ok := arrayIndex(seg); ok {
				b.WriteString("[" + strconv.Itoa(n) + "]")
				continue
			}
		}
		b.WriteString(`."` + seg + `"`)
	}
	return b.String()
}

func arrayIndex(seg string) (int, bool) {
	n, err := strconv.Atoi(seg)
	return n, err == nil && n >= 0
}

func joinConditions(parts []string, op string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}
