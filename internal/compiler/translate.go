package compiler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/sqlmongo/internal/ir"
	"github.com/roach88/sqlmongo/internal/queryir"
	"github.com/roach88/sqlmongo/internal/querysql"
)

// nativeOps maps comparison operators other than equality to their query
// operator. Equality is written as a plain {path: value} condition.
var nativeOps = map[queryir.Operator]string{
	queryir.OpNe:  "$ne",
	queryir.OpGt:  "$gt",
	queryir.OpGte: "$gte",
	queryir.OpLt:  "$lt",
	queryir.OpLte: "$lte",
	queryir.OpIn:  "$in",
}

// CompileString parses query text and translates it in one step. Errors are
// either *querysql.ParseError or *TranslationError.
func CompileString(text string) (*QuerySpec, error) {
	q, err := querysql.Parse(text)
	if err != nil {
		return nil, err
	}
	return Compile(q)
}

// Compile translates a parsed query into a QuerySpec.
//
// The SELECT list becomes the ordered Fields (alias, or the dotted path when
// there is no alias) and, unless the query is a wildcard, a projection
// document. The WHERE tree becomes a filter document:
//
//	a = v            → {a: v}
//	a != v           → {a: {$ne: v}}
//	a > v ... a <= v → {a: {$gt: v}} ... {a: {$lte: v}}
//	a IN (v, w)      → {a: {$in: [v, w]}}
//	l AND r          → {$and: [l, r]}   (nested ANDs are flattened)
//	l OR r           → {$or: [l, r]}    (nested ORs are flattened)
//
// Compile is deterministic and has no side effects. It fails with a
// *TranslationError rather than emit a filter with different semantics.
func Compile(q queryir.Query) (*QuerySpec, error) {
	if problems := queryir.Validate(q); len(problems) > 0 {
		return nil, fromProblem(problems[0])
	}

	spec := &QuerySpec{Collection: q.Collection, Filter: bson.D{}}

	if !q.Wildcard() {
		entries := make([]Field, len(q.Projection))
		for i, f := range q.Projection {
			if err := checkNativePath(f.Path); err != nil {
				return nil, err
			}
			entries[i] = Field{Alias: f.Name(), Path: f.Path}
		}
		spec.Fields = NewFields(entries...)
		spec.Projection = compileProjection(q.Projection)
	}

	if q.Filter != nil {
		filter, err := compilePredicate(q.Filter)
		if err != nil {
			return nil, err
		}
		spec.Filter = filter
	}

	slog.Debug("query compiled",
		"collection", spec.Collection,
		"fields", spec.Fields.Len(),
		"filtered", len(spec.Filter) > 0)
	return spec, nil
}

// checkNativePath rejects paths that dot notation cannot address: a segment
// containing a dot would be split, and a leading '$' reads as an operator.
func checkNativePath(p ir.Path) error {
	for _, seg := range p {
		if strings.Contains(seg, ".") {
			return newTranslationError(ErrCodeInvalidPath, p.String(),
				"segment %q contains '.', which the store reads as a path separator", seg)
		}
		if strings.HasPrefix(seg, "$") {
			return newTranslationError(ErrCodeInvalidPath, p.String(),
				"segment %q starts with '$', which the store reads as an operator", seg)
		}
	}
	return nil
}

// compileProjection builds an inclusion projection over the selected paths.
//
// Paths are cut at their first array index ("tags.0" projects "tags") because
// projections address array elements by field name, not position. A path
// whose prefix is also selected is dropped since projecting both is a path
// collision. _id is excluded unless selected.
func compileProjection(fields []queryir.Field) bson.D {
	paths := make([]ir.Path, len(fields))
	for i, f := range fields {
		paths[i] = cutAtIndex(f.Path)
	}

	proj := bson.D{}
	seen := make(map[string]bool, len(paths))
	idSelected := false
	for i, p := range paths {
		if hasSelectedAncestor(paths, i) {
			continue
		}
		key := p.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if p[0] == "_id" {
			idSelected = true
		}
		proj = append(proj, bson.E{Key: key, Value: 1})
	}
	if !idSelected {
		proj = append(proj, bson.E{Key: "_id", Value: 0})
	}
	return proj
}

// hasSelectedAncestor reports whether some other selected path is a strict
// prefix of paths[i].
func hasSelectedAncestor(paths []ir.Path, i int) bool {
	for j, other := range paths {
		if j != i && len(other) < len(paths[i]) && hasPrefix(paths[i], other) {
			return true
		}
	}
	return false
}

func cutAtIndex(p ir.Path) ir.Path {
	for i := 1; i < len(p); i++ {
		if _, err := strconv.Atoi(p[i]); err == nil {
			return p[:i]
		}
	}
	return p
}

// hasPrefix reports whether prefix is p or an ancestor path of p.
func hasPrefix(p, prefix ir.Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// compilePredicate recursively translates a predicate node.
func compilePredicate(p queryir.Predicate) (bson.D, error) {
	switch pred := p.(type) {
	case queryir.Comparison:
		return compileComparison(pred)
	case *queryir.Comparison:
		return compileComparison(*pred)
	case queryir.And:
		return compileLogical("$and", pred)
	case *queryir.And:
		return compileLogical("$and", *pred)
	case queryir.Or:
		return compileLogical("$or", pred)
	case *queryir.Or:
		return compileLogical("$or", *pred)
	default:
		return nil, newTranslationError(ErrCodeUnsupported, "", "unsupported predicate type: %T", p)
	}
}

// compileLogical emits {$and: [...]} or {$or: [...]}, flattening directly
// nested nodes of the same kind: (a AND b) AND c → {$and: [a, b, c]}.
func compileLogical(op string, p queryir.Predicate) (bson.D, error) {
	var operands []queryir.Predicate
	collectOperands(op, p, &operands)

	clauses := make(bson.A, 0, len(operands))
	for _, operand := range operands {
		d, err := compilePredicate(operand)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, d)
	}
	return bson.D{{Key: op, Value: clauses}}, nil
}

func collectOperands(op string, p queryir.Predicate, out *[]queryir.Predicate) {
	var left, right queryir.Predicate
	switch pred := p.(type) {
	case queryir.And:
		if op != "$and" {
			*out = append(*out, p)
			return
		}
		left, right = pred.Left, pred.Right
	case *queryir.And:
		if op != "$and" {
			*out = append(*out, p)
			return
		}
		left, right = pred.Left, pred.Right
	case queryir.Or:
		if op != "$or" {
			*out = append(*out, p)
			return
		}
		left, right = pred.Left, pred.Right
	case *queryir.Or:
		if op != "$or" {
			*out = append(*out, p)
			return
		}
		left, right = pred.Left, pred.Right
	default:
		*out = append(*out, p)
		return
	}
	collectOperands(op, left, out)
	collectOperands(op, right, out)
}

func compileComparison(c queryir.Comparison) (bson.D, error) {
	if err := checkNativePath(c.Path); err != nil {
		return nil, err
	}
	key := c.Path.String()

	if c.Op == queryir.OpIn {
		list, ok := c.Value.(ir.IRArray)
		if !ok {
			return nil, newTranslationError(ErrCodeInvalidLiteral, key,
				"IN needs a parenthesised list, got %s", queryir.FormatLiteral(c.Value))
		}
		values := make(bson.A, len(list))
		for i, elem := range list {
			if _, nested := elem.(ir.IRArray); nested {
				return nil, newTranslationError(ErrCodeInvalidLiteral, key,
					"IN list element %d is itself a list", i)
			}
			v, err := nativeValue(key, elem)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: values}}}}, nil
	}

	if _, isList := c.Value.(ir.IRArray); isList {
		return nil, newTranslationError(ErrCodeInvalidLiteral, key,
			"a list can only be compared with IN, not %s", c.Op)
	}
	value, err := nativeValue(key, c.Value)
	if err != nil {
		return nil, err
	}

	if c.Op == queryir.OpEq {
		return bson.D{{Key: key, Value: value}}, nil
	}

	native, ok := nativeOps[c.Op]
	if !ok {
		return nil, newTranslationError(ErrCodeUnsupported, key, "operator %q", string(c.Op))
	}
	if ir.IsNull(c.Value) && c.Op != queryir.OpNe {
		return nil, newTranslationError(ErrCodeInvalidLiteral, key,
			"NULL cannot be compared with %s", c.Op)
	}
	return bson.D{{Key: key, Value: bson.D{{Key: native, Value: value}}}}, nil
}

// nativeValue converts a scalar literal to the driver's representation.
func nativeValue(key string, v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil, nil
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRDateTime:
		return primitive.NewDateTimeFromTime(val.Time()), nil
	default:
		return nil, newTranslationError(ErrCodeInvalidLiteral, key,
			"%s literal cannot be used in a filter", kindOf(v))
	}
}

func kindOf(v ir.IRValue) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprint(v.Kind())
}
