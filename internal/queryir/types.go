package queryir

import "github.com/roach88/sqlmongo/internal/ir"

// Query is one parsed SELECT statement.
//
// Semantics:
//
//	SELECT <projection> FROM <collection> WHERE <filter>
//
// Example:
//
//	Query{
//	  Collection: "coupons",
//	  Projection: []Field{{Path: ir.Path{"userEmail"}}},
//	  Filter: Comparison{Path: ir.Path{"couponState"}, Op: OpEq, Value: ir.IRInt(4)},
//	}
//
// corresponds to
//
//	SELECT userEmail FROM coupons WHERE couponState = 4
type Query struct {
	Collection string    // Collection name (e.g., "coupons")
	Projection []Field   // SELECT list in declaration order (empty = SELECT *)
	Filter     Predicate // WHERE conditions (nil = no filter)
}

// Wildcard reports whether the query selects every field.
func (q Query) Wildcard() bool {
	return len(q.Projection) == 0
}

// Field is one entry of the SELECT list: a field path with an optional alias.
type Field struct {
	Path  ir.Path // Dotted field path (e.g., a.b → {"a", "b"})
	Alias string  // Name given with AS, empty when none
}

// Name returns the column name for the field: the alias when present,
// otherwise the dotted path.
func (f Field) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Path.String()
}

// Operator is a comparison operator of the SQL subset.
type Operator string

const (
	OpEq  Operator = "="
	OpNe  Operator = "!="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpIn  Operator = "IN"
)

// Operators lists every supported operator.
var Operators = []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn}

// Valid reports whether op is one of Operators.
func (op Operator) Valid() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Predicate represents a filter condition in the QueryIR.
//
// This is a sealed interface - only Comparison, And and Or implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
	String() string
}

// Comparison compares the value at a field path with a literal.
//
// Semantics:
//
//	<path> <op> <value>
//
// Example:
//
//	Comparison{Path: ir.Path{"a", "b"}, Op: OpGte, Value: ir.IRInt(10)}
//
// renders as
//
//	a.b >= 10
type Comparison struct {
	Path  ir.Path    // Field addressed by the comparison
	Op    Operator   // Comparison operator
	Value ir.IRValue // Literal; ir.IRArray for OpIn
}

func (Comparison) predicateNode() {}

// And is the conjunction of two predicates.
//
// The parser builds left-deep chains: a AND b AND c is
// And{And{a, b}, c}.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) predicateNode() {}

// Or is the disjunction of two predicates.
//
// AND binds tighter than OR, so a OR b AND c is Or{a, And{b, c}}.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) predicateNode() {}
