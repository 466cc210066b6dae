package queryir

import (
	"fmt"

	"github.com/roach88/sqlmongo/internal/ir"
)

// Problem is one structural defect found by Validate.
type Problem struct {
	// Code is a stable identifier for the kind of defect.
	Code string

	// Path is the field path involved, empty when the problem is not tied
	// to a field.
	Path string

	// Message is a human-readable description.
	Message string
}

func (p Problem) String() string {
	if p.Path != "" {
		return fmt.Sprintf("%s: %s (field %s)", p.Code, p.Message, p.Path)
	}
	return fmt.Sprintf("%s: %s", p.Code, p.Message)
}

// Problem codes reported by Validate.
const (
	ProblemEmptyCollection = "EMPTY_COLLECTION"
	ProblemInvalidPath     = "INVALID_PATH"
	ProblemDuplicateAlias  = "DUPLICATE_ALIAS"
	ProblemNilPredicate    = "NIL_PREDICATE"
	ProblemUnknownOperator = "UNKNOWN_OPERATOR"
	ProblemUnknownNode     = "UNKNOWN_NODE"
)

// Validate checks the structural invariants of a query:
//  1. The collection name is not empty
//  2. Every field path has at least one segment and no empty segment
//  3. Column names (alias or path) are unique in the SELECT list
//  4. And/Or nodes have both children
//  5. Comparison operators are known
//
// Operator/literal compatibility is not checked here; that is the
// translator's job since it depends on what the store can express.
//
// Validate is a pure function with no side effects. It returns nil when the
// query is well formed.
func Validate(q Query) []Problem {
	v := &validator{}
	v.validateQuery(q)
	return v.problems
}

// validator accumulates problems during traversal.
type validator struct {
	problems []Problem
}

func (v *validator) add(code string, path ir.Path, format string, args ...any) {
	p := Problem{Code: code, Message: fmt.Sprintf(format, args...)}
	if path != nil {
		p.Path = path.String()
	}
	v.problems = append(v.problems, p)
}

func (v *validator) validateQuery(q Query) {
	if q.Collection == "" {
		v.add(ProblemEmptyCollection, nil, "collection name is empty")
	}

	seen := make(map[string]bool, len(q.Projection))
	for _, f := range q.Projection {
		v.validatePath(f.Path)
		name := f.Name()
		if seen[name] {
			v.add(ProblemDuplicateAlias, f.Path, "column %q selected more than once", name)
		}
		seen[name] = true
	}

	if q.Filter != nil {
		v.validatePredicate(q.Filter)
	}
}

func (v *validator) validatePath(p ir.Path) {
	if len(p) == 0 {
		v.add(ProblemInvalidPath, nil, "field path is empty")
		return
	}
	for i, seg := range p {
		if seg == "" {
			v.add(ProblemInvalidPath, p, "segment %d is empty", i)
		}
	}
}

// validatePredicate recursively validates a predicate node.
func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.add(ProblemNilPredicate, nil, "logical operator is missing an operand")
	case Comparison:
		v.validateComparison(pred)
	case *Comparison:
		v.validateComparison(*pred)
	case And:
		v.validatePredicate(pred.Left)
		v.validatePredicate(pred.Right)
	case *And:
		v.validatePredicate(pred.Left)
		v.validatePredicate(pred.Right)
	case Or:
		v.validatePredicate(pred.Left)
		v.validatePredicate(pred.Right)
	case *Or:
		v.validatePredicate(pred.Left)
		v.validatePredicate(pred.Right)
	default:
		v.add(ProblemUnknownNode, nil, "unknown predicate type: %T", p)
	}
}

func (v *validator) validateComparison(c Comparison) {
	v.validatePath(c.Path)
	if !c.Op.Valid() {
		v.add(ProblemUnknownOperator, c.Path, "unknown operator %q", string(c.Op))
	}
}
