package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/ir"
)

func TestValidate_WellFormedQuery(t *testing.T) {
	query := Query{
		Collection: "coupons",
		Projection: []Field{
			{Path: ir.Path{"userEmail"}},
			{Path: ir.Path{"a", "b"}, Alias: "c"},
		},
		Filter: And{
			Left:  Comparison{Path: ir.Path{"couponState"}, Op: OpEq, Value: ir.IRInt(4)},
			Right: Comparison{Path: ir.Path{"kind"}, Op: OpIn, Value: ir.IRArray{ir.IRString("a")}},
		},
	}

	assert.Empty(t, Validate(query))
}

func TestValidate_WildcardWithoutFilter(t *testing.T) {
	assert.Empty(t, Validate(Query{Collection: "coupons"}))
}

func TestValidate_EmptyCollection(t *testing.T) {
	problems := Validate(Query{})

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemEmptyCollection, problems[0].Code)
}

func TestValidate_InvalidPaths(t *testing.T) {
	query := Query{
		Collection: "t",
		Projection: []Field{{Path: ir.Path{}}},
		Filter:     Comparison{Path: ir.Path{"a", ""}, Op: OpEq, Value: ir.IRInt(1)},
	}

	problems := Validate(query)

	require.Len(t, problems, 2)
	assert.Equal(t, ProblemInvalidPath, problems[0].Code)
	assert.Equal(t, ProblemInvalidPath, problems[1].Code)
	assert.Contains(t, problems[1].String(), "segment 1 is empty")
}

func TestValidate_DuplicateColumnNames(t *testing.T) {
	query := Query{
		Collection: "t",
		Projection: []Field{
			{Path: ir.Path{"a"}},
			{Path: ir.Path{"b"}, Alias: "a"},
		},
	}

	problems := Validate(query)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemDuplicateAlias, problems[0].Code)
	assert.Equal(t, "b", problems[0].Path)
}

func TestValidate_SamePathDifferentAliases(t *testing.T) {
	// Selecting one path twice under different names is fine.
	query := Query{
		Collection: "t",
		Projection: []Field{
			{Path: ir.Path{"a"}, Alias: "first"},
			{Path: ir.Path{"a"}, Alias: "second"},
		},
	}

	assert.Empty(t, Validate(query))
}

func TestValidate_NilOperand(t *testing.T) {
	query := Query{
		Collection: "t",
		Filter: Or{
			Left:  Comparison{Path: ir.Path{"x"}, Op: OpEq, Value: ir.IRInt(1)},
			Right: nil,
		},
	}

	problems := Validate(query)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemNilPredicate, problems[0].Code)
}

func TestValidate_UnknownOperator(t *testing.T) {
	query := Query{
		Collection: "t",
		Filter:     &Comparison{Path: ir.Path{"x"}, Op: Operator("=="), Value: ir.IRInt(1)},
	}

	problems := Validate(query)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemUnknownOperator, problems[0].Code)
	assert.Equal(t, "x", problems[0].Path)
}

func TestValidate_PointerNodes(t *testing.T) {
	query := Query{
		Collection: "t",
		Filter: &And{
			Left:  &Comparison{Path: ir.Path{"x"}, Op: OpEq, Value: ir.IRInt(1)},
			Right: &Or{Left: Comparison{Path: ir.Path{"y"}, Op: OpLt, Value: ir.IRInt(2)}, Right: nil},
		},
	}

	problems := Validate(query)

	require.Len(t, problems, 1)
	assert.Equal(t, ProblemNilPredicate, problems[0].Code)
}
