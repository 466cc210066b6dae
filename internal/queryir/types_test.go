package queryir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sqlmongo/internal/ir"
)

func TestPredicateSealed(t *testing.T) {
	var _ Predicate = Comparison{}
	var _ Predicate = And{}
	var _ Predicate = Or{}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "c", Field{Path: ir.Path{"a", "b"}, Alias: "c"}.Name())
	assert.Equal(t, "a.b", Field{Path: ir.Path{"a", "b"}}.Name())
}

func TestQueryWildcard(t *testing.T) {
	assert.True(t, Query{Collection: "t"}.Wildcard())
	assert.False(t, Query{Collection: "t", Projection: []Field{{Path: ir.Path{"a"}}}}.Wildcard())
}

func TestOperatorValid(t *testing.T) {
	for _, op := range Operators {
		assert.True(t, op.Valid(), string(op))
	}
	assert.False(t, Operator("==").Valid())
	assert.False(t, Operator("LIKE").Valid())
}

func TestQueryString(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{
			name:  "wildcard",
			query: Query{Collection: "coupons"},
			want:  "SELECT * FROM coupons",
		},
		{
			name: "alias and filter",
			query: Query{
				Collection: "coupons",
				Projection: []Field{
					{Path: ir.Path{"a", "b"}, Alias: "c"},
					{Path: ir.Path{"userEmail"}},
				},
				Filter: Comparison{Path: ir.Path{"couponState"}, Op: OpEq, Value: ir.IRInt(4)},
			},
			want: "SELECT a.b AS c, userEmail FROM coupons WHERE couponState = 4",
		},
		{
			name: "precedence is explicit",
			query: Query{
				Collection: "t",
				Filter: Or{
					Left: Comparison{Path: ir.Path{"x"}, Op: OpEq, Value: ir.IRInt(1)},
					Right: And{
						Left:  Comparison{Path: ir.Path{"y"}, Op: OpEq, Value: ir.IRInt(2)},
						Right: Comparison{Path: ir.Path{"z"}, Op: OpEq, Value: ir.IRInt(3)},
					},
				},
			},
			want: "SELECT * FROM t WHERE (x = 1 OR (y = 2 AND z = 3))",
		},
		{
			name: "quoted identifiers",
			query: Query{
				Collection: "system.users",
				Projection: []Field{
					{Path: ir.Path{"order"}},
					{Path: ir.Path{"order", "total"}},
					{Path: ir.Path{"tags", "0"}},
					{Path: ir.Path{"first name"}, Alias: "from"},
				},
			},
			want: "SELECT `order`, order.total, tags.0, `first name` AS `from` FROM `system.users`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.String())
		})
	}
}

func TestFormatLiteral(t *testing.T) {
	date := ir.NewIRDateTime(time.Date(2021, 6, 1, 12, 30, 0, 0, time.UTC))

	tests := []struct {
		in   ir.IRValue
		want string
	}{
		{ir.IRString("it's"), "'it''s'"},
		{ir.IRInt(-3), "-3"},
		{ir.IRFloat(2.5), "2.5"},
		{ir.IRFloat(3), "3.0"},
		{ir.IRFloat(1e21), "1e+21"},
		{ir.IRBool(true), "TRUE"},
		{ir.IRBool(false), "FALSE"},
		{ir.IRNull{}, "NULL"},
		{nil, "NULL"},
		{date, "DATE '2021-06-01T12:30:00Z'"},
		{ir.IRArray{ir.IRInt(1), ir.IRString("a")}, "(1, 'a')"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLiteral(tt.in))
	}
}

func TestComparisonStringIn(t *testing.T) {
	c := Comparison{Path: ir.Path{"state"}, Op: OpIn, Value: ir.IRArray{ir.IRInt(1), ir.IRInt(2)}}
	assert.Equal(t, "state IN (1, 2)", c.String())
}

func TestIsReserved(t *testing.T) {
	assert.True(t, IsReserved("select"))
	assert.True(t, IsReserved("Order"))
	assert.False(t, IsReserved("date"))
	assert.False(t, IsReserved("userEmail"))
}
