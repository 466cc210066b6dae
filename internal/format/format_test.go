package format

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/ir"
	"github.com/roach88/sqlmongo/internal/store"
	"github.com/roach88/sqlmongo/internal/testutil"
)

func people(t *testing.T) store.Conn {
	t.Helper()
	return testutil.SeedStore(t, "people", testutil.People())
}

func query(t *testing.T, conn store.Conn, text string) *engine.Result {
	t.Helper()
	res, err := engine.Run(context.Background(), conn, text)
	require.NoError(t, err)
	t.Cleanup(func() { res.Close(context.Background()) })
	return res
}

func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

func TestHorizontal(t *testing.T) {
	res := query(t, people(t), "SELECT name, age, address.city AS city, joined FROM people")

	var buf bytes.Buffer
	require.NoError(t, Horizontal(context.Background(), &buf, res, Config{Padding: 8, NullValue: "-"}))
	assertGolden(t, "horizontal", buf.Bytes())
}

func TestVertical(t *testing.T) {
	res := query(t, people(t), "SELECT name, tags FROM people WHERE name = 'Ann'")

	var buf bytes.Buffer
	require.NoError(t, Vertical(context.Background(), &buf, res, Config{Padding: 8}))
	assertGolden(t, "vertical", buf.Bytes())
}

func TestVertical_Wildcard(t *testing.T) {
	res := query(t, people(t), "SELECT * FROM people WHERE name = 'Bob'")

	var buf bytes.Buffer
	require.NoError(t, Vertical(context.Background(), &buf, res, Config{Padding: 10}))
	assertGolden(t, "vertical_wildcard", buf.Bytes())
}

func TestJSON(t *testing.T) {
	res := query(t, people(t), "SELECT name, address.city AS city, joined FROM people WHERE age >= 31")

	var buf bytes.Buffer
	require.NoError(t, JSON(context.Background(), &buf, res, Config{}))
	assertGolden(t, "json", buf.Bytes())
}

func TestCSV(t *testing.T) {
	res := query(t, people(t), "SELECT name, age FROM people")

	var buf bytes.Buffer
	require.NoError(t, CSV(context.Background(), &buf, res, Config{CSVSeparator: ';'}))
	assert.Equal(t, "name;age\nAnn;31\nBob;25\nCleo;42.5\n", buf.String())
}

func TestCSV_QuotesCells(t *testing.T) {
	conn := testutil.SeedStore(t, "t", testutil.Coupons())
	res := query(t, conn, `SELECT userEmail AS "mail, primary" FROM t WHERE couponState = 4`)

	var buf bytes.Buffer
	require.NoError(t, CSV(context.Background(), &buf, res, Config{}))
	assert.Equal(t, "\"mail, primary\"\na@x.com\n", buf.String())
}

func TestPrint_CSVFile(t *testing.T) {
	res := query(t, people(t), "SELECT name FROM people WHERE active = true")
	path := filepath.Join(t.TempDir(), "out.csv")

	var buf bytes.Buffer
	require.NoError(t, Print(context.Background(), &buf, res, Config{Output: path}))

	assert.Equal(t, "Writing output to CSV file: "+path+" ...\nDone\n", buf.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\nAnn\nCleo\n", string(data))
}

func TestPrint_CSVFileUnwritable(t *testing.T) {
	res := query(t, people(t), "SELECT name FROM people")
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	var buf bytes.Buffer
	err := Print(context.Background(), &buf, res, Config{Output: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create CSV file")
}

func TestPrint_WildcardForcesVertical(t *testing.T) {
	conn := people(t)
	cfg := Config{Padding: 10}

	var want bytes.Buffer
	require.NoError(t, Vertical(context.Background(), &want, query(t, conn, "SELECT * FROM people"), cfg))

	for _, output := range []string{OutputHorizontal, "", filepath.Join(t.TempDir(), "x.csv")} {
		cfg.Output = output
		var got bytes.Buffer
		require.NoError(t, Print(context.Background(), &got, query(t, conn, "SELECT * FROM people"), cfg))
		assert.Equal(t, want.String(), got.String(), "output %q", output)
	}
}

func TestPrint_ClosesResult(t *testing.T) {
	res := query(t, people(t), "SELECT name FROM people")

	var buf bytes.Buffer
	require.NoError(t, Print(context.Background(), &buf, res, Config{Output: OutputVertical}))
	assert.False(t, res.Next(context.Background()))
}

func TestPrint_ConsumedResult(t *testing.T) {
	res := query(t, people(t), "SELECT name FROM people")
	require.True(t, res.Next(context.Background()))

	var buf bytes.Buffer
	err := Print(context.Background(), &buf, res, Config{Output: OutputJSON})
	assert.ErrorIs(t, err, engine.ErrResultConsumed)
}

func TestConfig_Mode(t *testing.T) {
	tests := []struct {
		output   string
		wildcard bool
		want     string
	}{
		{"", false, OutputHorizontal},
		{OutputHorizontal, false, OutputHorizontal},
		{OutputVertical, false, OutputVertical},
		{OutputJSON, false, OutputJSON},
		{"out.csv", false, "out.csv"},
		{"", true, OutputVertical},
		{OutputHorizontal, true, OutputVertical},
		{"out.csv", true, OutputVertical},
		{OutputJSON, true, OutputJSON},
	}
	for _, tt := range tests {
		got := Config{Output: tt.output}.Mode(tt.wildcard)
		assert.Equal(t, tt.want, got, "output %q wildcard %v", tt.output, tt.wildcard)
	}
}

func TestValue(t *testing.T) {
	when := ir.NewIRDateTime(time.Date(2021, time.May, 4, 13, 5, 9, 0, time.UTC))
	cfg := Config{NullValue: "NULL"}

	tests := []struct {
		name string
		in   ir.IRValue
		want string
	}{
		{"nil", nil, "NULL"},
		{"null", ir.IRNull{}, "NULL"},
		{"string", ir.IRString("x y"), "x y"},
		{"int", ir.IRInt(-7), "-7"},
		{"float", ir.IRFloat(2.5), "2.5"},
		{"whole float", ir.IRFloat(4), "4"},
		{"nan", ir.IRFloat(math.NaN()), "NaN"},
		{"bool", ir.IRBool(true), "true"},
		{"date", when, "2021-05-04 13:05:09"},
		{"array", ir.IRArray{ir.IRInt(1), ir.IRString("a"), ir.IRNull{}}, `[1,"a",null]`},
		{"document", ir.D(ir.F("b", ir.IRInt(1)), ir.F("a", when)), `{"b":1,"a":{"$date":"2021-05-04T13:05:09.000Z"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(tt.in, cfg))
		})
	}
}

func TestValue_DateLayout(t *testing.T) {
	when := ir.NewIRDateTime(time.Date(2021, time.May, 4, 13, 5, 9, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, "04/05/2021 12:05", Value(when, Config{DateLayout: "02/01/2006 15:04"}))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "abcdef", pad("abcdef", 4))
	assert.Equal(t, "æø ", pad("æø", 3))
	assert.Equal(t, "x", pad("x", 0))
}
