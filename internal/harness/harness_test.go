package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, content string) *Scenario {
	t.Helper()
	scenario, err := ParseScenario([]byte(content))
	require.NoError(t, err)
	return scenario
}

const kvFixture = `
name: kv
description: "key/value rows"
fixtures:
  - collection: kv
    documents:
      - {k: 1, v: a, when: 2021-01-01}
      - {k: 2, v: b, tags: [x, y], sub: {z: true}}
`

func TestRun_Passes(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT k, v AS value FROM kv WHERE k >= 1
    expect:
      columns: [k, value]
      rows:
        - ["1", a]
        - ["2", b]
      count: 2
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, []string{"k", "value"}, result.Steps[0].Columns)
}

func TestRun_RendersValues(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT when, tags, sub, missing FROM kv
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, [][]string{
		{"2021-01-01T00:00:00Z", "null", "null", "null"},
		{"null", `["x","y"]`, `{"z":true}`, "null"},
	}, result.Steps[0].Rows)
}

func TestRun_WildcardRows(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT * FROM kv WHERE k = 1
    expect:
      rows:
        - ["_id: doc-1", "k: 1", "v: a", "when: 2021-01-01T00:00:00Z"]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Steps[0].Columns)
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT k FROM kv
    expect:
      columns: [key]
      rows:
        - ["1"]
        - ["3"]
        - ["4"]
      count: 1
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"step 1 (SELECT k FROM kv): columns: expected [key], got [k]",
		"step 1 (SELECT k FROM kv): count: expected 1, got 2",
		`step 1 (SELECT k FROM kv): row 2: expected ["3"], got ["2"]`,
		`step 1 (SELECT k FROM kv): row 3: expected ["4"], got nothing`,
	}, result.Errors)
}

func TestRun_UnexpectedRows(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT v FROM kv
    expect:
      rows: []
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		`step 1 (SELECT v FROM kv): row 1: unexpected ["a"]`,
		`step 1 (SELECT v FROM kv): row 2: unexpected ["b"]`,
	}, result.Errors)
}

func TestRun_ExpectedError(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT k FROM kv GROUP BY k
    expect:
      error: UNSUPPORTED
  - query: SELECT k FROM kv WHERE k IN 1
    expect:
      error: INVALID_LITERAL
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "UNSUPPORTED", result.Steps[0].Error)
	assert.Empty(t, result.Steps[0].Rows)
}

func TestRun_ErrorMismatch(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT k FROM kv
    expect:
      error: UNSUPPORTED
  - query: SELECT k, k FROM kv
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"step 1 (SELECT k FROM kv): expected error UNSUPPORTED, got 2 row(s)",
		"step 2 (SELECT k, k FROM kv): unexpected error DUPLICATE_ALIAS",
	}, result.Errors)
}

func TestRun_StepsAreIndependent(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT k FROM nowhere
    expect:
      rows: []
  - query: SELECT k FROM kv WHERE v = 'b'
    expect:
      rows:
        - ["2"]
`)

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FreshStorePerRun(t *testing.T) {
	scenario := mustParse(t, kvFixture+`
steps:
  - query: SELECT * FROM kv
    expect:
      count: 2
`)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, second.Pass, "errors: %v", second.Errors)
	assert.Equal(t, first.Steps, second.Steps)
}

func TestRun_BadFixture(t *testing.T) {
	scenario := mustParse(t, `
name: bad
description: d
fixtures:
  - collection: c
    file: does/not/exist.json
steps:
  - query: SELECT a FROM c
`)

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixtures[0]")
}

func TestRun_InlineFixtureMustHoldDocuments(t *testing.T) {
	scenario := mustParse(t, `
name: bad
description: d
fixtures:
  - collection: c
    documents: [1, 2]
steps:
  - query: SELECT a FROM c
`)

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixtures[0]")
}
