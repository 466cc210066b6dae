package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioDir holds the checked-in scenarios, relative to this package.
const scenarioDir = "../../testdata/scenarios"

// TestDemoScenarios runs every checked-in scenario. They serve as
// end-to-end checks of parsing, translation and execution against the
// embedded store, and as examples of the scenario format.
func TestDemoScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(scenarioDir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenarios found in %s", scenarioDir)

	for _, path := range paths {
		name := filepath.Base(path)
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err, "failed to load scenario from %s", path)

			assert.NotEmpty(t, scenario.Description, "scenario should have description")

			result, err := Run(scenario)
			require.NoError(t, err, "scenario execution failed")
			require.NotNil(t, result, "result should not be nil")

			assert.True(t, result.Pass, "scenario should pass: errors=%v", result.Errors)
			assert.Len(t, result.Steps, len(scenario.Steps))
		})
	}
}

// TestDemoScenarios_Golden pins the full step output of one scenario.
func TestDemoScenarios_Golden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join(scenarioDir, "coupons_by_state.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

// TestDemoScenarios_Replay checks that running a scenario twice yields the
// same outcomes, generated ids included.
func TestDemoScenarios_Replay(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join(scenarioDir, "people_filters.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	require.True(t, first.Pass, "errors: %v", first.Errors)
	assert.Equal(t, first.Steps, second.Steps)
}
