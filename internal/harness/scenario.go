package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one query conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixtures seed the store before the first step, in order.
	Fixtures []Fixture `yaml:"fixtures"`

	// Steps are the queries to run, in order.
	Steps []Step `yaml:"steps"`
}

// Fixture seeds one collection from a file or from inline documents.
type Fixture struct {
	// Collection receives the documents.
	Collection string `yaml:"collection"`

	// File is a fixture file (.json, .ndjson, .yaml, .cue), relative to the
	// scenario file.
	File string `yaml:"file,omitempty"`

	// Documents are inline YAML documents. Key order is kept.
	Documents yaml.Node `yaml:"documents,omitempty"`
}

// Step runs one query.
type Step struct {
	// Query is the SQL text.
	Query string `yaml:"query"`

	// Expect describes the outcome. A step without expectations only has
	// to run without error.
	Expect Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Columns are the output aliases in order.
	Columns []string `yaml:"columns,omitempty"`

	// Rows are the rendered records in order. An empty list expects no
	// records.
	Rows [][]string `yaml:"rows,omitempty"`

	// Count is the expected number of records.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected error code. When set the step must fail.
	Error string `yaml:"error,omitempty"`

	// rowsSet records whether rows was written, so "rows: []" expects an
	// empty result while a missing key checks nothing.
	rowsSet bool
}

// expectKeys are the fields an expect block may set. Node.Decode does not
// inherit the decoder's KnownFields setting, so they are checked here.
var expectKeys = map[string]bool{"columns": true, "rows": true, "count": true, "error": true}

// UnmarshalYAML records whether rows was present.
func (e *Expect) UnmarshalYAML(n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !expectKeys[key.Value] {
			return fmt.Errorf("line %d: field %s not found in expect", key.Line, key.Value)
		}
	}

	type plain Expect
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*e = Expect(p)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "rows" {
			e.rowsSet = true
		}
	}
	return nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Fixture file paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i, f := range scenario.Fixtures {
		if f.File != "" && !filepath.IsAbs(f.File) {
			scenario.Fixtures[i].File = filepath.Join(base, f.File)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative fixture paths are kept as
// written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, f := range s.Fixtures {
		if f.Collection == "" {
			return fmt.Errorf("fixtures[%d]: collection is required", i)
		}
		hasDocs := f.Documents.Kind != 0
		if (f.File == "") == !hasDocs {
			return fmt.Errorf("fixtures[%d]: exactly one of file and documents is required", i)
		}
	}

	for i, step := range s.Steps {
		if step.Query == "" {
			return fmt.Errorf("steps[%d]: query is required", i)
		}
		e := step.Expect
		if e.Error != "" && (len(e.Columns) > 0 || e.rowsSet || e.Count != nil) {
			return fmt.Errorf("steps[%d]: an expected error excludes columns, rows and count", i)
		}
		if e.Count != nil && *e.Count < 0 {
			return fmt.Errorf("steps[%d]: count must not be negative", i)
		}
	}

	return nil
}
