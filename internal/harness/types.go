package harness

// StepResult is what one step produced.
type StepResult struct {
	Query   string     `json:"query"`
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows"`
	Error   string     `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step matched its expectations.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, in order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
