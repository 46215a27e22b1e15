package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Name is the scenario name.
	Name string `json:"name"`

	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	// Cases hold what each case observed, in scenario order.
	Cases []CaseResult `json:"cases"`
}

// CaseResult is what one case compiled to and matched.
type CaseResult struct {
	Name     string   `json:"name"`
	Pass     bool     `json:"pass"`
	Tree     string   `json:"tree,omitempty"`
	SQL      string   `json:"sql,omitempty"`
	Params   []any    `json:"params,omitempty"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings,omitempty"`
	IDs      []string `json:"ids"`

	// Error is the compile or query error, if any.
	Error string `json:"error,omitempty"`

	// Failures lists the expectations that did not hold.
	Failures []string `json:"failures,omitempty"`
}

// NewResult creates a passing result with no cases.
func NewResult(name string) *Result {
	return &Result{
		Name:  name,
		Pass:  true,
		Cases: []CaseResult{},
	}
}

// Add appends a case result; a failing case fails the scenario.
func (r *Result) Add(c CaseResult) {
	r.Cases = append(r.Cases, c)
	if !c.Pass {
		r.Pass = false
	}
}

// Failures flattens the case failures as "case: message" lines.
func (r *Result) Failures() []string {
	var out []string
	for _, c := range r.Cases {
		for _, f := range c.Failures {
			out = append(out, c.Name+": "+f)
		}
	}
	return out
}
