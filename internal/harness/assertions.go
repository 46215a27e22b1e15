package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is one expectation that did not hold.
type AssertionError struct {
	Check    string // "ids", "tree", "sql", "portable", "warnings" or "error"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, actual %s", e.Check, e.Expected, e.Actual)
}

// EvaluateExpect checks a case result against its expectations and returns
// one message per failed check.
func EvaluateExpect(cr *CaseResult, e Expect) []string {
	var errs []error

	if e.Error != "" {
		if err := assertError(cr, e.Error); err != nil {
			errs = append(errs, err)
		}
		return messages(errs)
	}
	if cr.Error != "" {
		return []string{"unexpected error: " + cr.Error}
	}

	if e.IDs != nil && !slices.Equal(cr.IDs, e.IDs) {
		errs = append(errs, &AssertionError{
			Check:    "ids",
			Expected: fmt.Sprintf("%v", e.IDs),
			Actual:   fmt.Sprintf("%v", cr.IDs),
		})
	}
	if e.Tree != "" && cr.Tree != e.Tree {
		errs = append(errs, &AssertionError{Check: "tree", Expected: e.Tree, Actual: cr.Tree})
	}
	if e.SQL != "" && cr.SQL != e.SQL {
		errs = append(errs, &AssertionError{Check: "sql", Expected: e.SQL, Actual: cr.SQL})
	}
	if e.Portable != nil && cr.Portable != *e.Portable {
		errs = append(errs, &AssertionError{
			Check:    "portable",
			Expected: fmt.Sprint(*e.Portable),
			Actual:   fmt.Sprint(cr.Portable),
		})
	}
	for _, want := range e.Warnings {
		if err := assertWarning(cr.Warnings, want); err != nil {
			errs = append(errs, err)
		}
	}
	return messages(errs)
}

func assertError(cr *CaseResult, want string) error {
	if cr.Error == "" {
		return &AssertionError{Check: "error", Expected: fmt.Sprintf("error containing %q", want), Actual: "no error"}
	}
	if !strings.Contains(cr.Error, want) {
		return &AssertionError{Check: "error", Expected: fmt.Sprintf("error containing %q", want), Actual: fmt.Sprintf("%q", cr.Error)}
	}
	return nil
}

func assertWarning(warnings []string, want string) error {
	for _, w := range warnings {
		if strings.Contains(w, want) {
			return nil
		}
	}
	return &AssertionError{
		Check:    "warnings",
		Expected: fmt.Sprintf("a warning containing %q", want),
		Actual:   fmt.Sprintf("%q", warnings),
	}
}

func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
