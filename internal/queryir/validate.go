package queryir

import (
	"fmt"

	"github.com/roach88/critq/internal/filter"
)

// ValidationResult contains portability analysis of a query.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment features.
	IsPortable bool

	// Warnings lists non-portable features used in the query, in traversal
	// order. Empty when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules.
//
// Portable fragment rules:
//  1. Inner joins only
//  2. No NULL checks and no comparisons with nil
//  3. No disjunction or negation (OR, NOT, NOT_EQUALS)
//  4. No entity type checks
//  5. No empty IN lists
//
// Non-portable queries are allowed and execute correctly with the SQL
// backend. Warnings inform callers of migration constraints.
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addWarning("nil query - portability cannot be verified")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addWarning("nil query - portability cannot be verified")
	default:
		v.addWarning("Unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	for _, j := range sel.Joins {
		// Rule 1
		if j.Kind != filter.JoinInner {
			v.addWarning("%s join on '%s' - portable fragment requires inner joins only", j.Kind, j.Relation)
		}
	}
	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // no filter
	}

	switch pred := Deref(p).(type) {
	case IsNull:
		v.addWarning("Field '%s' tested for NULL - portable fragment requires explicit values", refLabel(pred.Ref))
	case IsNotNull:
		v.addWarning("Field '%s' tested for NOT NULL - portable fragment requires explicit values", refLabel(pred.Ref))
	case Equals:
		v.checkValue(pred.Ref, pred.Value)
	case NotEquals:
		v.checkValue(pred.Ref, pred.Value)
		v.addWarning("Field '%s' compared with <> - portable fragment has no negation", refLabel(pred.Ref))
	case In:
		if len(pred.Values) == 0 {
			v.addWarning("Field '%s' tested against an empty IN list", refLabel(pred.Ref))
		}
		for _, val := range pred.Values {
			v.checkValue(pred.Ref, val)
		}
	case TypeEquals, TypeNotEquals:
		v.addWarning("Type check on '%s' - portable fragment has no entity types", typeLabel(pred))
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Or:
		v.addWarning("OR with %d branches - portable fragment has no disjunction", len(pred.Predicates))
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case Not:
		v.addWarning("NOT - portable fragment has no negation")
		v.validatePredicate(pred.Predicate)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

// Rule 2
func (v *validator) checkValue(ref FieldRef, val any) {
	if val == nil {
		v.addWarning("Field '%s' compared to nil - portable fragment requires explicit values", refLabel(ref))
	}
}

func typeLabel(p Predicate) string {
	switch t := p.(type) {
	case TypeEquals:
		return sourceLabel(t.Ref)
	case TypeNotEquals:
		return sourceLabel(t.Ref)
	}
	return ""
}
