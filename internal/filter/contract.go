package filter

// Predicate is a compiled condition owned by the backend.
// The filter package never inspects it.
type Predicate any

// Path is a backend reference to a field, or to an entity when a criterion
// compares types.
type Path any

// From is a queryable source: the query root or a joined entity.
// A From is itself a valid Path for type comparisons.
type From interface {
	// Get resolves a field of this source. Unknown fields are reported
	// with the backend's own error.
	Get(field string) (Path, error)

	// Join returns the related entity reachable through the named
	// relationship using the given join kind.
	Join(name string, kind JoinKind) (From, error)
}

// CriteriaBuilder creates backend predicates.
//
// And with no arguments must produce an always-true predicate and Or with
// no arguments an always-false one.
type CriteriaBuilder interface {
	IsNull(p Path) Predicate
	IsNotNull(p Path) Predicate
	Equal(p Path, value any) Predicate
	NotEqual(p Path, value any) Predicate
	In(p Path, values []any) Predicate
	TypeEqual(p Path, t EntityType) Predicate
	TypeNotEqual(p Path, t EntityType) Predicate
	And(ps ...Predicate) Predicate
	Or(ps ...Predicate) Predicate
	Not(p Predicate) Predicate
}

// QueryContext is the per-query view a backend hands to Compile.
type QueryContext interface {
	CriteriaBuilder() CriteriaBuilder
	Root() From
}
