package filter

// Scope builds criteria against one join. The zero Scope targets the query
// root; On returns a Scope for a named relationship.
//
//	filter.IsNull("email")             // root.email IS NULL
//	filter.On("owner").IsNull("email") // owner.email IS NULL
type Scope struct {
	join string
}

// On returns a Scope whose criteria resolve through the named join.
func On(join string) Scope {
	return Scope{join: join}
}

// JoinName returns the join this scope targets (empty for the root).
func (s Scope) JoinName() string { return s.join }

// IsNull matches when field is NULL.
func (s Scope) IsNull(field string) *UnaryCriterion {
	return &UnaryCriterion{Join: s.join, Field: field, Op: OpNull}
}

// IsNotNull matches when field is not NULL.
func (s Scope) IsNotNull(field string) *UnaryCriterion {
	return &UnaryCriterion{Join: s.join, Field: field, Op: OpNotNull}
}

// Equals matches when field equals value. A nil value tests for NULL in
// the SQL backend.
func (s Scope) Equals(field string, value any) *BinaryCriterion {
	return &BinaryCriterion{Join: s.join, Field: field, Op: OpEquals, Value: value}
}

// NotEquals matches when field differs from value.
func (s Scope) NotEquals(field string, value any) *BinaryCriterion {
	return &BinaryCriterion{Join: s.join, Field: field, Op: OpNotEquals, Value: value}
}

// In matches when the field equals any of values. With no values the
// criterion never matches.
func (s Scope) In(field string, values ...any) *BinaryCriterion {
	vals := make([]any, len(values))
	copy(vals, values)
	return &BinaryCriterion{Join: s.join, Field: field, Op: OpIn, Value: vals}
}

// InSlice is In for a typed slice or array, e.g. a []string. The elements
// are copied. Anything else is kept as is and fails to compile with
// INVALID_VALUE.
func (s Scope) InSlice(field string, values any) *BinaryCriterion {
	c := &BinaryCriterion{Join: s.join, Field: field, Op: OpIn, Value: values}
	if vals, ok := c.Values(); ok {
		c.Value = append([]any{}, vals...)
	}
	return c
}

// IsTrue is Equals(field, true).
func (s Scope) IsTrue(field string) *BinaryCriterion {
	return s.Equals(field, true)
}

// IsFalse is Equals(field, false).
func (s Scope) IsFalse(field string) *BinaryCriterion {
	return s.Equals(field, false)
}

// IsType matches when the entity the scope targets is of type t.
func (s Scope) IsType(t EntityType) *TypeCriterion {
	return &TypeCriterion{Join: s.join, Op: OpType, Type: t}
}

// IsNotType matches when the entity the scope targets is not of type t.
func (s Scope) IsNotType(t EntityType) *TypeCriterion {
	return &TypeCriterion{Join: s.join, Op: OpNotType, Type: t}
}

// Root-level shorthands for Scope{}.

func IsNull(field string) *UnaryCriterion             { return Scope{}.IsNull(field) }
func IsNotNull(field string) *UnaryCriterion          { return Scope{}.IsNotNull(field) }
func Equals(field string, value any) *BinaryCriterion { return Scope{}.Equals(field, value) }
func NotEquals(field string, value any) *BinaryCriterion {
	return Scope{}.NotEquals(field, value)
}
func In(field string, values ...any) *BinaryCriterion { return Scope{}.In(field, values...) }
func IsTrue(field string) *BinaryCriterion            { return Scope{}.IsTrue(field) }
func IsFalse(field string) *BinaryCriterion           { return Scope{}.IsFalse(field) }
func IsType(t EntityType) *TypeCriterion              { return Scope{}.IsType(t) }
func IsNotType(t EntityType) *TypeCriterion           { return Scope{}.IsNotType(t) }

// InSlice is In for an already-typed slice. Use On(join).InSlice for a
// joined field.
func InSlice[T any](field string, values []T) *BinaryCriterion {
	return Scope{}.In(field, toAny(values)...)
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// And groups criteria into a conjunction. The slice is copied.
func And(criteria ...Criterion) *BooleanCriterion {
	return group(OpAnd, criteria)
}

// Or groups criteria into a disjunction. The slice is copied.
func Or(criteria ...Criterion) *BooleanCriterion {
	return group(OpOr, criteria)
}

// Not negates a criterion.
func Not(c Criterion) *NotCriterion {
	return &NotCriterion{Inner: c}
}

func group(op BoolOperator, criteria []Criterion) *BooleanCriterion {
	children := make([]Criterion, len(criteria))
	copy(children, criteria)
	return &BooleanCriterion{Operator: op, Children: children}
}
