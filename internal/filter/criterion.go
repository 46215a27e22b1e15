package filter

import (
	"reflect"
)

// Criterion is one node of a filter expression tree.
//
// The built-in variants are UnaryCriterion, BinaryCriterion, TypeCriterion,
// BooleanCriterion and NotCriterion. Other implementations are allowed;
// they receive the same resolver and must return backend predicates.
type Criterion interface {
	Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error)
}

// UnaryCriterion tests a field without a value (NULL, NOT_NULL).
type UnaryCriterion struct {
	Join  string // relationship name, empty for the root
	Field string
	Op    Operation
}

// JoinName returns the relationship the field is reached through, empty
// for the root.
func (c *UnaryCriterion) JoinName() string { return c.Join }

// FieldName returns the tested field.
func (c *UnaryCriterion) FieldName() string { return c.Field }

// Operation returns the criterion's operation.
func (c *UnaryCriterion) Operation() Operation { return c.Op }

// ToBuilder wraps the criterion in a new Builder.
func (c *UnaryCriterion) ToBuilder() *Builder { return NewBuilder(c) }

// Compile implements Criterion.
func (c *UnaryCriterion) Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error) {
	if c.Op != OpNull && c.Op != OpNotNull {
		return nil, invalidOperation("unary", c.Op)
	}
	if isBlank(c.Field) {
		return nil, blankField("unary", c.Op)
	}
	path, err := r.Resolve(c.Join, c.Field)
	if err != nil {
		return nil, err
	}
	if c.Op == OpNull {
		return cb.IsNull(path), nil
	}
	return cb.IsNotNull(path), nil
}

// BinaryCriterion compares a field with a value (EQUALS, NOT_EQUALS, IN).
// For IN, Value holds a slice or array of candidates.
type BinaryCriterion struct {
	Join  string
	Field string
	Op    Operation
	Value any
}

// JoinName returns the relationship the field is reached through, empty
// for the root.
func (c *BinaryCriterion) JoinName() string { return c.Join }

// FieldName returns the tested field.
func (c *BinaryCriterion) FieldName() string { return c.Field }

// Operation returns the criterion's operation.
func (c *BinaryCriterion) Operation() Operation { return c.Op }

// ToBuilder wraps the criterion in a new Builder.
func (c *BinaryCriterion) ToBuilder() *Builder { return NewBuilder(c) }

// Values returns the IN candidates as a slice. ok is false when Value is
// not a slice or array.
func (c *BinaryCriterion) Values() (values []any, ok bool) {
	switch v := c.Value.(type) {
	case []any:
		return v, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(c.Value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	values = make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, true
}

// Compile implements Criterion.
func (c *BinaryCriterion) Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error) {
	var values []any
	switch c.Op {
	case OpEquals, OpNotEquals:
	case OpIn:
		var ok bool
		if values, ok = c.Values(); !ok {
			return nil, &CompileError{
				Code:    ErrCodeInvalidValue,
				Kind:    "binary",
				Op:      c.Op,
				Message: "IN value must be a slice or array",
			}
		}
	default:
		return nil, invalidOperation("binary", c.Op)
	}
	if isBlank(c.Field) {
		return nil, blankField("binary", c.Op)
	}

	path, err := r.Resolve(c.Join, c.Field)
	if err != nil {
		return nil, err
	}

	switch c.Op {
	case OpEquals:
		return cb.Equal(path, c.Value), nil
	case OpNotEquals:
		return cb.NotEqual(path, c.Value), nil
	default:
		if len(values) == 0 {
			// Nothing is a member of the empty set.
			return cb.Or(), nil
		}
		return cb.In(path, values), nil
	}
}

// TypeCriterion compares the type of the root or joined entity (TYPE,
// NOT_TYPE). It has no field.
type TypeCriterion struct {
	Join string
	Op   Operation
	Type EntityType
}

// JoinName returns the relationship whose entity is checked, empty for
// the root.
func (c *TypeCriterion) JoinName() string { return c.Join }

// FieldName is always empty: a type check addresses the entity itself.
func (c *TypeCriterion) FieldName() string { return "" }

// Operation returns TYPE or NOT_TYPE.
func (c *TypeCriterion) Operation() Operation { return c.Op }

// ToBuilder wraps the criterion in a new Builder.
func (c *TypeCriterion) ToBuilder() *Builder { return NewBuilder(c) }

// Compile implements Criterion.
func (c *TypeCriterion) Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error) {
	if c.Op != OpType && c.Op != OpNotType {
		return nil, invalidOperation("type", c.Op)
	}
	path, err := r.Resolve(c.Join, "")
	if err != nil {
		return nil, err
	}
	if c.Op == OpType {
		return cb.TypeEqual(path, c.Type), nil
	}
	return cb.TypeNotEqual(path, c.Type), nil
}

// BooleanCriterion joins its children with AND or OR.
//
// Children is the only mutable part of a tree: Add appends in place.
// An empty AND is true and an empty OR is false.
type BooleanCriterion struct {
	Operator BoolOperator
	Children []Criterion
}

// Add appends criteria to the group and returns it.
func (c *BooleanCriterion) Add(criteria ...Criterion) *BooleanCriterion {
	c.Children = append(c.Children, criteria...)
	return c
}

// ToBuilder wraps the group in a new Builder.
func (c *BooleanCriterion) ToBuilder() *Builder { return NewBuilder(c) }

// Compile implements Criterion. Children compile in order; the first
// failure is returned unchanged.
func (c *BooleanCriterion) Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error) {
	if c.Operator != OpAnd && c.Operator != OpOr {
		return nil, &CompileError{
			Code:    ErrCodeInvalidOperation,
			Kind:    "boolean",
			Message: "unknown boolean operator " + string(c.Operator),
		}
	}

	preds := make([]Predicate, 0, len(c.Children))
	for _, child := range c.Children {
		if child == nil {
			return nil, &CompileError{Code: ErrCodeNilCriterion, Kind: "boolean", Message: "nil child"}
		}
		p, err := child.Compile(cb, r)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	if c.Operator == OpAnd {
		return cb.And(preds...), nil
	}
	return cb.Or(preds...), nil
}

// NotCriterion negates another criterion.
type NotCriterion struct {
	Inner Criterion
}

// ToBuilder wraps the negation in a new Builder.
func (c *NotCriterion) ToBuilder() *Builder { return NewBuilder(c) }

// Compile implements Criterion.
func (c *NotCriterion) Compile(cb CriteriaBuilder, r *PathResolver) (Predicate, error) {
	if c.Inner == nil {
		return nil, &CompileError{Code: ErrCodeNilCriterion, Kind: "not", Message: "nothing to negate"}
	}
	p, err := c.Inner.Compile(cb, r)
	if err != nil {
		return nil, err
	}
	return cb.Not(p), nil
}
