package filter

import (
	"fmt"
	"strings"
)

// Operation is the comparison verb of a leaf criterion.
// The string value is the stable external code.
type Operation string

const (
	OpNull      Operation = "NULL"
	OpNotNull   Operation = "NOT_NULL"
	OpEquals    Operation = "EQUALS"
	OpNotEquals Operation = "NOT_EQUALS"
	OpIn        Operation = "IN"
	OpType      Operation = "TYPE"
	OpNotType   Operation = "NOT_TYPE"
)

// Operations lists every supported operation in declaration order.
var Operations = []Operation{OpNull, OpNotNull, OpEquals, OpNotEquals, OpIn, OpType, OpNotType}

// Code returns the stable code used in documents and error reports.
func (o Operation) Code() string {
	return string(o)
}

// Valid reports whether o is one of the supported operations.
func (o Operation) Valid() bool {
	for _, op := range Operations {
		if op == o {
			return true
		}
	}
	return false
}

// ParseOperation converts a code (case-insensitive) to an Operation.
func ParseOperation(code string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(code)))
	if !op.Valid() {
		return "", fmt.Errorf("unknown filter operation %q", code)
	}
	return op, nil
}

// BoolOperator combines the children of a BooleanCriterion.
type BoolOperator string

const (
	OpAnd BoolOperator = "AND"
	OpOr  BoolOperator = "OR"
)

// JoinKind selects how a related entity is joined to the query root.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
)

// DefaultJoinKind is used for join names that were never defined.
const DefaultJoinKind = JoinInner

// ParseJoinKind converts a name (case-insensitive) to a JoinKind.
func ParseJoinKind(name string) (JoinKind, error) {
	switch k := JoinKind(strings.ToUpper(strings.TrimSpace(name))); k {
	case JoinInner, JoinLeft, JoinRight:
		return k, nil
	default:
		return "", fmt.Errorf("unknown join kind %q", name)
	}
}

// EntityType names the runtime type of an entity, compared by TYPE and
// NOT_TYPE criteria against the backend's discriminator.
type EntityType string
