package filter

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes compile errors raised by this package.
type ErrorCode string

const (
	// ErrCodeInvalidOperation indicates a criterion holds an operation it
	// cannot compile, e.g. a UnaryCriterion with EQUALS.
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// ErrCodeInvalidValue indicates an IN criterion whose value is not a
	// slice or array.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeNilCriterion indicates a nil node in the tree.
	ErrCodeNilCriterion ErrorCode = "NIL_CRITERION"

	// ErrCodeBlankField indicates a null check or comparison without a
	// field name. Only type criteria address the entity itself.
	ErrCodeBlankField ErrorCode = "BLANK_FIELD"
)

// CompileError is returned by Compile for malformed criteria.
// Errors from the backend (unknown fields or joins) are returned as-is.
type CompileError struct {
	Code    ErrorCode
	Kind    string    // criterion kind: "unary", "binary", "type", ...
	Op      Operation // offending operation, if any
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s criterion: %s (op=%s)", e.Code, e.Kind, e.Message, e.Op)
	}
	return fmt.Sprintf("%s: %s criterion: %s", e.Code, e.Kind, e.Message)
}

// IsInvalidOperation reports whether err is an INVALID_OPERATION error.
func IsInvalidOperation(err error) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeInvalidOperation
	}
	return false
}

func blankField(kind string, op Operation) *CompileError {
	return &CompileError{
		Code:    ErrCodeBlankField,
		Kind:    kind,
		Op:      op,
		Message: "field name is required",
	}
}

func invalidOperation(kind string, op Operation) *CompileError {
	return &CompileError{
		Code:    ErrCodeInvalidOperation,
		Kind:    kind,
		Op:      op,
		Message: "incorrect filter operation",
	}
}
