// Package errors provides structured error types shared by the solver and
// its callers. Every input-validation failure carries an ErrorCode so the
// surrounding layers can distinguish bad input from solver defects.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeInvalidRational indicates malformed numeric input.
	ErrCodeInvalidRational ErrorCode = "INVALID_RATIONAL"
	// ErrCodeDivisionByZero indicates an exact division by zero.
	ErrCodeDivisionByZero ErrorCode = "DIVISION_BY_ZERO"
	// ErrCodeInvalidRecipeSettings indicates a dangling machine, fuel, module
	// or beacon reference in the recipe settings.
	ErrCodeInvalidRecipeSettings ErrorCode = "INVALID_RECIPE_SETTINGS"
	// ErrCodeUnknownItem indicates an objective references an unknown item.
	ErrCodeUnknownItem ErrorCode = "UNKNOWN_ITEM"
	// ErrCodeConflictingObjectives indicates more than one maximize objective.
	ErrCodeConflictingObjectives ErrorCode = "CONFLICTING_OBJECTIVES"
	// ErrCodeSolverInternal indicates an unbounded or otherwise defective model.
	ErrCodeSolverInternal ErrorCode = "SOLVER_INTERNAL"
	// ErrCodeInvalidRequest indicates malformed input outside the solver core.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// StructuredError carries an error code, a human-readable message, the
// underlying cause and optional debugging context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with a code, message and context.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in err's chain,
// or the empty code when there is none.
func CodeOf(err error) ErrorCode {
	var structured *StructuredError
	if stderrors.As(err, &structured) {
		return structured.Code
	}
	return ""
}

// IsCode reports whether any StructuredError in err's chain has the code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		var structured *StructuredError
		if !stderrors.As(err, &structured) {
			return false
		}
		if structured.Code == code {
			return true
		}
		err = structured.Cause
	}
	return false
}
