// Package errors provides standardized error types for grouped-table
// operations. All public verbs surface a *TableError carrying the
// operation name, the offending column when there is one, and an error
// kind that callers can test with the Is* predicates.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a TableError.
type Kind int

const (
	// KindUnknownColumn reports a selector, rename source, key, or
	// distinct column that does not exist in the table.
	KindUnknownColumn Kind = iota + 1
	// KindNameConflict reports a rename mapping two sources to the same
	// destination, or a column-bind introducing a duplicate name.
	KindNameConflict
	// KindShapeMismatch reports a per-group write-back whose row count
	// differs from the group, or mixed-shape results that cannot be
	// row-bound.
	KindShapeMismatch
	// KindInvalidKeySpec reports a grouping key specification that is
	// neither column names nor column-reference expressions.
	KindInvalidKeySpec
	// KindInternal reports an unexpected internal failure.
	KindInternal
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindUnknownColumn:
		return "unknown column"
	case KindNameConflict:
		return "name conflict"
	case KindShapeMismatch:
		return "shape mismatch"
	case KindInvalidKeySpec:
		return "invalid key spec"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// TableError represents standardized errors across all grouped-table operations.
type TableError struct {
	Kind    Kind   // Error classification
	Op      string // Operation name (e.g. "GroupBy", "Select", "Do")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface.
func (e *TableError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s: %s '%s': %s", e.Op, e.Kind, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *TableError) Unwrap() error {
	return e.Cause
}

// Is matches another *TableError. A zero field in the target acts as a
// wildcard, so errors.Is(err, &TableError{Kind: KindUnknownColumn}) tests
// the kind alone.
func (e *TableError) Is(target error) bool {
	t, ok := target.(*TableError)
	if !ok {
		return false
	}
	if t.Kind != 0 && t.Kind != e.Kind {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	if t.Column != "" && t.Column != e.Column {
		return false
	}
	return true
}

// NewUnknownColumnError creates an error for operations naming an absent column.
func NewUnknownColumnError(op, column string) *TableError {
	return &TableError{
		Kind:    KindUnknownColumn,
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewNameConflictError creates an error for rename destinations that collide.
func NewNameConflictError(op, column, message string) *TableError {
	return &TableError{
		Kind:    KindNameConflict,
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewShapeMismatchError creates an error for row-count or result-shape mismatches.
func NewShapeMismatchError(op, message string) *TableError {
	return &TableError{
		Kind:    KindShapeMismatch,
		Op:      op,
		Message: message,
	}
}

// NewInvalidKeySpecError creates an error for malformed grouping key specifications.
func NewInvalidKeySpecError(op, message string) *TableError {
	return &TableError{
		Kind:    KindInvalidKeySpec,
		Op:      op,
		Message: message,
	}
}

// NewInternalError creates an error for internal operation failures.
func NewInternalError(op string, cause error) *TableError {
	return &TableError{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// kindOf extracts the kind from an error chain, or 0.
func kindOf(err error) Kind {
	var te *TableError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsUnknownColumn reports whether err is an unknown-column error.
func IsUnknownColumn(err error) bool { return kindOf(err) == KindUnknownColumn }

// IsNameConflict reports whether err is a name-conflict error.
func IsNameConflict(err error) bool { return kindOf(err) == KindNameConflict }

// IsShapeMismatch reports whether err is a shape-mismatch error.
func IsShapeMismatch(err error) bool { return kindOf(err) == KindShapeMismatch }

// IsInvalidKeySpec reports whether err is an invalid-key-spec error.
func IsInvalidKeySpec(err error) bool { return kindOf(err) == KindInvalidKeySpec }
