// Package validation provides reusable input validators for table
// operations: column existence, header well-formedness, and length
// consistency. Validators fail with the typed errors the rest of the
// engine reports, before any row is touched.
package validation

import (
	"fmt"

	"github.com/groupframe/groupframe/internal/errors"
)

// Validator validates one precondition.
type Validator interface {
	Validate() error
}

// ColumnProvider is the slice of a table the column validator needs.
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
}

// ColumnValidator checks that named columns exist on a table.
type ColumnValidator struct {
	table   ColumnProvider
	op      string
	columns []string
}

// NewColumnValidator creates a validator for the named columns.
func NewColumnValidator(table ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{table: table, op: op, columns: columns}
}

// Validate reports the first absent column as an unknown-column error.
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.table.HasColumn(column) {
			return errors.NewUnknownColumnError(v.op, column)
		}
	}
	return nil
}

// HeaderValidator checks that a header row is usable as column names:
// no empty names, no duplicates.
type HeaderValidator struct {
	op    string
	names []string
}

// NewHeaderValidator creates a validator for a header row.
func NewHeaderValidator(op string, names []string) *HeaderValidator {
	return &HeaderValidator{op: op, names: names}
}

// Validate reports empty or duplicate names as name conflicts.
func (v *HeaderValidator) Validate() error {
	seen := make(map[string]bool, len(v.names))
	for i, name := range v.names {
		if name == "" {
			return errors.NewNameConflictError(v.op, name,
				fmt.Sprintf("column %d has an empty name", i))
		}
		if seen[name] {
			return errors.NewNameConflictError(v.op, name, "duplicate column name")
		}
		seen[name] = true
	}
	return nil
}

// LengthValidator checks that two lengths agree.
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency.
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{expected: expected, actual: actual, op: op, context: context}
}

// Validate reports a mismatch as a shape error.
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		return errors.NewShapeMismatchError(v.op,
			fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual))
	}
	return nil
}

// ValidateAll runs validators in order and returns the first failure.
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
