package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/errors"
)

type fakeTable struct {
	cols []string
}

func (f *fakeTable) HasColumn(name string) bool {
	for _, c := range f.cols {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeTable) Columns() []string { return f.cols }

func TestColumnValidator(t *testing.T) {
	table := &fakeTable{cols: []string{"a", "b"}}

	require.NoError(t, NewColumnValidator(table, "Select", "a", "b").Validate())

	err := NewColumnValidator(table, "Select", "a", "c").Validate()
	require.Error(t, err)
	assert.True(t, errors.IsUnknownColumn(err))
	assert.Contains(t, err.Error(), "c")
}

func TestHeaderValidator(t *testing.T) {
	require.NoError(t, NewHeaderValidator("ReadCSV", []string{"a", "b"}).Validate())

	err := NewHeaderValidator("ReadCSV", []string{"a", ""}).Validate()
	assert.True(t, errors.IsNameConflict(err))

	err = NewHeaderValidator("ReadCSV", []string{"a", "b", "a"}).Validate()
	assert.True(t, errors.IsNameConflict(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLengthValidator(t *testing.T) {
	require.NoError(t, NewLengthValidator(3, 3, "BindCols", "rows").Validate())

	err := NewLengthValidator(3, 2, "BindCols", "rows").Validate()
	assert.True(t, errors.IsShapeMismatch(err))
}

func TestValidateAll(t *testing.T) {
	table := &fakeTable{cols: []string{"a"}}

	require.NoError(t, ValidateAll(
		NewColumnValidator(table, "op", "a"),
		NewLengthValidator(1, 1, "op", "rows"),
	))

	err := ValidateAll(
		NewColumnValidator(table, "op", "a"),
		NewColumnValidator(table, "op", "z"),
	)
	assert.True(t, errors.IsUnknownColumn(err))
}
