// Package testutil provides shared fixtures and assertions for tests across
// the groupframe packages: a standard grouped-data table, cell extraction,
// and column equality checks.
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/dataframe"
	"github.com/groupframe/groupframe/internal/series"
)

// SalesTable builds the standard test table: six rows of city/product sales
// with one missing city.
func SalesTable(tb testing.TB, mem memory.Allocator) *dataframe.DataFrame {
	tb.Helper()
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return dataframe.New(
		series.NewWithValidity("city",
			[]string{"osaka", "tokyo", "", "tokyo", "osaka", "tokyo"},
			[]bool{true, true, false, true, true, true}, mem),
		series.New("product", []string{"a", "b", "a", "a", "b", "b"}, mem),
		series.New("amount", []int64{10, 20, 30, 40, 50, 60}, mem),
		series.New("price", []float64{1.5, 2.0, 2.5, 3.0, 3.5, 4.0}, mem),
	)
}

// ColumnCells reads a whole column as untyped cells, nil for missing.
func ColumnCells(tb testing.TB, df *dataframe.DataFrame, name string) []any {
	tb.Helper()
	s, ok := df.Column(name)
	require.True(tb, ok, "column %s", name)
	arr := s.Array()
	defer arr.Release()
	cells := make([]any, s.Len())
	for i := range cells {
		cells[i] = dataframe.CellAt(arr, i)
	}
	return cells
}

// AssertColumnEquals checks one column's cells against expected values.
func AssertColumnEquals(tb testing.TB, df *dataframe.DataFrame, name string, want []any) {
	tb.Helper()
	assert.Equal(tb, want, ColumnCells(tb, df, name), "column %s", name)
}
