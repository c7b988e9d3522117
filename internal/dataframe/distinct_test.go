package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/series"
)

func TestDistinctPlain(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	// First occurrence wins, input order preserved.
	out, err := df.Distinct([]string{"product"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"product"}, out.Columns())
	require.Equal(t, 2, out.Len())
	s, _ := out.Column("product")
	arr := s.Array()
	defer arr.Release()
	assert.Equal(t, "a", cellAt(arr, 0))
	assert.Equal(t, "b", cellAt(arr, 1))
}

func TestDistinctSeparatorInStringCell(t *testing.T) {
	mem := memory.NewGoAllocator()
	// Two different tuples whose naive concatenation would collide on
	// the key-encoding separator must both survive.
	df := New(
		series.New("a", []string{"x\x1fs:y", "x"}, mem),
		series.New("b", []string{"z", "y\x1fs:z"}, mem),
	)
	defer df.Release()

	out, err := df.Distinct([]string{"a", "b"}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestDistinctKeepAll(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out, err := df.Distinct([]string{"city"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "product", "amount", "price"}, out.Columns())
	// osaka (row 0), tokyo (row 1), missing (row 2).
	require.Equal(t, 3, out.Len())
	assert.Equal(t, int64(60), sumColumn(t, out, "amount"))
}

func TestDistinctAllColumns(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	// No explicit columns: every column distinguishes; all rows unique here.
	out, err := df.Distinct(nil, false)
	require.NoError(t, err)
	assert.Equal(t, 6, out.Len())
	assert.Equal(t, df.Columns(), out.Columns())
}

func TestDistinctMissingIsAValue(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out, err := df.Distinct([]string{"city"}, false)
	require.NoError(t, err)
	require.Equal(t, 3, out.Len())
	s, _ := out.Column("city")
	assert.True(t, s.IsNull(2))
}

func TestDistinctUnknownColumn(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	_, err := df.Distinct([]string{"nope"}, false)
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestDistinctGroupedUnionsGroupVars(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	// Group variables always distinguish, ahead of the explicit columns.
	out, err := g.Distinct([]string{"product"}, false)
	require.NoError(t, err)
	gout, ok := out.(*GroupedDataFrame)
	require.True(t, ok)
	assert.Equal(t, []string{"city", "product"}, gout.Columns())
	assert.Equal(t, []string{"city"}, gout.GroupVars())
	// Five distinct city/product pairs exist.
	assert.Equal(t, 5, gout.Len())

	// Naming a group variable explicitly does not duplicate it.
	out, err = g.Distinct([]string{"city", "product"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "product"}, out.(*GroupedDataFrame).Columns())

	_, err = g.Distinct([]string{"nope"}, false)
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestDistinctGroupedNoColumns(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	out, err := g.Distinct(nil, false)
	require.NoError(t, err)
	gout := out.(*GroupedDataFrame)
	// All columns distinguish, group variables leading.
	assert.Equal(t, []string{"city", "product", "amount", "price"}, gout.Columns())
	assert.Equal(t, 6, gout.Len())
	assert.Equal(t, []string{"city"}, gout.GroupVars())
}
