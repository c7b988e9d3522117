package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/series"
)

func groupedSales(t *testing.T, mem memory.Allocator, keys ...any) *GroupedDataFrame {
	t.Helper()
	df := salesFrame(mem)
	out, err := df.GroupBy(keys...)
	require.NoError(t, err)
	g, ok := out.(*GroupedDataFrame)
	require.True(t, ok)
	return g
}

func TestGroupByEmptyKeysReturnsPlain(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out, err := df.GroupBy()
	require.NoError(t, err)
	assert.Same(t, df, out)
}

func TestGroupByLazyResolution(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	// Reading the grouping variables does not build the index.
	assert.Equal(t, []string{"city"}, g.GroupVars())
	assert.Nil(t, g.idx)

	// Any per-group read forces a single build, reused afterwards.
	assert.Equal(t, 3, g.NGroups())
	require.NotNil(t, g.idx)
	first := g.idx
	assert.Equal(t, []int{2, 3, 1}, g.GroupSize())
	assert.Same(t, first, g.idx)
}

func TestGroupedIntrospection(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city", "product")

	assert.Equal(t, 5, g.NGroups())
	assert.Equal(t, 6, g.Len())
	assert.Equal(t, 4, g.Width())
	assert.Equal(t, []string{"city", "product"}, g.GroupVars())
	assert.Equal(t, []string{
		"osaka|a", "osaka|b", "tokyo|a", "tokyo|b", "NA|a",
	}, g.Labels())

	keys := g.GroupKeys()
	assert.Equal(t, []string{"city", "product"}, keys.Columns())
	assert.Equal(t, 5, keys.Len())
}

func TestGroupedUngroup(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")
	df := g.Ungroup()
	assert.Nil(t, df.GroupVars())
	assert.Equal(t, 6, df.Len())
}

func TestGroupedSelectKeepsGroupVars(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	out, err := g.Select("amount")
	require.NoError(t, err)
	// The grouping column is re-injected ahead of the selection.
	assert.Equal(t, []string{"city", "amount"}, out.Columns())
	assert.Equal(t, []string{"city"}, out.GroupVars())

	out, err = g.Select("city", "amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "amount"}, out.Columns())

	_, err = g.Select("nope")
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestGroupedSubsetDegradesGrouping(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	// Keys survive: still grouped.
	out := g.Subset([]int{0, 1, 3}, []string{"city", "amount"})
	assert.Equal(t, []string{"city"}, out.GroupVars())
	assert.Equal(t, 3, out.Len())

	// Key column dropped: silently a plain table, no error.
	out = g.Subset([]int{0, 1, 3}, []string{"amount"})
	assert.Nil(t, out.GroupVars())
	_, isPlain := out.(*DataFrame)
	assert.True(t, isPlain)

	// nil columns keeps everything.
	out = g.Subset([]int{5}, nil)
	assert.Equal(t, []string{"city"}, out.GroupVars())
	assert.Equal(t, 1, out.Len())
}

func TestGroupedRenameTracksGroupVars(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city", "product")

	out, err := g.Rename(map[string]string{"city": "town", "amount": "qty"})
	require.NoError(t, err)
	assert.Equal(t, []string{"town", "product"}, out.GroupVars())
	assert.Equal(t, []string{"town", "product", "qty", "price"}, out.Columns())
	assert.Equal(t, 5, out.NGroups())

	_, err = g.Rename(map[string]string{"city": "product"})
	assert.True(t, errors.IsNameConflict(err))
}

func TestGroupedConcat(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := groupedSales(t, mem, "city")
	b := groupedSales(t, mem, "city")

	out, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, 12, out.Len())
	assert.Equal(t, []string{"city"}, out.GroupVars())
	assert.Equal(t, 3, out.NGroups())
}

func TestGroupedBindCols(t *testing.T) {
	mem := memory.NewGoAllocator()
	g := groupedSales(t, mem, "city")

	extra := New(series.New("flag", []bool{true, false, true, false, true, false}, mem))
	out, err := g.BindCols(extra)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "product", "amount", "price", "flag"}, out.Columns())
	assert.Equal(t, []string{"city"}, out.GroupVars())

	short := New(series.New("flag", []bool{true}, mem))
	_, err = g.BindCols(short)
	assert.True(t, errors.IsShapeMismatch(err))
}

func TestRegroupDegradesWhenKeyGone(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out := df.Select("amount").Regroup([]string{"city"})
	_, isPlain := out.(*DataFrame)
	assert.True(t, isPlain)
}
