package dataframe

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/series"
)

// salesFrame builds the frame most tests share: six rows of city/product
// sales with one missing city.
func salesFrame(mem memory.Allocator) *DataFrame {
	return New(
		series.NewWithValidity("city",
			[]string{"osaka", "tokyo", "", "tokyo", "osaka", "tokyo"},
			[]bool{true, true, false, true, true, true}, mem),
		series.New("product", []string{"a", "b", "a", "a", "b", "b"}, mem),
		series.New("amount", []int64{10, 20, 30, 40, 50, 60}, mem),
		series.New("price", []float64{1.5, 2.0, 2.5, 3.0, 3.5, 4.0}, mem),
	)
}

func TestDataFrameBasics(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	assert.Equal(t, 6, df.Len())
	assert.Equal(t, 4, df.Width())
	assert.Equal(t, []string{"city", "product", "amount", "price"}, df.Columns())
	assert.True(t, df.HasColumn("amount"))
	assert.False(t, df.HasColumn("amounts"))
	assert.Nil(t, df.GroupVars())
	assert.Same(t, df, df.Ungroup())

	s, ok := df.Column("city")
	require.True(t, ok)
	assert.Equal(t, "city", s.Name())
	assert.True(t, s.IsNull(2))
}

func TestNewDuplicateColumnName(t *testing.T) {
	mem := memory.NewGoAllocator()
	first := series.New("v", []int64{1, 2}, mem)
	second := series.New("v", []int64{3, 4}, mem)

	// The unchecked constructor keeps the name list and the column map in
	// agreement: the later column wins and the name appears once.
	df := New(first, second)
	assert.Equal(t, []string{"v"}, df.Columns())
	assert.Equal(t, 1, df.Width())
	s, ok := df.Column("v")
	require.True(t, ok)
	assert.Same(t, second, s)

	// The checked constructor rejects the duplicate outright.
	_, err := NewChecked(first, second)
	require.Error(t, err)
	assert.True(t, errors.IsNameConflict(err))

	ok2, err := NewChecked(first, series.New("w", []int64{3, 4}, mem))
	require.NoError(t, err)
	assert.Equal(t, []string{"v", "w"}, ok2.Columns())
}

func TestDataFrameSelect(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out := df.Select("amount", "city")
	assert.Equal(t, []string{"amount", "city"}, out.Columns())
	assert.Equal(t, 6, out.Len())

	// Unknown names are silently dropped.
	out = df.Select("amount", "nope")
	assert.Equal(t, []string{"amount"}, out.Columns())

	_, err := df.SelectStrict("amount", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestDataFrameDrop(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out := df.Drop("price", "missing")
	assert.Equal(t, []string{"city", "product", "amount"}, out.Columns())
}

func TestDataFrameRename(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out, err := df.Rename(map[string]string{"amount": "qty", "city": "town"})
	require.NoError(t, err)
	assert.Equal(t, []string{"town", "product", "qty", "price"}, out.Columns())

	// Source column checked eagerly.
	_, err = df.Rename(map[string]string{"nope": "x"})
	assert.True(t, errors.IsUnknownColumn(err))

	// Destination collides with an untouched column.
	_, err = df.Rename(map[string]string{"amount": "price"})
	assert.True(t, errors.IsNameConflict(err))

	// Two sources mapped onto the same destination.
	_, err = df.Rename(map[string]string{"amount": "x", "price": "x"})
	assert.True(t, errors.IsNameConflict(err))

	// A swap is legal: both sides are renamed in the same pass.
	out, err = df.Rename(map[string]string{"amount": "price", "price": "amount"})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "product", "price", "amount"}, out.Columns())
}

func TestDataFrameTake(t *testing.T) {
	mem := memory.NewGoAllocator()
	df := salesFrame(mem)
	defer df.Release()

	out := df.Take([]int{4, 0, 4})
	assert.Equal(t, 3, out.Len())
	s, _ := out.Column("amount")
	assert.Equal(t, int64(50), cellAt(s.Array(), 0))
	assert.Equal(t, int64(10), cellAt(s.Array(), 1))
	assert.Equal(t, int64(50), cellAt(s.Array(), 2))

	// Out-of-range positions are dropped, duplicates kept.
	out = df.Take([]int{-1, 2, 99})
	assert.Equal(t, 1, out.Len())
	s, _ = out.Column("city")
	assert.Nil(t, cellAt(s.Array(), 0))

	assert.Equal(t, 0, df.Take(nil).Len())
}

func TestDataFrameConcat(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := New(
		series.New("k", []string{"x"}, mem),
		series.New("v", []int64{1}, mem),
	)
	b := New(
		series.New("k", []string{"y"}, mem),
		series.New("v", []int64{2}, mem),
	)
	out, err := a.Concat(b)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	s, _ := out.Column("k")
	assert.Equal(t, "y", cellAt(s.Array(), 1))

	c := New(series.New("k", []string{"z"}, mem))
	_, err = a.Concat(c)
	assert.True(t, errors.IsShapeMismatch(err))
}

func TestDataFrameBindCols(t *testing.T) {
	mem := memory.NewGoAllocator()
	a := New(series.New("k", []string{"x", "y"}, mem))
	b := New(series.New("v", []int64{1, 2}, mem))

	out, err := a.BindCols(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v"}, out.Columns())

	short := New(series.New("v2", []int64{1}, mem))
	_, err = a.BindCols(short)
	assert.True(t, errors.IsShapeMismatch(err))

	dup := New(series.New("k", []int64{1, 2}, mem))
	_, err = a.BindCols(dup)
	assert.True(t, errors.IsNameConflict(err))
}
