package groupframe

import (
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupframe/groupframe/internal/errors"
)

func salesTable(tb testing.TB, mem memory.Allocator) *DataFrame {
	tb.Helper()
	df, err := NewDataFrame(
		NewSeriesWithValidity("city",
			[]string{"osaka", "tokyo", "", "tokyo", "osaka", "tokyo"},
			[]bool{true, true, false, true, true, true}, mem),
		NewSeries("product", []string{"a", "b", "a", "a", "b", "b"}, mem),
		NewSeries("amount", []int64{10, 20, 30, 40, 50, 60}, mem),
	)
	require.NoError(tb, err)
	return df
}

func groupedByCity(t *testing.T) *GroupedDataFrame {
	t.Helper()
	out, err := salesTable(t, memory.NewGoAllocator()).GroupBy("city")
	require.NoError(t, err)
	g, ok := out.(*GroupedDataFrame)
	require.True(t, ok)
	return g
}

func TestNewDataFrameRejectsDuplicateName(t *testing.T) {
	mem := memory.NewGoAllocator()
	_, err := NewDataFrame(
		NewSeries("v", []int64{1}, mem),
		NewSeries("v", []int64{2}, mem),
	)
	require.Error(t, err)
	assert.True(t, errors.IsNameConflict(err))
}

func TestGroupByRoundTrip(t *testing.T) {
	df := salesTable(t, memory.NewGoAllocator())
	defer df.Release()

	out, err := df.GroupBy("city")
	require.NoError(t, err)
	g := out.(*GroupedDataFrame)

	assert.Equal(t, []string{"city"}, g.GroupVars())
	assert.Equal(t, 3, g.NGroups())
	assert.Equal(t, []int{2, 3, 1}, g.GroupSize())
	assert.Equal(t, []string{"osaka", "tokyo", "NA"}, g.Labels())

	back := g.Ungroup()
	assert.Nil(t, back.GroupVars())
	assert.Equal(t, 6, back.Len())
}

func TestGroupByEmptyKeys(t *testing.T) {
	df := salesTable(t, memory.NewGoAllocator())
	defer df.Release()

	out, err := df.GroupBy()
	require.NoError(t, err)
	_, isPlain := out.(*DataFrame)
	assert.True(t, isPlain)
}

func TestGroupByExpressionKey(t *testing.T) {
	df := salesTable(t, memory.NewGoAllocator())
	defer df.Release()

	out, err := df.GroupBy(Col("city"), []Expression{Col("product")})
	require.NoError(t, err)
	g := out.(*GroupedDataFrame)
	assert.Equal(t, []string{"city", "product"}, g.GroupVars())

	_, err = df.GroupBy(Col("amount").Add(Lit(int64(1))))
	assert.True(t, errors.IsInvalidKeySpec(err))

	_, err = df.GroupBy("nope")
	assert.True(t, errors.IsUnknownColumn(err))
}

func TestFacadeVerbs(t *testing.T) {
	g := groupedByCity(t)

	sel, err := g.Select("amount")
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "amount"}, sel.Columns())

	ren, err := g.Rename(map[string]string{"city": "town"})
	require.NoError(t, err)
	assert.Equal(t, []string{"town"}, ren.GroupVars())

	sub := g.Subset([]int{0, 1}, []string{"amount"})
	assert.Nil(t, sub.GroupVars())

	dis, err := g.Distinct([]string{"product"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, dis.GroupVars())
	assert.Equal(t, 5, dis.Len())
}

func TestFacadeDo(t *testing.T) {
	g := groupedByCity(t)

	res, err := g.Do(Compute(func(ctx *GroupContext) (any, error) {
		mem := memory.NewGoAllocator()
		slice := ctx.Slice()
		s, _ := slice.Column("amount")
		arr := s.Array()
		defer arr.Release()
		return NewDataFrame(NewSeries("n", []int64{int64(s.Len())}, mem))
	}))
	require.NoError(t, err)
	require.True(t, res.IsTable())

	out := res.Table()
	assert.Equal(t, []string{"city", "n"}, out.Columns())
	assert.Equal(t, 3, out.Len())
}

func TestFacadeDoNamed(t *testing.T) {
	g := groupedByCity(t)

	res, err := g.Do(
		NamedCompute("slice", func(ctx *GroupContext) (any, error) {
			return ctx.Slice(), nil
		}),
		NamedEvalExpr("doubled", Col("amount").Mul(Lit(int64(2)))),
	)
	require.NoError(t, err)
	assert.False(t, res.IsTable())

	slices, ok := res.List("slice")
	require.True(t, ok)
	require.Len(t, slices.Values, 3)
	// Table values surface as public DataFrames.
	first, ok := slices.Values[0].(*DataFrame)
	require.True(t, ok)
	assert.Equal(t, 2, first.Len())

	doubled, ok := res.List("doubled")
	require.True(t, ok)
	assert.Equal(t, []string{"osaka", "tokyo", "NA"}, doubled.Labels)
}

func TestFacadeCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")

	df := salesTable(t, memory.NewGoAllocator())
	defer df.Release()
	require.NoError(t, WriteCSVFile(path, df))

	back, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Equal(t, df.Columns(), back.Columns())
	assert.Equal(t, 6, back.Len())

	out, err := back.GroupBy("city")
	require.NoError(t, err)
	assert.Equal(t, 3, out.(*GroupedDataFrame).NGroups())
}

func TestExpressionString(t *testing.T) {
	e := Col("a").Add(Lit(int64(1))).Mul(Col("b"))
	assert.Equal(t, "((col(a) + lit(1)) * col(b))", e.String())
}
