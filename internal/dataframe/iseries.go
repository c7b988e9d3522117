package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/groupframe/groupframe/internal/series"
)

// ISeries is the type-erased column interface the table layer works with.
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	String() string
	Array() arrow.Array
	Release()
}

// renamedSeries wraps a column under a different name. Renaming is pure
// name substitution; the backing array is shared.
type renamedSeries struct {
	ISeries
	name string
}

func (r *renamedSeries) Name() string { return r.name }

func renameSeries(s ISeries, name string) ISeries {
	if s.Name() == name {
		return s
	}
	if inner, ok := s.(*renamedSeries); ok {
		s = inner.ISeries
	}
	return &renamedSeries{ISeries: s, name: name}
}

// CellAt reads one cell as an untyped value. Missing cells read as nil.
func CellAt(arr arrow.Array, i int) any {
	return cellAt(arr, i)
}

func cellAt(arr arrow.Array, i int) any {
	if i < 0 || i >= arr.Len() || arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.String:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	default:
		return nil
	}
}

// seriesFromCells rebuilds a typed column from untyped cells. The type is
// dictated by dt, not inferred, so zero-row columns keep their type.
func seriesFromCells(name string, dt arrow.DataType, cells []any, mem memory.Allocator) ISeries {
	n := len(cells)
	valid := make([]bool, n)

	switch dt.Name() {
	case "int64":
		values := make([]int64, n)
		for i, c := range cells {
			if v, ok := c.(int64); ok {
				values[i] = v
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, mem)
	case "float64":
		values := make([]float64, n)
		for i, c := range cells {
			if v, ok := c.(float64); ok {
				values[i] = v
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, mem)
	case "bool":
		values := make([]bool, n)
		for i, c := range cells {
			if v, ok := c.(bool); ok {
				values[i] = v
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, mem)
	default:
		values := make([]string, n)
		for i, c := range cells {
			if v, ok := c.(string); ok {
				values[i] = v
				valid[i] = true
			}
		}
		return series.NewWithValidity(name, values, valid, mem)
	}
}

// takeSeries gathers the cells at the given row positions into a new column.
func takeSeries(s ISeries, rows []int, mem memory.Allocator) ISeries {
	arr := s.Array()
	defer arr.Release()

	cells := make([]any, len(rows))
	for j, r := range rows {
		cells[j] = cellAt(arr, r)
	}
	return seriesFromCells(s.Name(), s.DataType(), cells, mem)
}
