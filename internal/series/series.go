// Package series provides Arrow-backed typed columns. Supported element
// types are string, int64, float64, and bool; missing cells are tracked
// through the Arrow validity bitmap.
package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series represents a typed data column with an Apache Arrow backend.
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a Series from a slice of values with no missing cells.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	return NewWithValidity(name, values, nil, mem)
}

// NewWithValidity creates a Series from values plus a validity mask.
// valid[i] == false marks cell i as missing; a nil mask means all valid.
func NewWithValidity[T any](name string, values []T, valid []bool, mem memory.Allocator) *Series[T] {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	ok := func(i int) bool { return valid == nil || valid[i] }

	var arr arrow.Array
	switch v := any(values).(type) {
	case []string:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		for i, val := range v {
			if ok(i) {
				b.Append(val)
			} else {
				b.AppendNull()
			}
		}
		arr = b.NewArray()
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		for i, val := range v {
			if ok(i) {
				b.Append(val)
			} else {
				b.AppendNull()
			}
		}
		arr = b.NewArray()
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		for i, val := range v {
			if ok(i) {
				b.Append(val)
			} else {
				b.AppendNull()
			}
		}
		arr = b.NewArray()
	case []bool:
		b := array.NewBooleanBuilder(mem)
		defer b.Release()
		for i, val := range v {
			if ok(i) {
				b.Append(val)
			} else {
				b.AppendNull()
			}
		}
		arr = b.NewArray()
	default:
		panic(fmt.Sprintf("series: unsupported element type %T", values))
	}

	return &Series[T]{name: name, array: arr}
}

// Name returns the column name.
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the number of cells.
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Value returns the value at index. Missing cells yield the zero value;
// use IsNull to distinguish.
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() || s.array.IsNull(index) {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if p, ok := any(&result).(*string); ok {
			*p = arr.Value(index)
		}
	case *array.Int64:
		if p, ok := any(&result).(*int64); ok {
			*p = arr.Value(index)
		}
	case *array.Float64:
		if p, ok := any(&result).(*float64); ok {
			*p = arr.Value(index)
		}
	case *array.Boolean:
		if p, ok := any(&result).(*bool); ok {
			*p = arr.Value(index)
		}
	}
	return result
}

// Values returns the data as a Go slice, zero values at missing cells.
func (s *Series[T]) Values() []T {
	result := make([]T, s.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// IsNull reports whether the cell at index is missing.
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// DataType returns the Arrow data type.
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// Array returns the underlying Arrow array (retains a reference).
func (s *Series[T]) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// String returns a short description of the series.
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.array.DataType().Name(), s.name, s.Len())
}

// Release releases the underlying Arrow memory.
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
