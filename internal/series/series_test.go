package series

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStringSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("region", []string{"east", "west", "east"}, mem)
	defer s.Release()

	assert.Equal(t, "region", s.Name())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "west", s.Value(1))
	assert.Equal(t, []string{"east", "west", "east"}, s.Values())
	assert.Equal(t, "utf8", s.DataType().Name())
}

func TestNewNumericSeries(t *testing.T) {
	mem := memory.NewGoAllocator()

	ints := New("n", []int64{1, 2, 3}, mem)
	defer ints.Release()
	floats := New("x", []float64{1.5, 2.5}, mem)
	defer floats.Release()
	bools := New("flag", []bool{true, false}, mem)
	defer bools.Release()

	assert.Equal(t, int64(3), ints.Value(2))
	assert.Equal(t, 2.5, floats.Value(1))
	assert.True(t, bools.Value(0))
	assert.Equal(t, "int64", ints.DataType().Name())
	assert.Equal(t, "float64", floats.DataType().Name())
	assert.Equal(t, "bool", bools.DataType().Name())
}

func TestNewWithValidity(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := NewWithValidity("v", []int64{10, 0, 30}, []bool{true, false, true}, mem)
	defer s.Release()

	require.Equal(t, 3, s.Len())
	assert.False(t, s.IsNull(0))
	assert.True(t, s.IsNull(1))
	assert.False(t, s.IsNull(2))
	assert.Equal(t, int64(10), s.Value(0))
	// Missing cells read as the zero value.
	assert.Equal(t, int64(0), s.Value(1))
}

func TestValueOutOfRange(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("n", []int64{1}, mem)
	defer s.Release()

	assert.Equal(t, int64(0), s.Value(-1))
	assert.Equal(t, int64(0), s.Value(5))
}

func TestArrayRetains(t *testing.T) {
	mem := memory.NewGoAllocator()

	s := New("n", []int64{1, 2}, mem)
	defer s.Release()

	arr := s.Array()
	require.NotNil(t, arr)
	assert.Equal(t, 2, arr.Len())
	arr.Release()

	// Series remains usable after the retained reference is released.
	assert.Equal(t, int64(2), s.Value(1))
}

func TestUnsupportedTypePanics(t *testing.T) {
	mem := memory.NewGoAllocator()

	assert.Panics(t, func() {
		New("bad", []int32{1}, mem)
	})
}
