// Package common provides shared helpers for cell values: ordering,
// group-key encoding, and label formatting. All functions are stateless.
package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// CompareOrdered compares two values of any ordered type.
func CompareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareValues compares two cell values of the same column type. A nil
// value represents a missing cell and sorts after every non-missing value,
// matching the row-comparison rules of the table layer. Booleans order
// false before true. NaN floats sort after every ordered float and before
// missing, so the order stays total even for NaN keys.
func CompareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return CompareOrdered(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return CompareOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareFloats(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0
			}
			if !av {
				return -1
			}
			return 1
		}
	}

	// Mixed-type cells only arise from caller bugs; fall back to the
	// formatted representation so the order stays total.
	return CompareOrdered(FormatValue(a), FormatValue(b))
}

// compareFloats orders floats with NaN ranked after every ordered value.
// NaN must compare equal to itself and consistently against everything
// else, otherwise sorting group keys is nondeterministic.
func compareFloats(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return CompareOrdered(a, b)
}

// CompareTuples compares two key tuples lexicographically, missing last.
func CompareTuples(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := CompareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return CompareOrdered(len(a), len(b))
}

// EncodeValue renders a cell value as a collision-free hash-key fragment.
// A one-byte type tag keeps values of different types from aliasing
// (e.g. the string "1" vs the integer 1). Variable-length fragments carry
// their byte length, so a string containing the tuple separator cannot
// forge a column boundary.
func EncodeValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "n:"
	case string:
		return "s" + strconv.Itoa(len(tv)) + ":" + tv
	case int64:
		return "i:" + strconv.FormatInt(tv, 10)
	case float64:
		return "f:" + strconv.FormatFloat(tv, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(tv)
	default:
		s := fmt.Sprintf("%v", tv)
		return "x" + strconv.Itoa(len(s)) + ":" + s
	}
}

// EncodeTuple encodes a key tuple for hashing. The unit separator keeps
// multi-column keys unambiguous.
func EncodeTuple(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = EncodeValue(v)
	}
	return strings.Join(parts, "\x1f")
}

// FormatValue renders a cell value for labels and notices. Missing cells
// render as "NA".
func FormatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "NA"
	case string:
		return tv
	case int64:
		return strconv.FormatInt(tv, 10)
	case float64:
		return strconv.FormatFloat(tv, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// FormatTuple renders a key tuple as a group label using the given separator.
func FormatTuple(tuple []any, sep string) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, sep)
}

// JoinNames renders a column-name list for notices, comma-separated.
func JoinNames(names []string) string {
	return strings.Join(names, ", ")
}
