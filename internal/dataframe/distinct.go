package dataframe

import (
	"github.com/cespare/xxhash/v2"

	"github.com/groupframe/groupframe/internal/common"
	"github.com/groupframe/groupframe/internal/validation"
)

// Distinct keeps the first row of each combination of values in the given
// columns, preserving row order. With no columns every column
// distinguishes. keepAll retains all columns in the result; otherwise only
// the distinguishing columns survive.
func (df *DataFrame) Distinct(cols []string, keepAll bool) (*DataFrame, error) {
	if len(cols) == 0 {
		cols = df.Columns()
	} else {
		if err := validation.NewColumnValidator(df, "Distinct", cols...).Validate(); err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(cols))
		dedup := cols[:0:0]
		for _, name := range cols {
			if !seen[name] {
				seen[name] = true
				dedup = append(dedup, name)
			}
		}
		cols = dedup
	}

	rows := distinctRows(df, cols)
	out := df.Take(rows)
	if !keepAll {
		out = out.Select(cols...)
	}
	return out, nil
}

// Distinct on a grouped table always distinguishes by the grouping columns
// as well: the explicit columns are unioned with the group variables, group
// variables first. The result keeps the table's grouping.
func (g *GroupedDataFrame) Distinct(cols []string, keepAll bool) (Table, error) {
	union := append([]string(nil), g.cols...)
	in := make(map[string]bool, len(union))
	for _, name := range union {
		in[name] = true
	}
	if len(cols) == 0 {
		for _, name := range g.df.Columns() {
			if !in[name] {
				union = append(union, name)
			}
		}
	} else {
		if err := validation.NewColumnValidator(g.df, "Distinct", cols...).Validate(); err != nil {
			return nil, err
		}
		for _, name := range cols {
			if !in[name] {
				in[name] = true
				union = append(union, name)
			}
		}
	}

	out, err := g.df.Distinct(union, keepAll)
	if err != nil {
		return nil, err
	}
	return out.Regroup(g.cols), nil
}

// distinctRows returns the first row index of each distinct key tuple, in
// ascending order.
func distinctRows(df *DataFrame, cols []string) []int {
	reader := newTupleReader(df, cols)
	defer reader.release()

	type entry struct {
		encoded string
	}
	buckets := make(map[uint64][]entry)
	var rows []int
	for i := 0; i < df.Len(); i++ {
		encoded := common.EncodeTuple(reader.tuple(i))
		h := xxhash.Sum64String(encoded)
		dup := false
		for _, e := range buckets[h] {
			if e.encoded == encoded {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		buckets[h] = append(buckets[h], entry{encoded: encoded})
		rows = append(rows, i)
	}
	return rows
}
