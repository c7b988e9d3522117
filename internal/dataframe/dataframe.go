// Package dataframe provides the grouped-table engine: a columnar table
// plus grouping metadata, per-group evaluation, and structure-preserving
// relational verbs.
package dataframe

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/validation"
)

// Table is the verb surface shared by plain and grouped tables. A plain
// DataFrame reports no group variables; a GroupedDataFrame reports its keys.
type Table interface {
	Columns() []string
	Len() int
	Width() int
	Column(name string) (ISeries, bool)
	HasColumn(name string) bool
	GroupVars() []string
	Ungroup() *DataFrame
}

var pkgLogger = slog.Default()

// SetLogger replaces the package logger used for notices.
func SetLogger(l *slog.Logger) {
	if l != nil {
		pkgLogger = l
	}
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return pkgLogger
}

// DataFrame represents a table of data with typed columns.
type DataFrame struct {
	columns map[string]ISeries
	order   []string
}

// New creates a DataFrame from a set of columns. Callers deriving a frame
// from an existing one pass unique names; if a name repeats, the later
// column replaces the earlier one so the name list and the column map
// never disagree. Use NewChecked to reject duplicates instead.
func New(cols ...ISeries) *DataFrame {
	columns := make(map[string]ISeries, len(cols))
	order := make([]string, 0, len(cols))
	for _, s := range cols {
		name := s.Name()
		if _, seen := columns[name]; !seen {
			order = append(order, name)
		}
		columns[name] = s
	}
	return &DataFrame{columns: columns, order: order}
}

// NewChecked creates a DataFrame from a set of columns, rejecting empty
// or duplicate column names with a NameConflict error. This is the
// constructor for caller-supplied columns.
func NewChecked(cols ...ISeries) (*DataFrame, error) {
	names := make([]string, len(cols))
	for i, s := range cols {
		names[i] = s.Name()
	}
	if err := validation.NewHeaderValidator("New", names).Validate(); err != nil {
		return nil, err
	}
	return New(cols...), nil
}

// Columns returns the column names in order.
func (df *DataFrame) Columns() []string {
	return append([]string(nil), df.order...)
}

// Len returns the row count.
func (df *DataFrame) Len() int {
	if len(df.order) == 0 {
		return 0
	}
	if s, ok := df.columns[df.order[0]]; ok {
		return s.Len()
	}
	return 0
}

// Width returns the column count.
func (df *DataFrame) Width() int {
	return len(df.order)
}

// Column returns the column with the given name.
func (df *DataFrame) Column(name string) (ISeries, bool) {
	s, ok := df.columns[name]
	return s, ok
}

// HasColumn reports whether a column exists.
func (df *DataFrame) HasColumn(name string) bool {
	_, ok := df.columns[name]
	return ok
}

// GroupVars returns nil: a plain DataFrame carries no grouping.
func (df *DataFrame) GroupVars() []string {
	return nil
}

// Ungroup returns the table itself; there is no grouping to discard.
func (df *DataFrame) Ungroup() *DataFrame {
	return df
}

// String returns a short description of the table.
func (df *DataFrame) String() string {
	if len(df.order) == 0 {
		return "DataFrame[empty]"
	}
	parts := []string{fmt.Sprintf("DataFrame[%dx%d]", df.Len(), df.Width())}
	for _, name := range df.order {
		parts = append(parts, fmt.Sprintf("  %s: %s", name, df.columns[name].DataType().Name()))
	}
	return strings.Join(parts, "\n")
}

// Select returns a new DataFrame with only the named columns, in the given
// order. Unknown names are dropped silently; SelectStrict validates.
func (df *DataFrame) Select(names ...string) *DataFrame {
	var kept []ISeries
	for _, name := range names {
		if s, ok := df.columns[name]; ok {
			kept = append(kept, s)
		}
	}
	return New(kept...)
}

// SelectStrict is Select with eager validation: naming an absent column
// aborts before any column is touched.
func (df *DataFrame) SelectStrict(names ...string) (*DataFrame, error) {
	for _, name := range names {
		if !df.HasColumn(name) {
			return nil, errors.NewUnknownColumnError("Select", name)
		}
	}
	return df.Select(names...), nil
}

// Drop returns a new DataFrame without the named columns.
func (df *DataFrame) Drop(names ...string) *DataFrame {
	dropSet := make(map[string]bool, len(names))
	for _, name := range names {
		dropSet[name] = true
	}
	var kept []ISeries
	for _, name := range df.order {
		if !dropSet[name] {
			kept = append(kept, df.columns[name])
		}
	}
	return New(kept...)
}

// Rename returns a new DataFrame with columns renamed per the old-to-new
// mapping. Every source must exist and no two entries may collide on a
// destination, with each other or with an untouched column.
func (df *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	for old := range mapping {
		if !df.HasColumn(old) {
			return nil, errors.NewUnknownColumnError("Rename", old)
		}
	}

	renamed := make(map[string]bool, len(mapping))
	for _, dst := range mapping {
		if renamed[dst] {
			return nil, errors.NewNameConflictError("Rename", dst,
				"two sources map to the same destination")
		}
		renamed[dst] = true
	}
	for _, name := range df.order {
		if _, moving := mapping[name]; !moving && renamed[name] {
			return nil, errors.NewNameConflictError("Rename", name,
				"destination collides with an existing column")
		}
	}

	cols := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		s := df.columns[name]
		if dst, ok := mapping[name]; ok {
			s = renameSeries(s, dst)
		}
		cols = append(cols, s)
	}
	return New(cols...), nil
}

// Take returns a new DataFrame holding the rows at the given positions, in
// the given order. Out-of-range positions are dropped.
func (df *DataFrame) Take(rows []int) *DataFrame {
	n := df.Len()
	valid := make([]int, 0, len(rows))
	for _, r := range rows {
		if r >= 0 && r < n {
			valid = append(valid, r)
		}
	}

	mem := memory.NewGoAllocator()
	cols := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		cols = append(cols, takeSeries(df.columns[name], valid, mem))
	}
	return New(cols...)
}

// Concat row-binds this DataFrame with others. All inputs must share the
// same column names, order, and types.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	if len(others) == 0 {
		return df, nil
	}
	for _, other := range others {
		if err := df.checkSameSchema(other); err != nil {
			return nil, err
		}
	}

	mem := memory.NewGoAllocator()
	cols := make([]ISeries, 0, len(df.order))
	for _, name := range df.order {
		cells := collectCells(df.columns[name])
		for _, other := range others {
			cells = append(cells, collectCells(other.columns[name])...)
		}
		cols = append(cols, seriesFromCells(name, df.columns[name].DataType(), cells, mem))
	}
	return New(cols...), nil
}

// BindCols column-binds another DataFrame to this one. Row counts must
// match and column names must not collide.
func (df *DataFrame) BindCols(other *DataFrame) (*DataFrame, error) {
	if df.Len() != other.Len() {
		return nil, errors.NewShapeMismatchError("BindCols",
			fmt.Sprintf("row counts differ: %d vs %d", df.Len(), other.Len()))
	}
	for _, name := range other.order {
		if df.HasColumn(name) {
			return nil, errors.NewNameConflictError("BindCols", name,
				"column exists on both sides")
		}
	}

	cols := make([]ISeries, 0, len(df.order)+len(other.order))
	for _, name := range df.order {
		cols = append(cols, df.columns[name])
	}
	for _, name := range other.order {
		cols = append(cols, other.columns[name])
	}
	return New(cols...), nil
}

func (df *DataFrame) checkSameSchema(other *DataFrame) error {
	if len(df.order) != len(other.order) {
		return errors.NewShapeMismatchError("Concat",
			fmt.Sprintf("column counts differ: %d vs %d", len(df.order), len(other.order)))
	}
	for i, name := range df.order {
		if other.order[i] != name {
			return errors.NewShapeMismatchError("Concat",
				fmt.Sprintf("column %d is %q on one side and %q on the other", i, name, other.order[i]))
		}
		if df.columns[name].DataType().Name() != other.columns[name].DataType().Name() {
			return errors.NewShapeMismatchError("Concat",
				fmt.Sprintf("column %q types differ: %s vs %s", name,
					df.columns[name].DataType().Name(), other.columns[name].DataType().Name()))
		}
	}
	return nil
}

// collectCells reads a whole column as untyped cells.
func collectCells(s ISeries) []any {
	arr := s.Array()
	defer arr.Release()

	cells := make([]any, arr.Len())
	for i := range cells {
		cells[i] = cellAt(arr, i)
	}
	return cells
}

// Release releases all underlying Arrow memory.
func (df *DataFrame) Release() {
	for _, s := range df.columns {
		s.Release()
	}
}
