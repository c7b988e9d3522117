package dataframe

import (
	"github.com/groupframe/groupframe/internal/common"
	"github.com/groupframe/groupframe/internal/errors"
)

// GroupedDataFrame is a table augmented with a grouping over one or more
// key columns. The group index is lazy: the key names are recorded at
// construction and the row partition is computed on first use, then cached.
// Every verb returns a new value; a GroupedDataFrame is never mutated once
// published.
type GroupedDataFrame struct {
	df   *DataFrame
	cols []string
	idx  *GroupIndex // nil until resolved
}

// GroupBy partitions the table by the given key specifications (names,
// name slices, or column expressions). An empty key set strips grouping:
// the plain table itself is returned.
func (df *DataFrame) GroupBy(specs ...any) (Table, error) {
	cols, err := ResolveGroupKeys(df, specs...)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return df, nil
	}
	return &GroupedDataFrame{df: df, cols: cols}, nil
}

// Regroup groups the table on already-resolved key names, degrading to the
// plain table when any key column is gone. Used by verbs that re-establish
// grouping after a structural change.
func (df *DataFrame) Regroup(cols []string) Table {
	for _, name := range cols {
		if !df.HasColumn(name) {
			return df
		}
	}
	if len(cols) == 0 {
		return df
	}
	return &GroupedDataFrame{df: df, cols: append([]string(nil), cols...)}
}

// resolve materializes the group index on first use. The transition is
// one-directional: once built, the index is reused for every later read.
func (g *GroupedDataFrame) resolve() *GroupIndex {
	if g.idx == nil {
		g.idx = buildGroupIndex(g.df, g.cols)
	}
	return g.idx
}

// GroupVars returns the grouping column names without forcing an index build.
func (g *GroupedDataFrame) GroupVars() []string {
	return append([]string(nil), g.cols...)
}

// NGroups returns the number of groups, forcing resolution.
func (g *GroupedDataFrame) NGroups() int {
	return g.resolve().GroupCount()
}

// GroupSize returns per-group row counts in group order, forcing resolution.
func (g *GroupedDataFrame) GroupSize() []int {
	return g.resolve().GroupSizes()
}

// GroupRows returns the row-position partition in group order.
func (g *GroupedDataFrame) GroupRows() [][]int {
	return g.resolve().GroupRows()
}

// GroupKeys returns the distinct key tuples as a table, one row per group.
func (g *GroupedDataFrame) GroupKeys() *DataFrame {
	return g.resolve().GroupKeysTable()
}

// Labels returns the formatted group labels in group order.
func (g *GroupedDataFrame) Labels() []string {
	sep := labelSeparator()
	keys := g.resolve().Keys()
	labels := make([]string, len(keys))
	for i, key := range keys {
		labels[i] = common.FormatTuple(key, sep)
	}
	return labels
}

// Ungroup returns the underlying table; grouping metadata is discarded.
func (g *GroupedDataFrame) Ungroup() *DataFrame {
	return g.df
}

// Columns returns the column names of the underlying table.
func (g *GroupedDataFrame) Columns() []string { return g.df.Columns() }

// Len returns the row count of the underlying table.
func (g *GroupedDataFrame) Len() int { return g.df.Len() }

// Width returns the column count of the underlying table.
func (g *GroupedDataFrame) Width() int { return g.df.Width() }

// Column returns a column of the underlying table.
func (g *GroupedDataFrame) Column(name string) (ISeries, bool) { return g.df.Column(name) }

// HasColumn reports whether the underlying table has the column.
func (g *GroupedDataFrame) HasColumn(name string) bool { return g.df.HasColumn(name) }

// String describes the grouped table without forcing resolution.
func (g *GroupedDataFrame) String() string {
	return "Grouped" + g.df.String() + "\ngroups: " + common.JoinNames(g.cols)
}

// Subset returns the rows at the given positions restricted to the given
// columns (nil keeps all columns). When every grouping column survives, the
// result is re-grouped on the same keys; otherwise grouping degrades
// silently to a plain table. Subsetting never errors over grouping.
func (g *GroupedDataFrame) Subset(rows []int, cols []string) Table {
	out := g.df.Take(rows)
	if cols != nil {
		out = out.Select(cols...)
	}
	return out.Regroup(g.cols)
}

// Select returns a new grouped table with the named columns. Grouping
// columns missing from the selection are prepended rather than dropped,
// with an informational notice naming them; dropping group columns is only
// possible through explicit subsetting.
func (g *GroupedDataFrame) Select(cols ...string) (*GroupedDataFrame, error) {
	for _, name := range cols {
		if !g.df.HasColumn(name) {
			return nil, errors.NewUnknownColumnError("Select", name)
		}
	}

	selected := make(map[string]bool, len(cols))
	for _, name := range cols {
		selected[name] = true
	}
	var missing []string
	for _, key := range g.cols {
		if !selected[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		pkgLogger.Info("adding missing grouping variables",
			"columns", common.JoinNames(missing))
		cols = append(append([]string(nil), missing...), cols...)
	}

	return &GroupedDataFrame{df: g.df.Select(cols...), cols: g.GroupVars()}, nil
}

// Rename returns a new grouped table with columns renamed per the
// old-to-new mapping. Renamed grouping columns track their new names.
func (g *GroupedDataFrame) Rename(mapping map[string]string) (*GroupedDataFrame, error) {
	renamed, err := g.df.Rename(mapping)
	if err != nil {
		return nil, err
	}

	cols := make([]string, len(g.cols))
	for i, key := range g.cols {
		if dst, ok := mapping[key]; ok {
			cols[i] = dst
		} else {
			cols[i] = key
		}
	}
	return &GroupedDataFrame{df: renamed, cols: cols}, nil
}

// Concat row-binds grouped tables with compatible schemas and re-groups the
// result on this table's keys.
func (g *GroupedDataFrame) Concat(others ...*GroupedDataFrame) (*GroupedDataFrame, error) {
	bases := make([]*DataFrame, len(others))
	for i, other := range others {
		bases[i] = other.df
	}
	combined, err := g.df.Concat(bases...)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{df: combined, cols: g.GroupVars()}, nil
}

// BindCols column-binds a plain table to the grouped table and re-groups.
func (g *GroupedDataFrame) BindCols(other *DataFrame) (*GroupedDataFrame, error) {
	combined, err := g.df.BindCols(other)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{df: combined, cols: g.GroupVars()}, nil
}
