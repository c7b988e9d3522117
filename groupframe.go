// Package groupframe provides a grouped-table engine over Arrow-backed
// columnar data: tables are partitioned by key columns into ordered groups,
// and structure-preserving verbs, per-group computations, and distinct
// reduction operate on the partition. This package is the sole public API.
package groupframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/groupframe/groupframe/internal/dataframe"
	"github.com/groupframe/groupframe/internal/expr"
	gio "github.com/groupframe/groupframe/internal/io"
	"github.com/groupframe/groupframe/internal/series"
)

// ISeries provides a type-erased interface for Series of any type.
type ISeries interface {
	Name() string
	Len() int
	DataType() arrow.DataType
	IsNull(index int) bool
	String() string
	Array() arrow.Array
	Release()
}

// Table is the capability shared by plain and grouped tables. GroupVars
// reports the grouping columns, nil for a plain table.
type Table interface {
	Columns() []string
	Len() int
	Width() int
	GroupVars() []string
}

// DataFrame is the public type for a plain table.
type DataFrame struct {
	df *dataframe.DataFrame
}

// GroupedDataFrame is the public type for a key-partitioned table.
type GroupedDataFrame struct {
	g *dataframe.GroupedDataFrame
}

// NewDataFrame creates a DataFrame from series. Column names must be
// non-empty and unique; a duplicate name yields a NameConflict error.
func NewDataFrame(cols ...ISeries) (*DataFrame, error) {
	internal := make([]dataframe.ISeries, len(cols))
	for i, s := range cols {
		internal[i] = s
	}
	df, err := dataframe.NewChecked(internal...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// NewSeries creates a typed Series from values.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewSeriesWithValidity creates a typed Series with an explicit validity
// mask; positions with valid[i] == false are missing.
func NewSeriesWithValidity[T any](name string, values []T, valid []bool, mem memory.Allocator) ISeries {
	return series.NewWithValidity(name, values, valid, mem)
}

// CellValue reads one cell of a column array as an untyped value. Missing
// cells read as nil.
func CellValue(arr arrow.Array, i int) any {
	return dataframe.CellAt(arr, i)
}

// ReadCSVFile reads a CSV file into a DataFrame with inferred column types.
func ReadCSVFile(path string) (*DataFrame, error) {
	df, err := gio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: df}, nil
}

// WriteCSVFile writes a DataFrame to a CSV file.
func WriteCSVFile(path string, d *DataFrame) error {
	return gio.WriteFile(path, d.df)
}

// DataFrame methods

// Columns returns the column names in order.
func (d *DataFrame) Columns() []string { return d.df.Columns() }

// Len returns the number of rows.
func (d *DataFrame) Len() int { return d.df.Len() }

// Width returns the number of columns.
func (d *DataFrame) Width() int { return d.df.Width() }

// Column returns the column with the given name.
func (d *DataFrame) Column(name string) (ISeries, bool) { return d.df.Column(name) }

// HasColumn reports whether a column exists.
func (d *DataFrame) HasColumn(name string) bool { return d.df.HasColumn(name) }

// GroupVars returns nil: a plain table has no grouping.
func (d *DataFrame) GroupVars() []string { return nil }

// Select returns a new DataFrame with the named columns; unknown names are
// silently dropped.
func (d *DataFrame) Select(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Select(names...)}
}

// SelectStrict is Select that fails on unknown names.
func (d *DataFrame) SelectStrict(names ...string) (*DataFrame, error) {
	out, err := d.df.SelectStrict(names...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// Drop returns a new DataFrame without the named columns.
func (d *DataFrame) Drop(names ...string) *DataFrame {
	return &DataFrame{df: d.df.Drop(names...)}
}

// Rename returns a new DataFrame with columns renamed per the old-to-new
// mapping.
func (d *DataFrame) Rename(mapping map[string]string) (*DataFrame, error) {
	out, err := d.df.Rename(mapping)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// Take returns the rows at the given positions, in the given order.
func (d *DataFrame) Take(rows []int) *DataFrame {
	return &DataFrame{df: d.df.Take(rows)}
}

// Concat row-binds this DataFrame with others of the same schema.
func (d *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	internal := make([]*dataframe.DataFrame, len(others))
	for i, o := range others {
		internal[i] = o.df
	}
	out, err := d.df.Concat(internal...)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// BindCols column-binds another DataFrame of the same row count.
func (d *DataFrame) BindCols(other *DataFrame) (*DataFrame, error) {
	out, err := d.df.BindCols(other.df)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// Distinct keeps the first row of each combination of values in the given
// columns (all columns when empty). keepAll retains every column.
func (d *DataFrame) Distinct(cols []string, keepAll bool) (*DataFrame, error) {
	out, err := d.df.Distinct(cols, keepAll)
	if err != nil {
		return nil, err
	}
	return &DataFrame{df: out}, nil
}

// GroupBy partitions the table by the given keys: column names, name
// slices, or column expressions. Empty keys return the plain table.
func (d *DataFrame) GroupBy(keys ...any) (Table, error) {
	specs := unwrapKeySpecs(keys)
	out, err := d.df.GroupBy(specs...)
	if err != nil {
		return nil, err
	}
	return wrapTable(out), nil
}

// String returns a printable rendering.
func (d *DataFrame) String() string { return d.df.String() }

// Release frees the underlying column storage.
func (d *DataFrame) Release() { d.df.Release() }

// GroupedDataFrame methods

// GroupVars returns the grouping column names. The group index is not
// built for this read.
func (g *GroupedDataFrame) GroupVars() []string { return g.g.GroupVars() }

// NGroups returns the number of groups.
func (g *GroupedDataFrame) NGroups() int { return g.g.NGroups() }

// GroupSize returns per-group row counts in group order.
func (g *GroupedDataFrame) GroupSize() []int { return g.g.GroupSize() }

// GroupRows returns the row-position partition in group order.
func (g *GroupedDataFrame) GroupRows() [][]int { return g.g.GroupRows() }

// GroupKeys returns the distinct key tuples as a table, one row per group.
func (g *GroupedDataFrame) GroupKeys() *DataFrame {
	return &DataFrame{df: g.g.GroupKeys()}
}

// Labels returns the formatted group labels in group order.
func (g *GroupedDataFrame) Labels() []string { return g.g.Labels() }

// Ungroup returns the underlying plain table.
func (g *GroupedDataFrame) Ungroup() *DataFrame {
	return &DataFrame{df: g.g.Ungroup()}
}

// Columns returns the column names of the underlying table.
func (g *GroupedDataFrame) Columns() []string { return g.g.Columns() }

// Len returns the row count of the underlying table.
func (g *GroupedDataFrame) Len() int { return g.g.Len() }

// Width returns the column count of the underlying table.
func (g *GroupedDataFrame) Width() int { return g.g.Width() }

// Column returns the column with the given name.
func (g *GroupedDataFrame) Column(name string) (ISeries, bool) { return g.g.Column(name) }

// HasColumn reports whether a column exists.
func (g *GroupedDataFrame) HasColumn(name string) bool { return g.g.HasColumn(name) }

// Select returns a grouped table with the named columns; grouping columns
// missing from the selection are prepended rather than dropped.
func (g *GroupedDataFrame) Select(cols ...string) (*GroupedDataFrame, error) {
	out, err := g.g.Select(cols...)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{g: out}, nil
}

// Rename renames columns per the old-to-new mapping; renamed grouping
// columns track their new names.
func (g *GroupedDataFrame) Rename(mapping map[string]string) (*GroupedDataFrame, error) {
	out, err := g.g.Rename(mapping)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{g: out}, nil
}

// Subset returns the rows at the given positions restricted to the given
// columns (nil keeps all). When a grouping column is dropped the result
// silently degrades to a plain table.
func (g *GroupedDataFrame) Subset(rows []int, cols []string) Table {
	return wrapTable(g.g.Subset(rows, cols))
}

// Concat row-binds grouped tables with compatible schemas.
func (g *GroupedDataFrame) Concat(others ...*GroupedDataFrame) (*GroupedDataFrame, error) {
	internal := make([]*dataframe.GroupedDataFrame, len(others))
	for i, o := range others {
		internal[i] = o.g
	}
	out, err := g.g.Concat(internal...)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{g: out}, nil
}

// BindCols column-binds a plain table to the grouped table.
func (g *GroupedDataFrame) BindCols(other *DataFrame) (*GroupedDataFrame, error) {
	out, err := g.g.BindCols(other.df)
	if err != nil {
		return nil, err
	}
	return &GroupedDataFrame{g: out}, nil
}

// Distinct keeps the first row of each combination of the given columns
// unioned with the grouping columns, which always distinguish.
func (g *GroupedDataFrame) Distinct(cols []string, keepAll bool) (Table, error) {
	out, err := g.g.Distinct(cols, keepAll)
	if err != nil {
		return nil, err
	}
	return wrapTable(out), nil
}

// Do evaluates the given computations once per group in key-sorted group
// order and assembles the results.
func (g *GroupedDataFrame) Do(exprs ...*DoExpr) (*DoResult, error) {
	internal := make([]*dataframe.DoExpr, len(exprs))
	for i, e := range exprs {
		internal[i] = e.inner
	}
	res, err := g.g.Do(internal...)
	if err != nil {
		return nil, err
	}
	return &DoResult{res: res}, nil
}

// String returns a printable rendering.
func (g *GroupedDataFrame) String() string { return g.g.String() }

// Per-group computations

// GroupContext is the handle a per-group computation uses to read and
// write the current group's rows. Write-backs are visible to later
// computations of the same Do call only.
type GroupContext struct {
	ctx *dataframe.GroupContext
}

// Slice returns the current group's rows across all columns.
func (c *GroupContext) Slice() *DataFrame {
	return &DataFrame{df: c.ctx.Slice()}
}

// Replace writes a same-row-count replacement for the group's rows.
func (c *GroupContext) Replace(repl *DataFrame) error {
	return c.ctx.Replace(repl.df)
}

// Rows returns the group's row positions in the base table.
func (c *GroupContext) Rows() []int { return c.ctx.Rows() }

// Size returns the group's row count.
func (c *GroupContext) Size() int { return c.ctx.Size() }

// Group returns the group's ordinal in group order.
func (c *GroupContext) Group() int { return c.ctx.Group() }

// Key returns the group's key values by grouping column.
func (c *GroupContext) Key() map[string]any { return c.ctx.Key() }

// Label returns the group's formatted label.
func (c *GroupContext) Label() string { return c.ctx.Label() }

// DoFunc is one per-group computation.
type DoFunc func(*GroupContext) (any, error)

// DoExpr is an optionally named per-group computation.
type DoExpr struct {
	inner *dataframe.DoExpr
}

func wrapDoFunc(fn DoFunc) func(*dataframe.GroupContext) (any, error) {
	return func(ctx *dataframe.GroupContext) (any, error) {
		v, err := fn(&GroupContext{ctx: ctx})
		if d, ok := v.(*DataFrame); ok {
			return d.df, err
		}
		return v, err
	}
}

// Compute wraps an unnamed per-group computation. A single unnamed
// computation whose results are tables assembles into one table with the
// key columns prepended.
func Compute(fn DoFunc) *DoExpr {
	return &DoExpr{inner: dataframe.Compute(wrapDoFunc(fn))}
}

// NamedCompute wraps a named computation; any named computation switches
// the result to label-indexed lists.
func NamedCompute(name string, fn DoFunc) *DoExpr {
	return &DoExpr{inner: dataframe.NamedCompute(name, wrapDoFunc(fn))}
}

// EvalExpr wraps an expression evaluated against each group's slice.
func EvalExpr(e Expression) *DoExpr {
	return &DoExpr{inner: dataframe.EvalExpr(e.expr)}
}

// NamedEvalExpr is EvalExpr with a result name.
func NamedEvalExpr(name string, e Expression) *DoExpr {
	return &DoExpr{inner: dataframe.NamedEvalExpr(name, e.expr)}
}

// DoList is one computation's label-indexed result.
type DoList struct {
	Name   string
	Labels []string
	Values []any
}

// DoResult is the outcome of a Do call.
type DoResult struct {
	res *dataframe.DoResult
}

// IsTable reports whether the result is an assembled table.
func (r *DoResult) IsTable() bool { return r.res.IsTable() }

// Table returns the assembled table, or nil in label-indexed form.
func (r *DoResult) Table() *DataFrame {
	if t := r.res.Table(); t != nil {
		return &DataFrame{df: t}
	}
	return nil
}

// Lists returns the label-indexed results, or nil in table form.
func (r *DoResult) Lists() []*DoList {
	internal := r.res.Lists()
	if internal == nil {
		return nil
	}
	lists := make([]*DoList, len(internal))
	for i, l := range internal {
		lists[i] = wrapDoList(l)
	}
	return lists
}

// List returns the list for a computation name.
func (r *DoResult) List(name string) (*DoList, bool) {
	l, ok := r.res.List(name)
	if !ok {
		return nil, false
	}
	return wrapDoList(l), true
}

func wrapDoList(l *dataframe.DoList) *DoList {
	values := make([]any, len(l.Values))
	for i, v := range l.Values {
		if d, ok := v.(*dataframe.DataFrame); ok {
			values[i] = &DataFrame{df: d}
		} else {
			values[i] = v
		}
	}
	return &DoList{Name: l.Name, Labels: l.Labels, Values: values}
}

// Expressions

// Expression is the public type for per-group expression trees.
type Expression struct {
	expr expr.Expr
}

// Col references a column by name.
func Col(name string) Expression { return Expression{expr: expr.Col(name)} }

// Lit creates a literal expression.
func Lit(value any) Expression { return Expression{expr: expr.Lit(value)} }

func (e Expression) binary(op expr.BinaryOp, other Expression) Expression {
	return Expression{expr: expr.NewBinary(e.expr, op, other.expr)}
}

// Add adds two expressions.
func (e Expression) Add(other Expression) Expression { return e.binary(expr.OpAdd, other) }

// Sub subtracts an expression.
func (e Expression) Sub(other Expression) Expression { return e.binary(expr.OpSub, other) }

// Mul multiplies two expressions.
func (e Expression) Mul(other Expression) Expression { return e.binary(expr.OpMul, other) }

// Div divides by an expression.
func (e Expression) Div(other Expression) Expression { return e.binary(expr.OpDiv, other) }

// Eq compares for equality.
func (e Expression) Eq(other Expression) Expression { return e.binary(expr.OpEq, other) }

// Ne compares for inequality.
func (e Expression) Ne(other Expression) Expression { return e.binary(expr.OpNe, other) }

// Lt compares less-than.
func (e Expression) Lt(other Expression) Expression { return e.binary(expr.OpLt, other) }

// Le compares less-or-equal.
func (e Expression) Le(other Expression) Expression { return e.binary(expr.OpLe, other) }

// Gt compares greater-than.
func (e Expression) Gt(other Expression) Expression { return e.binary(expr.OpGt, other) }

// Ge compares greater-or-equal.
func (e Expression) Ge(other Expression) Expression { return e.binary(expr.OpGe, other) }

// And combines boolean expressions.
func (e Expression) And(other Expression) Expression { return e.binary(expr.OpAnd, other) }

// Or combines boolean expressions.
func (e Expression) Or(other Expression) Expression { return e.binary(expr.OpOr, other) }

// String returns the expression rendering.
func (e Expression) String() string { return e.expr.String() }

// helpers

// unwrapKeySpecs lowers facade expressions in key specs to internal ones.
func unwrapKeySpecs(keys []any) []any {
	specs := make([]any, len(keys))
	for i, k := range keys {
		switch v := k.(type) {
		case Expression:
			specs[i] = v.expr
		case []Expression:
			inner := make([]expr.Expr, len(v))
			for j, e := range v {
				inner[j] = e.expr
			}
			specs[i] = inner
		default:
			specs[i] = k
		}
	}
	return specs
}

func wrapTable(t dataframe.Table) Table {
	switch v := t.(type) {
	case *dataframe.DataFrame:
		return &DataFrame{df: v}
	case *dataframe.GroupedDataFrame:
		return &GroupedDataFrame{g: v}
	default:
		return nil
	}
}
