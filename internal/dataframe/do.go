package dataframe

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/groupframe/groupframe/internal/common"
	"github.com/groupframe/groupframe/internal/config"
	"github.com/groupframe/groupframe/internal/errors"
	"github.com/groupframe/groupframe/internal/expr"
	"github.com/groupframe/groupframe/internal/progress"
)

func labelSeparator() string {
	return config.GetConfig().LabelSeparator
}

// DoFunc is one per-group computation. It receives the pronoun context for
// the current group and returns an arbitrary result value.
type DoFunc func(*GroupContext) (any, error)

// DoExpr is an optionally named per-group computation.
type DoExpr struct {
	name string
	fn   DoFunc
}

// Compute wraps an unnamed per-group computation.
func Compute(fn DoFunc) *DoExpr {
	return &DoExpr{fn: fn}
}

// NamedCompute wraps a named per-group computation. Any named computation
// switches the output to label-indexed form.
func NamedCompute(name string, fn DoFunc) *DoExpr {
	return &DoExpr{name: name, fn: fn}
}

// EvalExpr wraps an expression-AST computation: the expression is evaluated
// against the current group's slice and the result becomes a one-column
// table named after the expression.
func EvalExpr(e expr.Expr) *DoExpr {
	return &DoExpr{fn: evalExprFunc(e)}
}

// NamedEvalExpr is EvalExpr with a result name.
func NamedEvalExpr(name string, e expr.Expr) *DoExpr {
	return &DoExpr{name: name, fn: evalExprFunc(e)}
}

func evalExprFunc(e expr.Expr) DoFunc {
	return func(ctx *GroupContext) (any, error) {
		slice := ctx.Slice()
		cols := make(map[string]arrow.Array, slice.Width())
		for _, name := range slice.Columns() {
			if s, ok := slice.Column(name); ok {
				cols[name] = s.Array()
			}
		}
		defer func() {
			for _, arr := range cols {
				arr.Release()
			}
		}()

		eval := expr.NewEvaluator(nil)
		result, err := eval.Evaluate(e, cols)
		if err != nil {
			return nil, err
		}
		defer result.Release()

		cells := make([]any, result.Len())
		for i := range cells {
			cells[i] = cellAt(result, i)
		}
		name := e.String()
		if col, ok := e.(*expr.ColumnExpr); ok {
			name = col.Name()
		}
		mem := memory.NewGoAllocator()
		return New(seriesFromCells(name, result.DataType(), cells, mem)), nil
	}
}

// Name returns the computation's name, or "" for unnamed.
func (d *DoExpr) Name() string { return d.name }

// mutableColumn holds one column of the evaluation copy as untyped cells.
type mutableColumn struct {
	dtype arrow.DataType
	cells []any // nil marks a missing cell
}

// mutableFrame is the private, mutable copy of the base table owned by one
// Do call. Pronoun write-backs land here and are discarded with the call.
type mutableFrame struct {
	order []string
	cols  map[string]*mutableColumn
	n     int
}

func newMutableFrame(df *DataFrame) *mutableFrame {
	m := &mutableFrame{
		order: df.Columns(),
		cols:  make(map[string]*mutableColumn, df.Width()),
		n:     df.Len(),
	}
	for _, name := range m.order {
		s, _ := df.Column(name)
		m.cols[name] = &mutableColumn{
			dtype: s.DataType(),
			cells: collectCells(s),
		}
	}
	return m
}

// slice materializes the rows at the given positions as a typed table, in
// the base table's column order.
func (m *mutableFrame) slice(rows []int) *DataFrame {
	mem := memory.NewGoAllocator()
	cols := make([]ISeries, 0, len(m.order))
	for _, name := range m.order {
		mc := m.cols[name]
		cells := make([]any, len(rows))
		for j, r := range rows {
			cells[j] = mc.cells[r]
		}
		cols = append(cols, seriesFromCells(name, mc.dtype, cells, mem))
	}
	return New(cols...)
}

// replaceRows writes a replacement table back over the given row positions.
// The replacement must have exactly one row per position; its columns must
// exist in the base with matching types.
func (m *mutableFrame) replaceRows(rows []int, repl *DataFrame) error {
	if repl.Len() != len(rows) {
		return errors.NewShapeMismatchError("Do",
			fmt.Sprintf("replacement has %d rows, group has %d", repl.Len(), len(rows)))
	}
	for _, name := range repl.Columns() {
		mc, ok := m.cols[name]
		if !ok {
			return errors.NewUnknownColumnError("Do", name)
		}
		s, _ := repl.Column(name)
		if s.DataType().Name() != mc.dtype.Name() {
			return errors.NewShapeMismatchError("Do",
				fmt.Sprintf("column %q type changed from %s to %s",
					name, mc.dtype.Name(), s.DataType().Name()))
		}
		cells := collectCells(s)
		for j, r := range rows {
			mc.cells[r] = cells[j]
		}
	}
	return nil
}

// GroupContext is the pronoun: the handle a per-group computation uses to
// read and write the current group's row slice. Reads see write-backs made
// by earlier computations in the same Do call; the caller's original table
// is never touched.
type GroupContext struct {
	base  *mutableFrame
	rows  []int
	group int
	key   []any
	cols  []string
	sep   string
}

// Slice returns the current group's rows across all columns.
func (ctx *GroupContext) Slice() *DataFrame {
	return ctx.base.slice(ctx.rows)
}

// Replace writes a same-row-count replacement for the group's rows into the
// evaluation copy, visible to later computations in the same call.
func (ctx *GroupContext) Replace(repl *DataFrame) error {
	return ctx.base.replaceRows(ctx.rows, repl)
}

// Rows returns the group's row positions in the base table.
func (ctx *GroupContext) Rows() []int {
	return append([]int(nil), ctx.rows...)
}

// Size returns the group's row count.
func (ctx *GroupContext) Size() int { return len(ctx.rows) }

// Group returns the group's ordinal in key-sorted group order, or -1 for
// a zero-group dry run.
func (ctx *GroupContext) Group() int { return ctx.group }

// Key returns the group's key values by grouping column.
func (ctx *GroupContext) Key() map[string]any {
	out := make(map[string]any, len(ctx.cols))
	for i, name := range ctx.cols {
		if i < len(ctx.key) {
			out[name] = ctx.key[i]
		}
	}
	return out
}

// Label returns the group's formatted label.
func (ctx *GroupContext) Label() string {
	return common.FormatTuple(ctx.key, ctx.sep)
}

// DoList is one expression's label-indexed result: per-group values keyed
// by group label, in group order.
type DoList struct {
	Name   string
	Labels []string
	Values []any
}

// DoResult is the outcome of a Do call: either a single assembled table
// (single unnamed computation over table-shaped results) or one DoList per
// computation.
type DoResult struct {
	table *DataFrame
	lists []*DoList
}

// IsTable reports whether the result is in table form.
func (r *DoResult) IsTable() bool { return r.table != nil }

// Table returns the assembled table, or nil in label-indexed form.
func (r *DoResult) Table() *DataFrame { return r.table }

// Lists returns the label-indexed results, or nil in table form.
func (r *DoResult) Lists() []*DoList { return r.lists }

// List returns the list for a computation name.
func (r *DoResult) List(name string) (*DoList, bool) {
	for _, l := range r.lists {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Do evaluates the computations once per group, group-major then
// computation-minor, strictly in key-sorted group order. Pronoun
// write-backs are scoped to this call's private copy of the base table and
// are visible to later steps of the same call only. Any failure aborts the
// whole call; no partial per-group results are surfaced.
func (g *GroupedDataFrame) Do(exprs ...*DoExpr) (*DoResult, error) {
	if len(exprs) == 0 {
		return nil, errors.NewInternalError("Do", fmt.Errorf("no computations given"))
	}

	idx := g.resolve()
	base := newMutableFrame(g.df)
	sep := labelSeparator()

	reporter := doReporter()
	reporter.Start(idx.GroupCount() * len(exprs))

	tableForm := len(exprs) == 1 && exprs[0].name == ""

	// Zero groups: evaluate each computation once against an empty slice
	// to pin the result shape, then emit an empty result of that shape.
	if idx.GroupCount() == 0 {
		defer reporter.Done()
		return g.doZeroGroups(idx, base, exprs, sep, tableForm)
	}

	results := make([][]any, len(exprs))
	for j := range results {
		results[j] = make([]any, idx.GroupCount())
	}
	labels := make([]string, idx.GroupCount())

	for gi := 0; gi < idx.GroupCount(); gi++ {
		key := idx.keys[gi]
		labels[gi] = common.FormatTuple(key, sep)
		for j, ex := range exprs {
			ctx := &GroupContext{
				base:  base,
				rows:  idx.rows[gi],
				group: gi,
				key:   key,
				cols:  g.cols,
				sep:   sep,
			}
			v, err := ex.fn(ctx)
			if err != nil {
				return nil, fmt.Errorf("evaluating computation %d for group %q: %w",
					j+1, labels[gi], err)
			}
			results[j][gi] = v
			reporter.Step()
		}
	}
	reporter.Done()

	if tableForm {
		table, err := g.assembleTable(idx, results[0])
		if err != nil {
			return nil, err
		}
		return &DoResult{table: table}, nil
	}
	return &DoResult{lists: assembleLists(exprs, labels, results)}, nil
}

func (g *GroupedDataFrame) doZeroGroups(
	idx *GroupIndex, base *mutableFrame, exprs []*DoExpr, sep string, tableForm bool,
) (*DoResult, error) {
	samples := make([]any, len(exprs))
	for j, ex := range exprs {
		ctx := &GroupContext{base: base, rows: nil, group: -1, cols: g.cols, sep: sep}
		v, err := ex.fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("evaluating computation %d on empty input: %w", j+1, err)
		}
		samples[j] = v
	}

	if tableForm {
		rdf, ok := samples[0].(*DataFrame)
		if !ok {
			return nil, errors.NewShapeMismatchError("Do",
				fmt.Sprintf("computation result is %T, not a table", samples[0]))
		}
		// Force zero rows and prepend empty key columns of the key types.
		table, err := g.prependKeys(idx, -1, rdf.Take(nil))
		if err != nil {
			return nil, err
		}
		return &DoResult{table: table}, nil
	}

	lists := make([]*DoList, len(exprs))
	for j, ex := range exprs {
		lists[j] = &DoList{Name: listName(ex, j)}
	}
	return &DoResult{lists: lists}, nil
}

// assembleTable row-binds per-group table results in group order, each with
// its key-tuple values prepended as leading columns.
func (g *GroupedDataFrame) assembleTable(idx *GroupIndex, results []any) (*DataFrame, error) {
	parts := make([]*DataFrame, len(results))
	for gi, v := range results {
		rdf, ok := v.(*DataFrame)
		if !ok {
			return nil, errors.NewShapeMismatchError("Do",
				fmt.Sprintf("computation result for group %d is %T, not a table", gi, v))
		}
		keyed, err := g.prependKeys(idx, gi, rdf)
		if err != nil {
			return nil, err
		}
		parts[gi] = keyed
	}

	out, err := parts[0].Concat(parts[1:]...)
	if err != nil {
		return nil, errors.NewShapeMismatchError("Do",
			fmt.Sprintf("group results cannot be row-bound: %v", err))
	}
	return out, nil
}

// prependKeys puts the group's key values in front of a result table, one
// cell per result row. gi == -1 denotes the zero-group case: the key
// columns exist but hold no rows. A key column already present in the
// result is left as the result produced it.
func (g *GroupedDataFrame) prependKeys(idx *GroupIndex, gi int, rdf *DataFrame) (*DataFrame, error) {
	mem := memory.NewGoAllocator()
	var keyCols []ISeries
	for c, name := range idx.cols {
		if rdf.HasColumn(name) {
			continue
		}
		cells := make([]any, rdf.Len())
		if gi >= 0 {
			for i := range cells {
				cells[i] = idx.keys[gi][c]
			}
		}
		keyCols = append(keyCols, seriesFromCells(name, idx.colTypes[c], cells, mem))
	}
	if len(keyCols) == 0 {
		return rdf, nil
	}
	return New(keyCols...).BindCols(rdf)
}

func assembleLists(exprs []*DoExpr, labels []string, results [][]any) []*DoList {
	lists := make([]*DoList, len(exprs))
	for j, ex := range exprs {
		lists[j] = &DoList{
			Name:   listName(ex, j),
			Labels: append([]string(nil), labels...),
			Values: results[j],
		}
	}
	return lists
}

// listName names a computation's list; unnamed computations get a
// positional name.
func listName(ex *DoExpr, j int) string {
	if ex.name != "" {
		return ex.name
	}
	return fmt.Sprintf("expr%d", j+1)
}

func doReporter() progress.Reporter {
	cfg := config.GetConfig()
	if cfg.ProgressEnabled {
		return &progress.Slog{Logger: pkgLogger}
	}
	return progress.Nop{}
}
