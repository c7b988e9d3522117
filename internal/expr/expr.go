// Package expr provides the expression AST and evaluator used by per-group
// computations. An expression is built from column references, literals,
// and binary operations, and is evaluated against a named set of Arrow
// arrays (one per column of the current group's slice).
package expr

import "fmt"

// Expr represents an expression evaluated against a column binding.
type Expr interface {
	String() string
}

// ColumnExpr references a column by name.
type ColumnExpr struct {
	name string
}

// Col creates a column reference.
func Col(name string) *ColumnExpr {
	return &ColumnExpr{name: name}
}

// Name returns the referenced column name.
func (c *ColumnExpr) Name() string { return c.name }

func (c *ColumnExpr) String() string { return fmt.Sprintf("col(%s)", c.name) }

// LiteralExpr holds a constant value.
type LiteralExpr struct {
	value any
}

// Lit creates a literal expression.
func Lit(value any) *LiteralExpr {
	return &LiteralExpr{value: value}
}

// Value returns the literal value.
func (l *LiteralExpr) Value() any { return l.value }

func (l *LiteralExpr) String() string { return fmt.Sprintf("lit(%v)", l.value) }

// BinaryOp identifies a binary operation.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var opSymbols = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

// BinaryExpr combines two expressions with an operator.
type BinaryExpr struct {
	left  Expr
	op    BinaryOp
	right Expr
}

func (b *BinaryExpr) Left() Expr   { return b.left }
func (b *BinaryExpr) Op() BinaryOp { return b.op }
func (b *BinaryExpr) Right() Expr  { return b.right }

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left.String(), opSymbols[b.op], b.right.String())
}

func binary(left Expr, op BinaryOp, right Expr) *BinaryExpr {
	return &BinaryExpr{left: left, op: op, right: right}
}

// NewBinary combines two arbitrary expressions with an operator.
func NewBinary(left Expr, op BinaryOp, right Expr) *BinaryExpr {
	return binary(left, op, right)
}

// Arithmetic and comparison builders on column references.

func (c *ColumnExpr) Add(other Expr) *BinaryExpr { return binary(c, OpAdd, other) }
func (c *ColumnExpr) Sub(other Expr) *BinaryExpr { return binary(c, OpSub, other) }
func (c *ColumnExpr) Mul(other Expr) *BinaryExpr { return binary(c, OpMul, other) }
func (c *ColumnExpr) Div(other Expr) *BinaryExpr { return binary(c, OpDiv, other) }
func (c *ColumnExpr) Eq(other Expr) *BinaryExpr  { return binary(c, OpEq, other) }
func (c *ColumnExpr) Ne(other Expr) *BinaryExpr  { return binary(c, OpNe, other) }
func (c *ColumnExpr) Lt(other Expr) *BinaryExpr  { return binary(c, OpLt, other) }
func (c *ColumnExpr) Le(other Expr) *BinaryExpr  { return binary(c, OpLe, other) }
func (c *ColumnExpr) Gt(other Expr) *BinaryExpr  { return binary(c, OpGt, other) }
func (c *ColumnExpr) Ge(other Expr) *BinaryExpr  { return binary(c, OpGe, other) }

// Chaining builders on binary expressions.

func (b *BinaryExpr) Add(other Expr) *BinaryExpr { return binary(b, OpAdd, other) }
func (b *BinaryExpr) Sub(other Expr) *BinaryExpr { return binary(b, OpSub, other) }
func (b *BinaryExpr) Mul(other Expr) *BinaryExpr { return binary(b, OpMul, other) }
func (b *BinaryExpr) Div(other Expr) *BinaryExpr { return binary(b, OpDiv, other) }
func (b *BinaryExpr) And(other Expr) *BinaryExpr { return binary(b, OpAnd, other) }
func (b *BinaryExpr) Or(other Expr) *BinaryExpr  { return binary(b, OpOr, other) }
