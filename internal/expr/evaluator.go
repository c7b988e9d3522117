package expr

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Evaluator evaluates expressions against a column binding of Arrow arrays.
type Evaluator struct {
	mem memory.Allocator
}

// NewEvaluator creates an expression evaluator.
func NewEvaluator(mem memory.Allocator) *Evaluator {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Evaluator{mem: mem}
}

// Evaluate evaluates an expression and returns the resulting array.
func (e *Evaluator) Evaluate(ex Expr, columns map[string]arrow.Array) (arrow.Array, error) {
	switch x := ex.(type) {
	case *ColumnExpr:
		arr, exists := columns[x.name]
		if !exists {
			return nil, fmt.Errorf("column not found: %s", x.name)
		}
		arr.Retain()
		return arr, nil
	case *LiteralExpr:
		return e.broadcastLiteral(x, bindingLength(columns))
	case *BinaryExpr:
		return e.evaluateBinary(x, columns)
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", ex)
	}
}

// EvaluateBoolean evaluates an expression that must yield a boolean array.
func (e *Evaluator) EvaluateBoolean(ex Expr, columns map[string]arrow.Array) (arrow.Array, error) {
	result, err := e.Evaluate(ex, columns)
	if err != nil {
		return nil, err
	}
	if _, ok := result.(*array.Boolean); !ok {
		result.Release()
		return nil, fmt.Errorf("expression %s does not produce a boolean result", ex.String())
	}
	return result, nil
}

func bindingLength(columns map[string]arrow.Array) int {
	for _, arr := range columns {
		return arr.Len()
	}
	return 0
}

func (e *Evaluator) broadcastLiteral(lit *LiteralExpr, length int) (arrow.Array, error) {
	switch v := lit.value.(type) {
	case string:
		b := array.NewStringBuilder(e.mem)
		defer b.Release()
		for i := 0; i < length; i++ {
			b.Append(v)
		}
		return b.NewArray(), nil
	case int64:
		b := array.NewInt64Builder(e.mem)
		defer b.Release()
		for i := 0; i < length; i++ {
			b.Append(v)
		}
		return b.NewArray(), nil
	case int:
		return e.broadcastLiteral(Lit(int64(v)), length)
	case float64:
		b := array.NewFloat64Builder(e.mem)
		defer b.Release()
		for i := 0; i < length; i++ {
			b.Append(v)
		}
		return b.NewArray(), nil
	case bool:
		b := array.NewBooleanBuilder(e.mem)
		defer b.Release()
		for i := 0; i < length; i++ {
			b.Append(v)
		}
		return b.NewArray(), nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", lit.value)
	}
}

func (e *Evaluator) evaluateBinary(ex *BinaryExpr, columns map[string]arrow.Array) (arrow.Array, error) {
	left, err := e.Evaluate(ex.left, columns)
	if err != nil {
		return nil, fmt.Errorf("evaluating left operand: %w", err)
	}
	defer left.Release()

	right, err := e.Evaluate(ex.right, columns)
	if err != nil {
		return nil, fmt.Errorf("evaluating right operand: %w", err)
	}
	defer right.Release()

	if left.Len() != right.Len() {
		return nil, fmt.Errorf("operand lengths differ: %d vs %d", left.Len(), right.Len())
	}

	switch ex.op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return e.evaluateArithmetic(left, right, ex.op)
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return e.evaluateComparison(left, right, ex.op)
	case OpAnd, OpOr:
		return e.evaluateLogical(left, right, ex.op)
	default:
		return nil, fmt.Errorf("unsupported binary operation: %v", ex.op)
	}
}

// numericValue widens int64 and float64 cells to float64. The second result
// reports whether the cell was numeric and non-null.
func numericValue(arr arrow.Array, i int) (float64, bool) {
	if arr.IsNull(i) {
		return 0, false
	}
	switch a := arr.(type) {
	case *array.Int64:
		return float64(a.Value(i)), true
	case *array.Float64:
		return a.Value(i), true
	default:
		return 0, false
	}
}

func isNumeric(arr arrow.Array) bool {
	switch arr.(type) {
	case *array.Int64, *array.Float64:
		return true
	default:
		return false
	}
}

func (e *Evaluator) evaluateArithmetic(left, right arrow.Array, op BinaryOp) (arrow.Array, error) {
	li, lInt := left.(*array.Int64)
	ri, rInt := right.(*array.Int64)

	// Pure integer arithmetic stays integral; anything involving floats
	// widens to float64.
	if lInt && rInt {
		b := array.NewInt64Builder(e.mem)
		defer b.Release()
		for i := 0; i < li.Len(); i++ {
			if li.IsNull(i) || ri.IsNull(i) {
				b.AppendNull()
				continue
			}
			l, r := li.Value(i), ri.Value(i)
			switch op {
			case OpAdd:
				b.Append(l + r)
			case OpSub:
				b.Append(l - r)
			case OpMul:
				b.Append(l * r)
			case OpDiv:
				if r == 0 {
					b.AppendNull()
				} else {
					b.Append(l / r)
				}
			default:
				return nil, fmt.Errorf("unsupported arithmetic operation: %v", op)
			}
		}
		return b.NewArray(), nil
	}

	if !isNumeric(left) || !isNumeric(right) {
		return nil, fmt.Errorf("unsupported arithmetic between %s and %s",
			left.DataType().Name(), right.DataType().Name())
	}

	b := array.NewFloat64Builder(e.mem)
	defer b.Release()
	for i := 0; i < left.Len(); i++ {
		l, lok := numericValue(left, i)
		r, rok := numericValue(right, i)
		if !lok || !rok {
			b.AppendNull()
			continue
		}
		switch op {
		case OpAdd:
			b.Append(l + r)
		case OpSub:
			b.Append(l - r)
		case OpMul:
			b.Append(l * r)
		case OpDiv:
			b.Append(l / r)
		default:
			return nil, fmt.Errorf("unsupported arithmetic operation: %v", op)
		}
	}
	return b.NewArray(), nil
}

func compareOrdered[T string | int64 | float64](l, r T, op BinaryOp) (bool, error) {
	switch op {
	case OpEq:
		return l == r, nil
	case OpNe:
		return l != r, nil
	case OpLt:
		return l < r, nil
	case OpLe:
		return l <= r, nil
	case OpGt:
		return l > r, nil
	case OpGe:
		return l >= r, nil
	default:
		return false, fmt.Errorf("unsupported comparison operation: %v", op)
	}
}

func (e *Evaluator) evaluateComparison(left, right arrow.Array, op BinaryOp) (arrow.Array, error) {
	b := array.NewBooleanBuilder(e.mem)
	defer b.Release()

	appendCell := func(v bool, err error) error {
		if err != nil {
			return err
		}
		b.Append(v)
		return nil
	}

	for i := 0; i < left.Len(); i++ {
		if left.IsNull(i) || right.IsNull(i) {
			b.AppendNull()
			continue
		}

		var err error
		switch l := left.(type) {
		case *array.String:
			r, ok := right.(*array.String)
			if !ok {
				return nil, comparisonTypeError(left, right)
			}
			err = appendCell(compareOrdered(l.Value(i), r.Value(i), op))
		case *array.Boolean:
			r, ok := right.(*array.Boolean)
			if !ok {
				return nil, comparisonTypeError(left, right)
			}
			switch op {
			case OpEq:
				b.Append(l.Value(i) == r.Value(i))
			case OpNe:
				b.Append(l.Value(i) != r.Value(i))
			default:
				return nil, fmt.Errorf("unsupported boolean comparison operation: %v", op)
			}
		default:
			lv, lok := numericValue(left, i)
			rv, rok := numericValue(right, i)
			if !lok || !rok {
				return nil, comparisonTypeError(left, right)
			}
			err = appendCell(compareOrdered(lv, rv, op))
		}
		if err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

func comparisonTypeError(left, right arrow.Array) error {
	return fmt.Errorf("unsupported comparison between %s and %s",
		left.DataType().Name(), right.DataType().Name())
}

func (e *Evaluator) evaluateLogical(left, right arrow.Array, op BinaryOp) (arrow.Array, error) {
	lb, ok1 := left.(*array.Boolean)
	rb, ok2 := right.(*array.Boolean)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("logical operations require boolean operands")
	}

	b := array.NewBooleanBuilder(e.mem)
	defer b.Release()
	for i := 0; i < lb.Len(); i++ {
		if lb.IsNull(i) || rb.IsNull(i) {
			b.AppendNull()
			continue
		}
		switch op {
		case OpAnd:
			b.Append(lb.Value(i) && rb.Value(i))
		case OpOr:
			b.Append(lb.Value(i) || rb.Value(i))
		default:
			return nil, fmt.Errorf("unsupported logical operation: %v", op)
		}
	}
	return b.NewArray(), nil
}
