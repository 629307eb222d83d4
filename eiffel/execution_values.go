package eiffel

import (
	"fmt"
	"io"
	"strings"
)

func (exec *Execution) evalBinary(n *BinaryExpr, scope *Scope) (Value, error) {
	left, err := exec.Evaluate(n.Left, scope)
	if err != nil {
		return NewVoid(), err
	}
	right, err := exec.Evaluate(n.Right, scope)
	if err != nil {
		return NewVoid(), err
	}

	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		return exec.intArithmetic(n, left.Int(), right.Int())
	case isNumeric(left) && isNumeric(right):
		return exec.realArithmetic(n, left.Real(), right.Real())
	case left.Kind() == KindString && right.Kind() == KindString && n.Op == '+':
		return NewString(left.String() + right.String()), nil
	default:
		return NewVoid(), exec.errorAt(ErrTypeMismatch, n.Pos(), "unsupported operand types for %c: %s and %s", n.Op, left.TypeName(), right.TypeName())
	}
}

func isNumeric(v Value) bool {
	return v.Kind() == KindInt || v.Kind() == KindReal
}

// intArithmetic applies Go's int64 semantics, so division truncates toward zero.
func (exec *Execution) intArithmetic(n *BinaryExpr, a, b int64) (Value, error) {
	switch n.Op {
	case '+':
		return NewInt(a + b), nil
	case '-':
		return NewInt(a - b), nil
	case '*':
		return NewInt(a * b), nil
	case '/':
		if b == 0 {
			return NewVoid(), exec.errorAt(ErrDivisionByZero, n.Pos(), "division by zero")
		}
		return NewInt(a / b), nil
	default:
		return NewVoid(), exec.errorAt(ErrTypeMismatch, n.Pos(), "unknown operator %c", n.Op)
	}
}

func (exec *Execution) realArithmetic(n *BinaryExpr, a, b float64) (Value, error) {
	switch n.Op {
	case '+':
		return NewReal(a + b), nil
	case '-':
		return NewReal(a - b), nil
	case '*':
		return NewReal(a * b), nil
	case '/':
		if b == 0 {
			return NewVoid(), exec.errorAt(ErrDivisionByZero, n.Pos(), "division by zero")
		}
		return NewReal(a / b), nil
	default:
		return NewVoid(), exec.errorAt(ErrTypeMismatch, n.Pos(), "unknown operator %c", n.Op)
	}
}

func (exec *Execution) evalComparison(n *ComparisonExpr, scope *Scope) (Value, error) {
	if !n.Op.valid() {
		return NewVoid(), exec.errorAt(ErrTypeMismatch, n.Pos(), "unknown comparison %q", string(n.Op))
	}
	left, err := exec.Evaluate(n.Left, scope)
	if err != nil {
		return NewVoid(), err
	}
	right, err := exec.Evaluate(n.Right, scope)
	if err != nil {
		return NewVoid(), err
	}

	var order int
	switch {
	case left.Kind() == KindInt && right.Kind() == KindInt:
		order = compareOrdered(left.Int(), right.Int())
	case isNumeric(left) && isNumeric(right):
		order = compareOrdered(left.Real(), right.Real())
	case left.Kind() == KindString && right.Kind() == KindString:
		order = strings.Compare(left.String(), right.String())
	case isReference(left) && isReference(right) && (n.Op == CompareEQ || n.Op == CompareNotEQ):
		same := left.Equal(right)
		return newBool(same == (n.Op == CompareEQ)), nil
	default:
		return NewVoid(), exec.errorAt(ErrTypeMismatch, n.Pos(), "cannot compare %s %s %s", left.TypeName(), n.Op, right.TypeName())
	}

	switch n.Op {
	case CompareLT:
		return newBool(order < 0), nil
	case CompareLTE:
		return newBool(order <= 0), nil
	case CompareGT:
		return newBool(order > 0), nil
	case CompareGTE:
		return newBool(order >= 0), nil
	case CompareEQ:
		return newBool(order == 0), nil
	default:
		return newBool(order != 0), nil
	}
}

func isReference(v Value) bool {
	return v.Kind() == KindObject || v.Kind() == KindNull
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// print writes the textual form of every argument with no separator and ends the
// line once all of them are written.
func (exec *Execution) print(args []Node, scope *Scope) error {
	var b strings.Builder
	for _, arg := range args {
		val, err := exec.Evaluate(arg, scope)
		if err != nil {
			return err
		}
		b.WriteString(val.String())
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(exec.out, b.String()); err != nil {
		return fmt.Errorf("print: %w", err)
	}
	return nil
}

// coerceToDeclared widens integers stored into REAL slots.
func coerceToDeclared(val Value, declType string) Value {
	if declType == TypeReal && val.Kind() == KindInt {
		return NewReal(val.Real())
	}
	return val
}
