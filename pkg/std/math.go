package std

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

// ErrDivisionByZero is the fault produced by Div with a zero operand.
var ErrDivisionByZero = errors.New("division by zero")

// Number is the set of types Math operates on.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// MathOp is an arithmetic operation.
type MathOp string

const (
	OpAdd MathOp = "add"
	OpSub MathOp = "sub"
	OpMul MathOp = "mul"
	OpDiv MathOp = "div"
)

// Math applies Op with Operand to its input. Dividing by zero faults with DivByZero.
type Math[T Number, R, E any] struct {
	Op        MathOp
	Operand   T
	DivByZero E
}

func (m Math[T, R, E]) Label() string { return fmt.Sprintf("Math %s %v", m.Op, m.Operand) }

func (m Math[T, R, E]) Run(_ context.Context, in T, _ R, _ *bus.Bus) domain.Outcome[T, E] {
	switch m.Op {
	case OpAdd:
		return domain.Next[T, E](in + m.Operand)
	case OpSub:
		return domain.Next[T, E](in - m.Operand)
	case OpMul:
		return domain.Next[T, E](in * m.Operand)
	case OpDiv:
		if m.Operand == 0 {
			return domain.Fault[T](m.DivByZero)
		}
		return domain.Next[T, E](in / m.Operand)
	default:
		return domain.Next[T, E](in)
	}
}

// Add returns an error-faulting Math step adding n.
func Add[T Number, R any](n T) Math[T, R, error] {
	return Math[T, R, error]{Op: OpAdd, Operand: n, DivByZero: ErrDivisionByZero}
}

// Mul returns an error-faulting Math step multiplying by n.
func Mul[T Number, R any](n T) Math[T, R, error] {
	return Math[T, R, error]{Op: OpMul, Operand: n, DivByZero: ErrDivisionByZero}
}

// Div returns an error-faulting Math step dividing by n.
func Div[T Number, R any](n T) Math[T, R, error] {
	return Math[T, R, error]{Op: OpDiv, Operand: n, DivByZero: ErrDivisionByZero}
}
