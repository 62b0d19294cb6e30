package std

import (
	"context"
	"strings"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

// StringOp is a string transformation.
type StringOp string

const (
	OpAppend  StringOp = "append"
	OpPrepend StringOp = "prepend"
	OpUpper   StringOp = "upper"
	OpLower   StringOp = "lower"
)

// Strings transforms a string input. Arg is used by append and prepend.
type Strings[R, E any] struct {
	Op  StringOp
	Arg string
}

func (s Strings[R, E]) Label() string { return "String " + string(s.Op) }

func (s Strings[R, E]) Run(_ context.Context, in string, _ R, _ *bus.Bus) domain.Outcome[string, E] {
	switch s.Op {
	case OpAppend:
		return domain.Next[string, E](in + s.Arg)
	case OpPrepend:
		return domain.Next[string, E](s.Arg + in)
	case OpUpper:
		return domain.Next[string, E](strings.ToUpper(in))
	case OpLower:
		return domain.Next[string, E](strings.ToLower(in))
	default:
		return domain.Next[string, E](in)
	}
}
