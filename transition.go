package axon

import (
	"context"
	"reflect"
	"strings"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

// Transition is a single typed step of a circuit.
//
// R is the resources bundle shared read-only by every step of one execution.
// The Bus carries per-execution, cross-cutting values. A transition that returns
// a Fault must not leave irreversible external changes unrecorded: the engine
// never rolls anything back.
type Transition[In, Out, R, E any] interface {
	Run(ctx context.Context, in In, res R, b *bus.Bus) domain.Outcome[Out, E]
}

// Labeler is implemented by transitions that name themselves in a Schematic.
type Labeler interface {
	Label() string
}

// Describer is implemented by transitions that describe themselves in a Schematic.
type Describer interface {
	Description() string
}

// Func adapts a plain function to the Transition interface.
type Func[In, Out, R, E any] func(ctx context.Context, in In, res R, b *bus.Bus) domain.Outcome[Out, E]

// Run calls f.
func (f Func[In, Out, R, E]) Run(ctx context.Context, in In, res R, b *bus.Bus) domain.Outcome[Out, E] {
	return f(ctx, in, res, b)
}

type named[In, Out, R, E any] struct {
	Transition[In, Out, R, E]
	label       string
	description string
}

func (n named[In, Out, R, E]) Label() string       { return n.label }
func (n named[In, Out, R, E]) Description() string { return n.description }

// Named wraps fn with a schematic label.
func Named[In, Out, R, E any](label string, fn func(ctx context.Context, in In, res R, b *bus.Bus) domain.Outcome[Out, E]) Transition[In, Out, R, E] {
	return named[In, Out, R, E]{Transition: Func[In, Out, R, E](fn), label: label}
}

// Describe attaches a description to t, keeping its label.
func Describe[In, Out, R, E any](t Transition[In, Out, R, E], description string) Transition[In, Out, R, E] {
	return named[In, Out, R, E]{Transition: t, label: labelOf(t), description: description}
}

func labelOf(t any) string {
	if l, ok := t.(Labeler); ok {
		if s := l.Label(); s != "" {
			return s
		}
	}
	rt := reflect.TypeOf(t)
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Name() == "" {
		return "Transition"
	}
	// Generic instantiations carry their type arguments in the name.
	name, _, _ := strings.Cut(rt.Name(), "[")
	return name
}

func descriptionOf(t any) string {
	if d, ok := t.(Describer); ok {
		return d.Description()
	}
	return ""
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
