package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies which variant of an Outcome is active.
type Kind uint8

const (
	KindNext Kind = iota
	KindBranch
	KindJump
	KindEmit
	KindFault
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "Next"
	case KindBranch:
		return "Branch"
	case KindJump:
		return "Jump"
	case KindEmit:
		return "Emit"
	case KindFault:
		return "Fault"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Outcome is the control-flow value produced by a transition.
// Exactly one variant is active. Branch, Jump and Emit carry an identifier and an
// opaque JSON-serializable payload that is independent of T.
type Outcome[T, E any] struct {
	kind    Kind
	value   T
	id      string
	payload any
	err     E
}

// Next continues the pipeline with value.
func Next[T, E any](value T) Outcome[T, E] {
	return Outcome[T, E]{kind: KindNext, value: value}
}

// Branch diverts execution to the named branch.
func Branch[T, E any](branchID string, payload any) Outcome[T, E] {
	return Outcome[T, E]{kind: KindBranch, id: branchID, payload: payload}
}

// Jump transfers control to another node by id.
func Jump[T, E any](nodeID string, payload any) Outcome[T, E] {
	return Outcome[T, E]{kind: KindJump, id: nodeID, payload: payload}
}

// Emit ends the pipeline by publishing a named event.
func Emit[T, E any](event string, payload any) Outcome[T, E] {
	return Outcome[T, E]{kind: KindEmit, id: event, payload: payload}
}

// Fault terminates the pipeline with a domain error.
func Fault[T, E any](err E) Outcome[T, E] {
	return Outcome[T, E]{kind: KindFault, err: err}
}

func (o Outcome[T, E]) Kind() Kind { return o.kind }

// Value returns the Next payload. The boolean is false for every other variant.
func (o Outcome[T, E]) Value() (T, bool) {
	return o.value, o.kind == KindNext
}

// ID returns the branch id, jump target or event name. It is empty for Next and Fault.
func (o Outcome[T, E]) ID() string { return o.id }

// Payload returns the payload carried by Branch, Jump and Emit.
func (o Outcome[T, E]) Payload() any { return o.payload }

// Err returns the Fault error. The boolean is false for every other variant.
func (o Outcome[T, E]) Err() (E, bool) {
	return o.err, o.kind == KindFault
}

func (o Outcome[T, E]) IsNext() bool   { return o.kind == KindNext }
func (o Outcome[T, E]) IsBranch() bool { return o.kind == KindBranch }
func (o Outcome[T, E]) IsJump() bool   { return o.kind == KindJump }
func (o Outcome[T, E]) IsEmit() bool   { return o.kind == KindEmit }
func (o Outcome[T, E]) IsFault() bool  { return o.kind == KindFault }

// Tag renders the outcome as recorded in timelines: "Next", "Branch:<id>",
// "Jump:<id>", "Emit:<event>" or "Fault".
func (o Outcome[T, E]) Tag() string {
	switch o.kind {
	case KindBranch, KindJump, KindEmit:
		return o.kind.String() + ":" + o.id
	default:
		return o.kind.String()
	}
}

// Map transforms the Next value and passes every other variant through untouched.
func Map[T, U, E any](o Outcome[T, E], f func(T) U) Outcome[U, E] {
	if o.kind == KindNext {
		return Next[U, E](f(o.value))
	}
	return Propagate[T, U](o)
}

// MapErr transforms the Fault error and passes every other variant through untouched.
func MapErr[T, E, F any](o Outcome[T, E], f func(E) F) Outcome[T, F] {
	switch o.kind {
	case KindFault:
		return Fault[T, F](f(o.err))
	case KindNext:
		return Next[T, F](o.value)
	default:
		return Outcome[T, F]{kind: o.kind, id: o.id, payload: o.payload}
	}
}

// Propagate re-types a non-Next outcome so it can leave a step with a different
// output type. Identifier, payload and error are carried over verbatim.
// Calling it on a Next outcome drops the value and is a programming error.
func Propagate[T, U, E any](o Outcome[T, E]) Outcome[U, E] {
	if o.kind == KindNext {
		panic("domain: Propagate called on a Next outcome")
	}
	return Outcome[U, E]{kind: o.kind, id: o.id, payload: o.payload, err: o.err}
}

// Result converts the outcome into a plain (value, error) pair. Every variant other
// than Next is reported as an error: Fault yields its error, Branch, Jump and Emit
// yield an *EarlyTerminationError.
func (o Outcome[T, E]) Result() (T, error) {
	var zero T
	switch o.kind {
	case KindNext:
		return o.value, nil
	case KindFault:
		if err, ok := any(o.err).(error); ok && err != nil {
			return zero, err
		}
		return zero, &FaultError{Value: o.err}
	default:
		return zero, &EarlyTerminationError{Kind: o.kind, ID: o.id, Payload: o.payload}
	}
}

type outcomeJSON struct {
	Kind    string `json:"kind"`
	Value   any    `json:"value,omitempty"`
	ID      string `json:"id,omitempty"`
	Payload any    `json:"payload,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// MarshalJSON renders the active variant for adapters and inspection tools.
func (o Outcome[T, E]) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Kind: o.kind.String()}
	switch o.kind {
	case KindNext:
		out.Value = o.value
	case KindFault:
		if err, ok := any(o.err).(error); ok && err != nil {
			out.Error = err.Error()
		} else {
			out.Error = o.err
		}
	default:
		out.ID = o.id
		out.Payload = o.payload
	}
	return json.Marshal(out)
}

// EarlyTerminationError reports that a pipeline stopped on Branch, Jump or Emit.
type EarlyTerminationError struct {
	Kind    Kind
	ID      string
	Payload any
}

func (e *EarlyTerminationError) Error() string {
	return fmt.Sprintf("early termination: %s:%s", e.Kind, e.ID)
}

func (e *EarlyTerminationError) Unwrap() error { return ErrEarlyTermination }

// FaultError wraps a Fault value whose type does not implement error.
type FaultError struct {
	Value any
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fault: %v", e.Value)
}

// AsEarlyTermination is a convenience around errors.As.
func AsEarlyTermination(err error) (*EarlyTerminationError, bool) {
	var et *EarlyTerminationError
	if errors.As(err, &et) {
		return et, true
	}
	return nil, false
}
