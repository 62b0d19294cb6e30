package axon

import (
	"context"

	"github.com/google/uuid"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

// executor is one link of the composed chain. Links are immutable closures and
// are shared by every execution of a circuit.
type executor[In, Out, R, E any] func(ctx context.Context, s *settings, in In, res R, b *bus.Bus) (domain.Outcome[Out, E], error)

// Axon is a typed, reusable pipeline from In to Out. It pairs a composed executor
// with a Schematic grown in the same order.
//
// An Axon is immutable: Then, ThenAxon, Branch and With return new values.
// It is safe to Execute concurrently, each call supplying its own input,
// resources and Bus.
type Axon[In, Out, R, E any] struct {
	schematic *domain.Schematic
	exec      executor[In, Out, R, E]
	settings  *settings
}

// Start creates an identity circuit In -> In with a single Ingress node.
func Start[In, R, E any](label string, opts ...Option) *Axon[In, In, R, E] {
	s := newSettings(opts)
	s.circuit = label
	s.logger = s.logger.With("circuit", label)
	ingress := domain.Node{
		ID:           uuid.NewString(),
		Kind:         domain.NodeIngress,
		Label:        label,
		InputType:    typeName[In](),
		OutputType:   typeName[In](),
		ResourceType: typeName[R](),
	}
	return &Axon[In, In, R, E]{
		schematic: &domain.Schematic{
			SchemaVersion: domain.SchemaVersion,
			ID:            uuid.NewString(),
			Name:          label,
			Description:   s.description,
			GeneratedAt:   s.now().UTC(),
			Nodes:         []domain.Node{ingress},
		},
		exec: func(_ context.Context, _ *settings, in In, _ R, _ *bus.Bus) (domain.Outcome[In, E], error) {
			return domain.Next[In, E](in), nil
		},
		settings: s,
	}
}

// Then appends a transition that may change the value type.
//
// The new executor runs the previous chain and invokes t only when it produced
// Next. Any other outcome is returned unchanged and t is skipped.
func Then[In, Out, Next, R, E any](a *Axon[In, Out, R, E], t Transition[Out, Next, R, E]) *Axon[In, Next, R, E] {
	node := domain.Node{
		ID:           uuid.NewString(),
		Kind:         domain.NodeAtom,
		Label:        labelOf(t),
		Description:  descriptionOf(t),
		InputType:    typeName[Out](),
		OutputType:   typeName[Next](),
		ResourceType: typeName[R](),
	}
	step := func(ctx context.Context, _ *settings, in Out, res R, b *bus.Bus) (domain.Outcome[Next, E], error) {
		return t.Run(ctx, in, res, b), nil
	}
	return chain(a, node, step)
}

// Then appends a transition that keeps the value type, allowing fluent chains.
func (a *Axon[In, Out, R, E]) Then(t Transition[Out, Out, R, E]) *Axon[In, Out, R, E] {
	return Then(a, t)
}

// ThenAxon embeds sub as a single Subgraph node. Its nodes are still
// instrumented individually when sub runs.
func ThenAxon[In, Out, Next, R, E any](a *Axon[In, Out, R, E], sub *Axon[Out, Next, R, E]) *Axon[In, Next, R, E] {
	node := domain.Node{
		ID:           uuid.NewString(),
		Kind:         domain.NodeSubgraph,
		Label:        sub.schematic.Name,
		Description:  sub.schematic.Description,
		InputType:    typeName[Out](),
		OutputType:   typeName[Next](),
		ResourceType: typeName[R](),
		Subgraph:     sub.schematic.Clone(),
	}
	return chain(a, node, sub.exec)
}

func chain[In, Out, Next, R, E any](a *Axon[In, Out, R, E], node domain.Node, step executor[Out, Next, R, E]) *Axon[In, Next, R, E] {
	s := a.schematic.Clone()
	if last, ok := s.LastNode(); ok {
		s.Edges = append(s.Edges, domain.Edge{From: last.ID, To: node.ID, Kind: domain.EdgeLinear, Label: "Next"})
	}
	s.Nodes = append(s.Nodes, node)

	prev := a.exec
	exec := func(ctx context.Context, st *settings, in In, res R, b *bus.Bus) (domain.Outcome[Next, E], error) {
		out, err := prev(ctx, st, in, res, b)
		if err != nil {
			return domain.Outcome[Next, E]{}, err
		}
		v, ok := out.Value()
		if !ok {
			return domain.Propagate[Out, Next](out), nil
		}
		if err := ctx.Err(); err != nil {
			return domain.Outcome[Next, E]{}, err
		}
		return instrument(ctx, st, node, b, func(ctx context.Context) (domain.Outcome[Next, E], error) {
			return step(ctx, st, v, res, b)
		})
	}
	return &Axon[In, Next, R, E]{schematic: s, exec: exec, settings: a.settings}
}

// Branch annotates the schematic with a Synapse node and a Branch edge labelled
// with branchID. It does not change execution: branches happen only when a
// transition returns a Branch outcome.
func (a *Axon[In, Out, R, E]) Branch(branchID, label string) *Axon[In, Out, R, E] {
	s := a.schematic.Clone()
	synapse := domain.Node{
		ID:           uuid.NewString(),
		Kind:         domain.NodeSynapse,
		Label:        label,
		InputType:    typeName[Out](),
		OutputType:   typeName[Out](),
		ResourceType: typeName[R](),
	}
	if last, ok := s.LastNode(); ok {
		s.Edges = append(s.Edges, domain.Edge{
			From:     last.ID,
			To:       synapse.ID,
			Kind:     domain.EdgeBranch,
			BranchID: branchID,
			Label:    "Branch:" + branchID,
		})
	}
	s.Nodes = append(s.Nodes, synapse)
	return &Axon[In, Out, R, E]{schematic: s, exec: a.exec, settings: a.settings}
}

// With returns a copy of the circuit with additional options applied.
// The schematic and executor are shared with the receiver.
func (a *Axon[In, Out, R, E]) With(opts ...Option) *Axon[In, Out, R, E] {
	s := *a.settings
	s.apply(opts)
	schematic := a.schematic
	if s.description != a.settings.description {
		schematic = schematic.Clone()
		schematic.Description = s.description
	}
	return &Axon[In, Out, R, E]{schematic: schematic, exec: a.exec, settings: &s}
}

// Name returns the circuit name given to Start.
func (a *Axon[In, Out, R, E]) Name() string { return a.schematic.Name }

// Schematic returns a read-only copy of the circuit structure.
func (a *Axon[In, Out, R, E]) Schematic() *domain.Schematic {
	return a.schematic.Clone()
}
