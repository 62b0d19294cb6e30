package axon

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

const tagCancelled = "Cancelled"

// instrument wraps one node visit with timeline events, lifecycle hooks, a span
// and debug logging. Step N's exit is always recorded before step N+1's enter.
func instrument[T, E any](ctx context.Context, s *settings, node domain.Node, b *bus.Bus, run func(context.Context) (domain.Outcome[T, E], error)) (domain.Outcome[T, E], error) {
	ctx, span := s.tracer.Start(ctx, "Node", trace.WithAttributes(
		attribute.String("axon.node.id", node.ID),
		attribute.String("axon.node.label", node.Label),
		attribute.String("axon.node.kind", string(node.Kind)),
	))
	defer span.End()

	tl, capturing := bus.TimelineOf(b)
	started := s.now()
	if capturing {
		tl.Push(domain.NodeEnter(node.ID, node.Label, started))
	}
	if s.hooks.OnNodeEnter != nil {
		s.hooks.OnNodeEnter(ctx, &domain.NodeEvent{Circuit: s.circuit, NodeID: node.ID, Label: node.Label, Kind: node.Kind, Timestamp: started})
	}

	out, err := run(ctx)

	finished := s.now()
	took := finished.Sub(started)
	tag := out.Tag()
	if err != nil {
		tag = tagCancelled
	}
	// Ingress and Subgraph nodes wrap steps that already reported their branch.
	branched := err == nil && out.IsBranch() && node.Kind != domain.NodeIngress && node.Kind != domain.NodeSubgraph
	if capturing {
		tl.Push(domain.NodeExit(node.ID, tag, took, finished))
		if branched {
			tl.Push(domain.BranchTaken(out.ID(), finished))
		}
	}
	if s.hooks.OnNodeExit != nil {
		s.hooks.OnNodeExit(ctx, &domain.NodeEvent{
			Circuit:    s.circuit,
			NodeID:     node.ID,
			Label:      node.Label,
			Kind:       node.Kind,
			OutcomeTag: tag,
			Duration:   took,
			Timestamp:  finished,
		})
	}
	if branched && s.hooks.OnBranch != nil {
		s.hooks.OnBranch(ctx, &domain.BranchEvent{Circuit: s.circuit, NodeID: node.ID, BranchID: out.ID(), Timestamp: finished})
	}

	span.SetAttributes(attribute.String("axon.outcome", tag))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case out.IsFault():
		span.SetStatus(codes.Error, "fault")
	default:
		span.SetStatus(codes.Ok, tag)
	}

	s.logger.DebugContext(ctx, "node visited",
		"node_id", node.ID,
		"label", node.Label,
		"outcome", tag,
		"duration", took,
	)
	return out, err
}
