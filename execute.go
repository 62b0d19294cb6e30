package axon

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/observability"
)

// activeExecution marks a Bus that is already inside an Execute call.
type activeExecution struct{}

// Execute runs the circuit on one input.
//
// The returned Outcome is whatever the last step produced, or the first
// non-Next outcome that short-circuited the chain. The error is non-nil only
// when ctx ended before the chain finished; the remaining steps are abandoned
// and nothing is rolled back.
//
// When capture is active, the Ingress node's enter/exit events bracket the whole
// call. After the outermost call on a Bus, the configured exporter decides once
// whether to persist the timeline. A timeline attached for that decision is
// detached again; a caller-supplied one stays on the Bus.
func (a *Axon[In, Out, R, E]) Execute(ctx context.Context, in In, res R, b *bus.Bus) (domain.Outcome[Out, E], error) {
	if b == nil {
		b = bus.New()
	}
	s := a.settings

	outermost := !bus.Contains[activeExecution](b)
	if outermost {
		bus.Insert(b, activeExecution{})
		defer bus.Remove[activeExecution](b)
	}

	tl, capturing := bus.TimelineOf(b)
	fresh := false
	if !capturing && outermost && s.exporter.Enabled() {
		tl = domain.NewTimeline()
		bus.AttachTimeline(b, tl)
		fresh, capturing = true, true
	}

	ctx, span := s.tracer.Start(ctx, "Circuit", trace.WithAttributes(
		attribute.String("axon.circuit", a.schematic.Name),
		attribute.String("axon.bus.id", b.ID()),
	))
	defer span.End()

	ingress := a.schematic.Nodes[0]
	out, err := instrument(ctx, s, ingress, b, func(ctx context.Context) (domain.Outcome[Out, E], error) {
		return a.exec(ctx, s, in, res, b)
	})

	kind, tag := out.Kind(), out.Tag()
	if err != nil {
		kind, tag = domain.KindFault, tagCancelled
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "circuit abandoned", "bus_id", b.ID(), "error", err)
	} else {
		span.SetAttributes(attribute.String("axon.outcome", tag))
	}

	if outermost && capturing && s.exporter.Enabled() {
		s.exporter.Decide(context.WithoutCancel(ctx), observability.Execution{
			Circuit:    a.schematic.Name,
			BusID:      b.ID(),
			Outcome:    kind,
			OutcomeTag: tag,
			Timeline:   tl,
			Schematic:  a.schematic,
		})
	}
	if fresh {
		bus.DetachTimeline(b)
	}
	return out, err
}
