package axon

import (
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/observability"
)

const instrumentationName = "github.com/aretw0/axon"

// settings is shared by every Axon derived from the same Start call.
// It is never mutated after construction; With returns a modified copy.
type settings struct {
	circuit     string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	tracer      trace.Tracer
	exporter    *observability.Exporter
	description string
	now         func() time.Time
}

// Option defines a functional option for configuring a circuit.
type Option func(*settings)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls accumulate.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithTracer sets the OpenTelemetry tracer used for circuit and node spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *settings) {
		s.tracer = tracer
	}
}

// WithExporter enables timeline capture and the sampling/export decision.
func WithExporter(e *observability.Exporter) Option {
	return func(s *settings) {
		s.exporter = e
	}
}

// WithDescription sets the schematic description.
func WithDescription(description string) Option {
	return func(s *settings) {
		s.description = description
	}
}

// WithClock overrides the time source used for timeline events.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	s.apply(opts)
	return s
}

func (s *settings) apply(opts []Option) {
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(instrumentationName)
	}
	if s.now == nil {
		s.now = time.Now
	}
}
