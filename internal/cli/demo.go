package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/aretw0/axon"
	"github.com/aretw0/axon/internal/presentation/tui"
	inspector "github.com/aretw0/axon/pkg/adapters/http"
	"github.com/aretw0/axon/pkg/adapters/middleware"
	"github.com/aretw0/axon/pkg/adapters/redis"
	"github.com/aretw0/axon/pkg/adapters/sqlite"
	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/config"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/inspect"
	"github.com/aretw0/axon/pkg/observability"
	"github.com/aretw0/axon/pkg/ports"
	"github.com/aretw0/axon/pkg/std"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrUnknownSKU      = errors.New("unknown sku")
)

// Order is the demo circuit input.
type Order struct {
	ID  string
	SKU string
	Qty int
}

// Invoice is the demo circuit output.
type Invoice struct {
	OrderID string
	SKU     string
	Qty     int
	Total   float64
}

// Catalog is the read-only resources bundle shared by every step.
type Catalog struct {
	Stock  map[string]int
	Prices map[string]float64
}

// Discount is an optional per-execution Bus value applied by the pricing step.
type Discount struct {
	Percent float64
}

// DefaultCatalog stocks the demo store.
func DefaultCatalog() Catalog {
	return Catalog{
		Stock:  map[string]int{"book": 10, "lamp": 2, "desk": 0, "pen": 100},
		Prices: map[string]float64{"book": 12.5, "lamp": 40, "desk": 250},
	}
}

// NewOrderCircuit composes the demo pipeline:
// Validate -> Reserve -> [out_of_stock?] -> Price -> Payment(Authorize -> Log).
func NewOrderCircuit(logger *slog.Logger, opts ...axon.Option) *axon.Axon[Order, Invoice, Catalog, error] {
	validate := axon.Describe(axon.Named("Validate", func(_ context.Context, o Order, _ Catalog, _ *bus.Bus) domain.Outcome[Order, error] {
		if o.Qty <= 0 {
			return domain.Fault[Order](fmt.Errorf("order %s: %w", o.ID, ErrInvalidQuantity))
		}
		return domain.Next[Order, error](o)
	}), "Rejects orders without a positive quantity")

	reserve := axon.Named("Reserve", func(_ context.Context, o Order, c Catalog, _ *bus.Bus) domain.Outcome[Order, error] {
		if c.Stock[o.SKU] < o.Qty {
			return domain.Branch[Order, error]("out_of_stock", map[string]any{"sku": o.SKU, "requested": o.Qty, "available": c.Stock[o.SKU]})
		}
		return domain.Next[Order, error](o)
	})

	price := axon.Named("Price", func(_ context.Context, o Order, c Catalog, b *bus.Bus) domain.Outcome[Invoice, error] {
		unit, ok := c.Prices[o.SKU]
		if !ok {
			return domain.Fault[Invoice](fmt.Errorf("%w: %s", ErrUnknownSKU, o.SKU))
		}
		total := unit * float64(o.Qty)
		if d, ok := bus.Get[Discount](b); ok {
			total *= 1 - d.Percent/100
		}
		return domain.Next[Invoice, error](Invoice{OrderID: o.ID, SKU: o.SKU, Qty: o.Qty, Total: total})
	})

	payment := axon.Start[Invoice, Catalog, error]("Payment", opts...).
		Then(std.RandomBranch[Invoice, Catalog, error]{Probability: 0.9, Target: "fraud_review"}).
		Then(std.Log[Invoice, Catalog, error]{Message: "payment authorised", Level: "debug", Logger: logger})

	checkoutOpts := append([]axon.Option{axon.WithDescription("Demo order pipeline")}, opts...)
	checkout := axon.Start[Order, Catalog, error]("Orders", checkoutOpts...).
		Then(validate).
		Then(reserve).
		Branch("out_of_stock", "In stock?")

	return axon.ThenAxon(axon.Then(checkout, price), payment)
}

// SampleOrders returns n orders cycling through success, branch and fault cases.
func SampleOrders(n int) []Order {
	base := []Order{
		{SKU: "book", Qty: 2},
		{SKU: "lamp", Qty: 1},
		{SKU: "desk", Qty: 1},
		{SKU: "book", Qty: 0},
		{SKU: "pen", Qty: 5},
		{SKU: "lamp", Qty: 3},
	}
	out := make([]Order, n)
	for i := range out {
		o := base[i%len(base)]
		o.ID = fmt.Sprintf("ord-%04d", i+1)
		out[i] = o
	}
	return out
}

// DemoOptions configures RunDemo.
type DemoOptions struct {
	ConfigPath string
	Orders     int
	Discount   float64
	Trace      bool
	Raw        bool
	Out        io.Writer
}

// RunDemo runs the order pipeline with the process configuration: timeline
// export, sinks, metrics and, when enabled, the inspector, which keeps serving
// until ctx is done.
func RunDemo(ctx context.Context, opts DemoOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg)
	if err != nil {
		return err
	}

	sinks, archive, closeSinks, err := openSinks(cfg.Sinks, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	stats := observability.NewStatsRegistry(
		observability.WithStatsOutput(cfg.Timeline.StatsOutput),
		observability.WithStatsLogger(logger),
	)
	exporter := observability.NewExporter(cfg.Timeline,
		observability.WithStats(stats),
		observability.WithSinks(sinks...),
		observability.WithExportLogger(logger),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(observability.NewStatsCollector(stats))
	metrics := observability.NewNodeMetrics(registry)
	streams := inspector.NewStreamManager()

	circuitOpts := []axon.Option{
		axon.WithLogger(logger),
		axon.WithExporter(exporter),
		axon.WithLifecycleHooks(metrics.Hooks()),
		axon.WithLifecycleHooks(streams.Hooks()),
	}
	if opts.Trace {
		tp, err := newStdoutTracer(os.Stderr)
		if err != nil {
			return err
		}
		defer tp.Shutdown(context.WithoutCancel(ctx))
		circuitOpts = append(circuitOpts, axon.WithTracer(tp.Tracer("github.com/aretw0/axon/demo")))
	}

	circuit := NewOrderCircuit(logger, circuitOpts...)
	if err := runOrders(ctx, opts, circuit); err != nil {
		return err
	}

	render := Renderer(opts.Out, opts.Raw)
	if err := printMarkdown(opts.Out, render, tui.StatsMarkdown(stats.Snapshot())); err != nil {
		return err
	}

	if !cfg.Inspector.Enabled {
		return nil
	}
	catalogOpts := []inspect.Option{
		inspect.WithCircuits(circuit),
		inspect.FromConfig(cfg.Timeline),
		inspect.WithStatsRegistry(stats),
	}
	if archive != nil {
		catalogOpts = append(catalogOpts, inspect.WithArchive(archive))
	}
	srv := inspector.NewServer(inspect.New(catalogOpts...), inspector.WithGatherer(registry), inspector.WithLogger(logger))
	srv.Streams = streams
	return Serve(ctx, cfg.Inspector.Addr, srv.Handler(), logger)
}

func runOrders(ctx context.Context, opts DemoOptions, circuit *axon.Axon[Order, Invoice, Catalog, error]) error {
	catalog := DefaultCatalog()
	for _, o := range SampleOrders(max(opts.Orders, 1)) {
		b := bus.New()
		if opts.Discount > 0 {
			bus.Insert(b, Discount{Percent: opts.Discount})
		}
		out, err := circuit.Execute(ctx, o, catalog, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(opts.Out, "%s %-5s x%-3d %s\n", o.ID, o.SKU, o.Qty, describe(out))
	}
	return nil
}

func describe(out domain.Outcome[Invoice, error]) string {
	switch {
	case out.IsNext():
		inv, _ := out.Value()
		return fmt.Sprintf("paid %.2f", inv.Total)
	case out.IsFault():
		err, _ := out.Err()
		return "fault: " + err.Error()
	default:
		return out.Tag()
	}
}

// openSinks connects the configured timeline mirrors. The returned archive is
// the one the inspector reads history from, SQLite first.
func openSinks(cfg config.Sinks, logger *slog.Logger) ([]ports.TimelineSink, ports.TimelineArchive, func(), error) {
	var (
		sinks   []ports.TimelineSink
		archive ports.TimelineArchive
		closers []func() error
	)
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close timeline sink", "error", err)
			}
		}
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		redact, err := middleware.NewRedactMiddleware(cfg.Redact)
		if err != nil {
			return nil, nil, closeAll, err
		}
		mws = append(mws, redact)
	}

	if cfg.RedisURL != "" {
		r, err := redis.New(cfg.RedisURL)
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, r.Close)
		archive = middleware.Chain(r, mws...)
		sinks = append(sinks, archive)
	}
	if cfg.SQLitePath != "" {
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			closeAll()
			return nil, nil, func() {}, err
		}
		closers = append(closers, s.Close)
		archive = middleware.Chain(s, mws...)
		sinks = append(sinks, archive)
	}
	return sinks, archive, closeAll, nil
}

func newStdoutTracer(w io.Writer) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)), nil
}
