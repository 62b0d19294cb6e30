package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/ports"
	"github.com/aretw0/axon/pkg/projection"
)

// Config holds the timeline export settings.
type Config struct {
	// Output enables capture. Empty disables it.
	Output     string    `mapstructure:"output" yaml:"output"`
	Mode       WriteMode `mapstructure:"mode" yaml:"mode"`
	SampleRate float64   `mapstructure:"sample_rate" yaml:"sample_rate"`
	Adaptive   Policy    `mapstructure:"adaptive" yaml:"adaptive"`
	// MaxEvents bounds append mode, dropping the oldest events. Zero keeps all.
	MaxEvents int `mapstructure:"max_events" yaml:"max_events"`
	// RotateKeep bounds the number of rotated files. Zero keeps all.
	RotateKeep  int    `mapstructure:"rotate_keep" yaml:"rotate_keep"`
	StatsOutput string `mapstructure:"stats_output" yaml:"stats_output"`
	// Projections, when set, receives trace.public.json and trace.internal.json.
	Projections string `mapstructure:"projections" yaml:"projections"`
	Service     string `mapstructure:"service" yaml:"service"`
}

// DefaultConfig returns capture disabled, full sampling and the default policy.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeOverwrite,
		SampleRate: 1.0,
		Adaptive:   PolicyDefault,
	}
}

// Validate rejects settings that cannot be honoured.
func (c Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("timeline sample rate %v out of range [0,1]", c.SampleRate)
	}
	if _, err := ParseWriteMode(string(c.Mode)); err != nil {
		return err
	}
	if c.MaxEvents < 0 || c.RotateKeep < 0 {
		return fmt.Errorf("timeline max_events and rotate_keep must not be negative")
	}
	return nil
}

// Execution describes a finished outermost execution awaiting a decision.
type Execution struct {
	Circuit    string
	BusID      string
	Outcome    domain.Kind
	OutcomeTag string
	Timeline   *domain.Timeline
	Schematic  *domain.Schematic
}

// Decision is the result of one sample/export decision.
type Decision struct {
	Bucket   int    `json:"bucket"`
	Sampled  bool   `json:"sampled"`
	Forced   bool   `json:"forced"`
	Exported bool   `json:"exported"`
	Path     string `json:"path,omitempty"`
}

// Exporter makes the per-execution sample/export decision and persists exported
// timelines. It is safe for concurrent use.
type Exporter struct {
	cfg    Config
	writer *FileWriter
	stats  *StatsRegistry
	sinks  []ports.TimelineSink
	logger *slog.Logger
	now    func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithStats shares a registry across exporters. Without it each exporter gets its own.
func WithStats(r *StatsRegistry) ExporterOption {
	return func(e *Exporter) {
		e.stats = r
	}
}

// WithSinks mirrors every exported timeline to sinks.
func WithSinks(sinks ...ports.TimelineSink) ExporterOption {
	return func(e *Exporter) {
		e.sinks = append(e.sinks, sinks...)
	}
}

// WithExportLogger sets the logger used for warnings.
func WithExportLogger(logger *slog.Logger) ExporterOption {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// WithExportClock overrides the time source used for rotation and records.
func WithExportClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		e.now = now
	}
}

// NewExporter creates an exporter. Invalid modes and out-of-range rates are
// normalised; call Config.Validate first to reject them instead.
func NewExporter(cfg Config, opts ...ExporterOption) *Exporter {
	e := &Exporter{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if e.now == nil {
		e.now = time.Now
	}
	if mode, err := ParseWriteMode(string(cfg.Mode)); err == nil {
		cfg.Mode = mode
	} else {
		e.logger.Warn("unknown timeline write mode, using overwrite", "mode", cfg.Mode)
		cfg.Mode = ModeOverwrite
	}
	cfg.Adaptive = ParsePolicy(string(cfg.Adaptive))
	cfg.SampleRate = min(max(cfg.SampleRate, 0), 1)
	if e.stats == nil {
		e.stats = NewStatsRegistry(WithStatsOutput(cfg.StatsOutput), WithStatsLogger(e.logger))
	}
	e.cfg = cfg
	e.writer = NewFileWriter(cfg.Output, cfg.Mode, cfg.MaxEvents, cfg.RotateKeep, e.logger)
	e.writer.now = e.now
	return e
}

// Enabled reports whether capture is on. A nil Exporter is disabled.
func (e *Exporter) Enabled() bool {
	return e != nil && e.cfg.Output != ""
}

// Config returns the normalised configuration.
func (e *Exporter) Config() Config { return e.cfg }

// Stats returns the registry counting this exporter's decisions.
func (e *Exporter) Stats() *StatsRegistry { return e.stats }

// Decide makes the sample/export decision for one execution, persists the
// timeline if exported, and records the decision. It never fails: I/O errors
// are logged as warnings.
func (e *Exporter) Decide(ctx context.Context, x Execution) Decision {
	d := Decision{Bucket: Bucket(x.BusID)}
	d.Sampled = float64(d.Bucket)/BucketCount < e.cfg.SampleRate
	d.Forced = !d.Sampled && e.cfg.Adaptive.Forces(x.Outcome)
	d.Exported = d.Sampled || d.Forced

	if d.Exported && x.Timeline != nil {
		d.Path = e.export(ctx, x, d)
	}

	e.stats.Record(d, e.cfg.Mode, e.cfg.Adaptive)
	e.logger.DebugContext(ctx, "timeline decision",
		"circuit", x.Circuit,
		"bus_id", x.BusID,
		"outcome", x.OutcomeTag,
		"sampled", d.Sampled,
		"forced", d.Forced,
		"exported", d.Exported,
	)
	return d
}

func (e *Exporter) export(ctx context.Context, x Execution, d Decision) string {
	events := x.Timeline.Snapshot()

	path, err := e.writer.Write(events)
	if err != nil {
		e.logger.WarnContext(ctx, "failed to export timeline", "path", e.cfg.Output, "mode", e.cfg.Mode, "error", err)
		path = ""
	}

	if e.cfg.Projections != "" {
		e.project(ctx, x, events)
	}

	if len(e.sinks) > 0 {
		rec := ports.ExportRecord{
			Circuit:    x.Circuit,
			BusID:      x.BusID,
			OutcomeTag: x.OutcomeTag,
			Forced:     d.Forced,
			ExportedAt: e.now().UTC(),
			Events:     events,
		}
		for _, sink := range e.sinks {
			if err := sink.Export(ctx, rec); err != nil {
				e.logger.WarnContext(ctx, "timeline sink failed", "sink", fmt.Sprintf("%T", sink), "error", err)
			}
		}
	}
	return path
}

func (e *Exporter) project(ctx context.Context, x Execution, events []domain.TimelineEvent) {
	artifacts, err := projection.FromEvents(events, projection.Options{
		Service:   e.cfg.Service,
		Circuit:   x.Circuit,
		TraceID:   x.BusID,
		Schematic: x.Schematic,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "failed to project timeline", "error", err)
		return
	}
	if _, _, err := projection.WriteFiles(e.cfg.Projections, artifacts); err != nil {
		e.logger.WarnContext(ctx, "failed to write projections", "dir", e.cfg.Projections, "error", err)
	}
}
