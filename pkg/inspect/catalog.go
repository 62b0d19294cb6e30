// Package inspect assembles the read-only view served by the inspector
// adapters: registered circuit schematics plus the artifacts written by the
// timeline exporter.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/aretw0/axon/internal/presentation/graph"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/observability"
	"github.com/aretw0/axon/pkg/ports"
	"github.com/aretw0/axon/pkg/projection"
)

// ErrNoArchive is returned by History when no archive is configured.
var ErrNoArchive = errors.New("no timeline archive configured")

// ProjectionKind selects one of the two projection files.
type ProjectionKind string

const (
	ProjectionPublic   ProjectionKind = "public"
	ProjectionInternal ProjectionKind = "internal"
)

// Catalog is safe for concurrent use. It never writes.
type Catalog struct {
	mu       sync.RWMutex
	circuits map[string]ports.SchematicSource

	timelinePath   string
	projectionsDir string
	statsPath      string
	stats          *observability.StatsRegistry
	archive        ports.TimelineArchive
}

type Option func(*Catalog)

// WithCircuits registers circuits by name.
func WithCircuits(sources ...ports.SchematicSource) Option {
	return func(c *Catalog) {
		for _, s := range sources {
			c.circuits[s.Name()] = s
		}
	}
}

// WithTimelineFile points at the exporter output. In rotate mode the newest
// rotated sibling is read.
func WithTimelineFile(path string) Option {
	return func(c *Catalog) {
		c.timelinePath = path
	}
}

// WithProjectionsDir points at the directory holding projection files.
func WithProjectionsDir(dir string) Option {
	return func(c *Catalog) {
		c.projectionsDir = dir
	}
}

// WithStatsRegistry serves live counters.
func WithStatsRegistry(r *observability.StatsRegistry) Option {
	return func(c *Catalog) {
		c.stats = r
	}
}

// WithStatsFile serves the counters persisted by another process. The live
// registry wins when both are set.
func WithStatsFile(path string) Option {
	return func(c *Catalog) {
		c.statsPath = path
	}
}

// WithArchive serves archived timelines per circuit.
func WithArchive(a ports.TimelineArchive) Option {
	return func(c *Catalog) {
		c.archive = a
	}
}

// FromConfig wires the artifact locations of an exporter configuration.
func FromConfig(cfg observability.Config) Option {
	return func(c *Catalog) {
		c.timelinePath = cfg.Output
		c.projectionsDir = cfg.Projections
		c.statsPath = cfg.StatsOutput
	}
}

// New creates a catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{circuits: make(map[string]ports.SchematicSource)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds or replaces a circuit.
func (c *Catalog) Register(s ports.SchematicSource) {
	c.mu.Lock()
	c.circuits[s.Name()] = s
	c.mu.Unlock()
}

// Circuits lists registered circuit names in order.
func (c *Catalog) Circuits() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.circuits))
	for name := range c.circuits {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Schematic returns a copy of the named circuit's structure.
func (c *Catalog) Schematic(name string) (*domain.Schematic, error) {
	c.mu.RLock()
	s, ok := c.circuits[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCircuitNotFound, name)
	}
	return s.Schematic(), nil
}

// Mermaid renders the named circuit, optionally overlaid with the persisted
// timeline. A missing timeline renders the bare graph.
func (c *Catalog) Mermaid(name string, overlay bool) (string, error) {
	s, err := c.Schematic(name)
	if err != nil {
		return "", err
	}
	var o *graph.GraphOverlay
	if overlay {
		if tl, err := c.Timeline(); err == nil {
			o = graph.OverlayFromTimeline(tl.Snapshot())
		}
	}
	return graph.GenerateMermaid(s, o), nil
}

// Timeline loads the persisted timeline.
func (c *Catalog) Timeline() (*domain.Timeline, error) {
	if c.timelinePath == "" {
		return nil, fmt.Errorf("timeline export disabled: %w", fs.ErrNotExist)
	}
	tl, err := observability.ReadTimelineFile(c.timelinePath)
	if !errors.Is(err, fs.ErrNotExist) {
		return tl, err
	}
	rotated, rerr := observability.RotatedFiles(c.timelinePath)
	if rerr != nil || len(rotated) == 0 {
		return nil, err
	}
	return observability.ReadTimelineFile(rotated[0])
}

// Projection returns the raw JSON of a projection file.
func (c *Catalog) Projection(kind ProjectionKind) ([]byte, error) {
	if c.projectionsDir == "" {
		return nil, fmt.Errorf("projections disabled: %w", fs.ErrNotExist)
	}
	var name string
	switch kind {
	case ProjectionPublic:
		name = projection.PublicFile
	case ProjectionInternal:
		name = projection.InternalFile
	default:
		return nil, fmt.Errorf("unknown projection %q", kind)
	}
	return os.ReadFile(filepath.Join(c.projectionsDir, name))
}

// Stats returns the live counters or, failing that, the persisted snapshot.
func (c *Catalog) Stats() (observability.Stats, error) {
	if c.stats != nil {
		return c.stats.Snapshot(), nil
	}
	if c.statsPath == "" {
		return observability.Stats{}, fmt.Errorf("sampling stats unavailable: %w", fs.ErrNotExist)
	}
	return observability.ReadStatsFile(c.statsPath)
}

// StatsRegistry returns the live registry, if any.
func (c *Catalog) StatsRegistry() *observability.StatsRegistry { return c.stats }

// History returns archived timelines for circuit, newest first.
func (c *Catalog) History(ctx context.Context, circuit string, limit int) ([]ports.ExportRecord, error) {
	if c.archive == nil {
		return nil, ErrNoArchive
	}
	return c.archive.Recent(ctx, circuit, limit)
}
