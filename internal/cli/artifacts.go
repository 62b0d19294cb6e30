package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/internal/presentation/graph"
	"github.com/aretw0/axon/internal/presentation/tui"
	"github.com/aretw0/axon/internal/validator"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/observability"
	"github.com/aretw0/axon/pkg/ports"
	"github.com/aretw0/axon/pkg/projection"
	"github.com/aretw0/axon/pkg/replay"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	SchematicPath string
	TimelinePath  string
}

// Graph prints a persisted schematic as Mermaid, overlaid with a timeline when
// one is given.
func Graph(w io.Writer, opts GraphOptions) error {
	var s domain.Schematic
	if err := fsutil.ReadJSON(opts.SchematicPath, &s); err != nil {
		return fmt.Errorf("failed to load schematic: %w", err)
	}
	var overlay *graph.GraphOverlay
	if opts.TimelinePath != "" {
		tl, err := observability.ReadTimelineFile(opts.TimelinePath)
		if err != nil {
			return fmt.Errorf("failed to load timeline: %w", err)
		}
		overlay = graph.OverlayFromTimeline(tl.Snapshot())
	}
	_, err := fmt.Fprint(w, graph.GenerateMermaid(&s, overlay))
	return err
}

// Validate checks each persisted schematic and reports the first invalid one.
func Validate(w io.Writer, paths []string) error {
	for _, p := range paths {
		var s domain.Schematic
		if err := fsutil.ReadJSON(p, &s); err != nil {
			return fmt.Errorf("failed to load schematic %s: %w", p, err)
		}
		if err := validator.ValidateSchematic(&s); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		fmt.Fprintf(w, "%s: %d nodes, %d edges\n", p, len(s.Nodes), len(s.Edges))
	}
	return nil
}

// ShowTimeline prints a persisted timeline as a table.
func ShowTimeline(w io.Writer, path string, render func(string) (string, error)) error {
	tl, err := observability.ReadTimelineFile(path)
	if err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}
	return printMarkdown(w, render, tui.TimelineMarkdown(filepath.Base(path), tl.Snapshot()))
}

// ProjectOptions configures the timeline project command.
type ProjectOptions struct {
	TimelinePath  string
	OutDir        string
	Service       string
	Circuit       string
	SchematicPath string
}

// ProjectTimeline writes trace.public.json and trace.internal.json for a
// persisted timeline.
func ProjectTimeline(w io.Writer, opts ProjectOptions) error {
	tl, err := observability.ReadTimelineFile(opts.TimelinePath)
	if err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}
	popts := projection.Options{Service: opts.Service, Circuit: opts.Circuit}
	if opts.SchematicPath != "" {
		var s domain.Schematic
		if err := fsutil.ReadJSON(opts.SchematicPath, &s); err != nil {
			return fmt.Errorf("failed to load schematic: %w", err)
		}
		popts.Schematic = &s
		if popts.Circuit == "" {
			popts.Circuit = s.Name
		}
	}
	artifacts, err := projection.FromEvents(tl.Snapshot(), popts)
	if err != nil {
		return err
	}
	pub, internal, err := projection.WriteFiles(opts.OutDir, artifacts)
	if err != nil {
		return err
	}
	printSystemMessage(w, "Status %s. Wrote %s and %s.", artifacts.Public.OverallStatus, pub, internal)
	return nil
}

// ReplayOptions configures the replay command.
type ReplayOptions struct {
	TimelinePath string
	// Delay paces the frames. Zero prints them back to back.
	Delay time.Duration
}

// Replay steps through a persisted timeline, one frame per event.
func Replay(ctx context.Context, w io.Writer, opts ReplayOptions, render func(string) (string, error)) error {
	tl, err := observability.ReadTimelineFile(opts.TimelinePath)
	if err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}
	engine := replay.New(tl)
	if engine.Len() == 0 {
		return domain.ErrEmptyTimeline
	}

	var sb strings.Builder
	for {
		frame, ok := engine.Next()
		if !ok {
			break
		}
		if opts.Delay > 0 && frame.Index > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
		if opts.Delay > 0 {
			if err := printMarkdown(w, render, tui.FrameMarkdown(frame, engine.Len())); err != nil {
				return err
			}
			continue
		}
		sb.WriteString(tui.FrameMarkdown(frame, engine.Len()))
		sb.WriteString("\n")
	}
	if sb.Len() > 0 {
		return printMarkdown(w, render, sb.String())
	}
	return nil
}

// ShowStats prints a persisted sampling stats file.
func ShowStats(w io.Writer, path string, render func(string) (string, error)) error {
	s, err := observability.ReadStatsFile(path)
	if err != nil {
		return fmt.Errorf("failed to load sampling stats: %w", err)
	}
	return printMarkdown(w, render, tui.StatsMarkdown(s))
}

// schematicFile serves a persisted schematic as a circuit source.
type schematicFile struct {
	s *domain.Schematic
}

func (f schematicFile) Name() string                  { return f.s.Name }
func (f schematicFile) Schematic() *domain.Schematic { return f.s.Clone() }

// LoadSchematics reads schematic files for the inspector.
func LoadSchematics(paths []string) ([]ports.SchematicSource, error) {
	sources := make([]ports.SchematicSource, 0, len(paths))
	for _, p := range paths {
		var s domain.Schematic
		if err := fsutil.ReadJSON(p, &s); err != nil {
			return nil, fmt.Errorf("failed to load schematic %s: %w", p, err)
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		}
		if err := validator.ValidateSchematic(&s); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		sources = append(sources, schematicFile{s: &s})
	}
	return sources, nil
}
