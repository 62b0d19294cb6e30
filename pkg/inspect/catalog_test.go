package inspect_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/inspect"
	"github.com/aretw0/axon/pkg/observability"
)

type source struct {
	name string
	s    *domain.Schematic
}

func (s source) Name() string                  { return s.name }
func (s source) Schematic() *domain.Schematic { return s.s.Clone() }

func checkout() source {
	return source{name: "checkout", s: &domain.Schematic{
		Name: "checkout",
		Nodes: []domain.Node{
			{ID: "in", Kind: domain.NodeIngress, Label: "checkout"},
			{ID: "validate", Kind: domain.NodeAtom, Label: "Validate"},
		},
		Edges: []domain.Edge{{From: "in", To: "validate", Kind: domain.EdgeLinear}},
	}}
}

func TestCatalog_Circuits(t *testing.T) {
	c := inspect.New(inspect.WithCircuits(checkout(), source{name: "audit", s: &domain.Schematic{}}))
	assert.Equal(t, []string{"audit", "checkout"}, c.Circuits())

	s, err := c.Schematic("checkout")
	require.NoError(t, err)
	assert.Len(t, s.Nodes, 2)

	_, err = c.Schematic("missing")
	assert.ErrorIs(t, err, domain.ErrCircuitNotFound)
}

func TestCatalog_MermaidOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeline.json")
	require.NoError(t, fsutil.WriteJSON(path, domain.NewTimeline(
		domain.NodeEnter("validate", "Validate", time.UnixMilli(1)),
	)))

	c := inspect.New(inspect.WithCircuits(checkout()), inspect.WithTimelineFile(path))

	plain, err := c.Mermaid("checkout", false)
	require.NoError(t, err)
	assert.NotContains(t, plain, "classDef")

	overlaid, err := c.Mermaid("checkout", true)
	require.NoError(t, err)
	assert.Contains(t, overlaid, "class n_validate visited;")
}

func TestCatalog_TimelineFallsBackToRotated(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "timeline.json")
	w := observability.NewFileWriter(base, observability.ModeRotate, 0, 0, nil)
	_, err := w.Write([]domain.TimelineEvent{domain.NodeEnter("a", "A", time.UnixMilli(1))})
	require.NoError(t, err)

	tl, err := inspect.New(inspect.WithTimelineFile(base)).Timeline()
	require.NoError(t, err)
	assert.Equal(t, 1, tl.Len())
}

func TestCatalog_MissingArtifacts(t *testing.T) {
	c := inspect.New()

	_, err := c.Timeline()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = c.Projection(inspect.ProjectionPublic)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = c.Stats()
	assert.ErrorIs(t, err, fs.ErrNotExist)
	_, err = c.History(context.Background(), "checkout", 1)
	assert.ErrorIs(t, err, inspect.ErrNoArchive)
}

func TestCatalog_StatsPrefersLiveRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.json")
	require.NoError(t, fsutil.WriteJSON(path, observability.Stats{TotalDecisions: 9}))

	fromFile := inspect.New(inspect.WithStatsFile(path))
	s, err := fromFile.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), s.TotalDecisions)

	reg := observability.NewStatsRegistry()
	reg.Record(observability.Decision{Sampled: true, Exported: true}, observability.ModeAppend, observability.PolicyDefault)
	live := inspect.New(inspect.WithStatsFile(path), inspect.WithStatsRegistry(reg))
	s, err = live.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.TotalDecisions)
}

func TestCatalog_Projection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trace.public.json"), []byte(`{"status":"operational"}`), 0o644))

	c := inspect.New(inspect.FromConfig(observability.Config{Projections: dir}))
	raw, err := c.Projection(inspect.ProjectionPublic)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"operational"}`, string(raw))

	_, err = c.Projection("other")
	assert.Error(t, err)
}
