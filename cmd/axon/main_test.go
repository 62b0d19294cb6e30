package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/internal/cli"
	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/internal/logging"
	"github.com/aretw0/axon/pkg/bus"
	"github.com/aretw0/axon/pkg/domain"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, run(t, "version"), "axon version ")
}

func TestArtifactCommands(t *testing.T) {
	dir := t.TempDir()
	circuit := cli.NewOrderCircuit(logging.NewNop())
	schematicPath := filepath.Join(dir, "schematic.json")
	require.NoError(t, fsutil.WriteJSON(schematicPath, circuit.Schematic()))

	tl := domain.NewTimeline()
	b := bus.New()
	bus.AttachTimeline(b, tl)
	_, err := circuit.Execute(context.Background(), cli.Order{ID: "1", SKU: "book", Qty: 0}, cli.DefaultCatalog(), b)
	require.NoError(t, err)
	timelinePath := filepath.Join(dir, "timeline.json")
	require.NoError(t, fsutil.WriteJSON(timelinePath, tl))

	assert.Contains(t, run(t, "validate", schematicPath), "Schematic is valid!")
	assert.Contains(t, run(t, "graph", schematicPath, "--timeline", timelinePath), "class ")
	assert.Contains(t, run(t, "timeline", "show", timelinePath, "--raw"), "Fault in")
	assert.Contains(t, run(t, "timeline", "project", timelinePath, "--out", dir, "--schematic", schematicPath), "partial_outage")
	assert.Contains(t, run(t, "replay", timelinePath, "--raw"), "Step 1 of")
}
