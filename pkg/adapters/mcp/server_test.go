package mcp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/inspect"
	"github.com/aretw0/axon/pkg/observability"
)

type source struct{ s *domain.Schematic }

func (s source) Name() string                  { return s.s.Name }
func (s source) Schematic() *domain.Schematic { return s.s.Clone() }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.json")
	require.NoError(t, fsutil.WriteJSON(path, domain.NewTimeline(
		domain.NodeEnter("in", "orders", time.UnixMilli(1)),
	)))

	reg := observability.NewStatsRegistry()
	reg.Record(observability.Decision{Forced: true, Exported: true}, observability.ModeOverwrite, observability.PolicyFaultOnly)

	catalog := inspect.New(
		inspect.WithCircuits(source{&domain.Schematic{
			Name:  "orders",
			Nodes: []domain.Node{{ID: "in", Kind: domain.NodeIngress, Label: "orders"}},
		}}),
		inspect.WithTimelineFile(path),
		inspect.WithStatsRegistry(reg),
	)
	return NewServer(catalog, nil)
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGetSchematic(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleGetSchematic(context.Background(), callTool(map[string]any{"circuit": "orders"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"kind":"Ingress"`)

	res, err = s.handleGetSchematic(context.Background(), callTool(map[string]any{"circuit": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleGetSchematic(context.Background(), callTool(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRenderMermaid(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleRenderMermaid(context.Background(), callTool(map[string]any{"circuit": "orders", "overlay": true}))
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, `n_in(("orders"))`)
	assert.Contains(t, out, "class n_in visited;")
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		uri      string
		read     func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)
		contains string
	}{
		{uriCircuits, s.readCircuits, `"orders"`},
		{uriStats, s.readStats, `"forced_exports":1`},
		{uriTimeline, s.readTimeline, `"node_enter"`},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			var req mcp.ReadResourceRequest
			req.Params.URI = tt.uri
			contents, err := tt.read(ctx, req)
			require.NoError(t, err)
			require.Len(t, contents, 1)
			assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, tt.contains)
		})
	}
}
