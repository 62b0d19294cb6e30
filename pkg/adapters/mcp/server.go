// Package mcp exposes the read-only inspector as Model Context Protocol
// resources and tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/axon"
	"github.com/aretw0/axon/pkg/inspect"
)

const (
	uriCircuits = "axon://circuits"
	uriStats    = "axon://stats"
	uriTimeline = "axon://timeline"
)

// Server wraps a Catalog and exposes it as an MCP Server.
type Server struct {
	catalog   *inspect.Catalog
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog *inspect.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		catalog: catalog,
		logger:  logger,
		mcpServer: server.NewMCPServer("axon-mcp", strings.TrimSpace(axon.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_schematic",
		mcp.WithDescription("Get the schematic (nodes and edges) of a registered circuit."),
		mcp.WithString("circuit", mcp.Required(), mcp.Description("Circuit name, as listed by axon://circuits")),
	), s.handleGetSchematic)

	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render a circuit as a Mermaid flowchart, optionally highlighting the last exported timeline."),
		mcp.WithString("circuit", mcp.Required(), mcp.Description("Circuit name")),
		mcp.WithBoolean("overlay", mcp.Description("Paint visited nodes from the persisted timeline")),
	), s.handleRenderMermaid)
}

func (s *Server) handleGetSchematic(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("circuit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sc, err := s.catalog.Schematic(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	jsonBytes, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleRenderMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("circuit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.catalog.Mermaid(name, request.GetBool("overlay", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(uriCircuits, "Registered circuits",
		mcp.WithMIMEType("application/json"),
	), s.readCircuits)
	s.mcpServer.AddResource(mcp.NewResource(uriStats, "Timeline sampling stats",
		mcp.WithMIMEType("application/json"),
	), s.readStats)
	s.mcpServer.AddResource(mcp.NewResource(uriTimeline, "Last exported timeline",
		mcp.WithMIMEType("application/json"),
	), s.readTimeline)
}

func (s *Server) readCircuits(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(uriCircuits, map[string][]string{"circuits": s.catalog.Circuits()})
}

func (s *Server) readStats(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	st, err := s.catalog.Stats()
	if err != nil {
		return nil, fmt.Errorf("failed to read sampling stats: %w", err)
	}
	return jsonResource(uriStats, st)
}

func (s *Server) readTimeline(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	tl, err := s.catalog.Timeline()
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	return jsonResource(uriTimeline, tl)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
