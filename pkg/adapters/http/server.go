// Package http serves the read-only inspector over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/axon"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/inspect"
)

// Server exposes a Catalog. Every route is GET; nothing is mutated.
type Server struct {
	Catalog  *inspect.Catalog
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

type Option func(*Server)

// WithGatherer serves gatherer at /metrics. Without it /metrics is not mounted.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over catalog.
func NewServer(catalog *inspect.Catalog, opts ...Option) *Server {
	s := &Server{
		Catalog: catalog,
		Streams: NewStreamManager(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/circuits", s.ListCircuits)
	r.Get("/circuits/{name}/schematic", s.GetSchematic)
	r.Get("/circuits/{name}/mermaid", s.GetMermaid)
	r.Get("/circuits/{name}/history", s.GetHistory)
	r.Get("/timeline", s.GetTimeline)
	r.Get("/projections/{kind}", s.GetProjection)
	r.Get("/stats", s.GetStats)
	r.Get("/events", s.SubscribeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"app":            "axon-inspector",
		"version":        strings.TrimSpace(axon.Version),
		"schema_version": domain.SchemaVersion,
	})
}

// ListCircuits handles GET /circuits.
func (s *Server) ListCircuits(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string][]string{"circuits": s.Catalog.Circuits()})
}

// GetSchematic handles GET /circuits/{name}/schematic.
func (s *Server) GetSchematic(w http.ResponseWriter, r *http.Request) {
	sc, err := s.Catalog.Schematic(chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, sc)
}

// GetMermaid handles GET /circuits/{name}/mermaid. ?overlay=true paints the
// persisted timeline onto the graph.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	overlay, _ := strconv.ParseBool(r.URL.Query().Get("overlay"))
	out, err := s.Catalog.Mermaid(chi.URLParam(r, "name"), overlay)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, out)
}

// GetHistory handles GET /circuits/{name}/history?limit=n.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := s.Catalog.History(r.Context(), chi.URLParam(r, "name"), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, records)
}

// GetTimeline handles GET /timeline.
func (s *Server) GetTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := s.Catalog.Timeline()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, tl)
}

// GetProjection handles GET /projections/{public|internal}.
func (s *Server) GetProjection(w http.ResponseWriter, r *http.Request) {
	kind := inspect.ProjectionKind(chi.URLParam(r, "kind"))
	if kind != inspect.ProjectionPublic && kind != inspect.ProjectionInternal {
		http.Error(w, "Unknown projection", http.StatusNotFound)
		return
	}
	raw, err := s.Catalog.Projection(kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// GetStats handles GET /stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Catalog.Stats()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, st)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Inspector response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrCircuitNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, inspect.ErrNoArchive),
		errors.Is(err, domain.ErrEmptyTimeline):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("Inspector request failed", "path", r.URL.Path, "error", err)
		http.Error(w, fmt.Sprintf("Inspector error: %v", err), http.StatusInternalServerError)
	}
}
