package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/axon/pkg/domain"
)

// allCircuits is the subscription key receiving every circuit's events.
const allCircuits = "*"

// liveEvent is the SSE payload for one node visit or branch.
type liveEvent struct {
	Type       domain.EventType `json:"type"`
	Circuit    string           `json:"circuit"`
	NodeID     string           `json:"node_id"`
	Label      string           `json:"label,omitempty"`
	OutcomeTag string           `json:"outcome_tag,omitempty"`
	BranchID   string           `json:"branch_id,omitempty"`
	DurationMS int64            `json:"duration_ms,omitempty"`
	Timestamp  int64            `json:"timestamp"`
}

// StreamManager handles active SSE connections, keyed by circuit name.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

// Subscribe registers a buffered channel for circuit. An empty circuit
// subscribes to all of them.
func (sm *StreamManager) Subscribe(circuit string) (chan string, func()) {
	if circuit == "" {
		circuit = allCircuits
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 64)
	if _, ok := sm.subscribers[circuit]; !ok {
		sm.subscribers[circuit] = make(map[chan<- string]struct{})
	}
	sm.subscribers[circuit][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[circuit]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, circuit)
			}
		}
	}
}

// Broadcast delivers msg to the circuit's subscribers and to wildcard ones.
// Slow clients lose messages rather than block the execution.
func (sm *StreamManager) Broadcast(circuit string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{circuit, allCircuits} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "circuit", circuit)
			}
		}
	}
}

// Hooks returns lifecycle hooks that publish node exits and branches to
// subscribers. Attach them with axon.WithLifecycleHooks.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeExit: func(_ context.Context, e *domain.NodeEvent) {
			sm.publish(liveEvent{
				Type:       domain.EventNodeExit,
				Circuit:    e.Circuit,
				NodeID:     e.NodeID,
				Label:      e.Label,
				OutcomeTag: e.OutcomeTag,
				DurationMS: e.Duration.Milliseconds(),
				Timestamp:  e.Timestamp.UnixMilli(),
			})
		},
		OnBranch: func(_ context.Context, e *domain.BranchEvent) {
			sm.publish(liveEvent{
				Type:      domain.EventBranchTaken,
				Circuit:   e.Circuit,
				NodeID:    e.NodeID,
				BranchID:  e.BranchID,
				Timestamp: e.Timestamp.UnixMilli(),
			})
		},
	}
}

func (sm *StreamManager) publish(ev liveEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	sm.Broadcast(ev.Circuit, string(data))
}

// SubscribeEvents handles GET /events?circuit=name (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	circuit := r.URL.Query().Get("circuit")
	ch, cancel := s.Streams.Subscribe(circuit)
	defer cancel()
	s.logger.Info("SSE: Subscribing to node events", "circuit", circuit)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "circuit", circuit)
			return
		case <-keepAlive.C:
			fmt.Fprintf(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
