package observability

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/axon/internal/fsutil"
)

// Stats is a point-in-time copy of the sampling counters.
type Stats struct {
	TotalDecisions uint64    `json:"total_decisions"`
	Exported       uint64    `json:"exported"`
	Skipped        uint64    `json:"skipped"`
	SampledExports uint64    `json:"sampled_exports"`
	ForcedExports  uint64    `json:"forced_exports"`
	LastMode       WriteMode `json:"last_mode,omitempty"`
	LastPolicy     Policy    `json:"last_policy,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// StatsRegistry accumulates sampling decisions for the lifetime of a process.
// It is constructed once at bootstrap and shared by reference with every
// exporter. The lock is held only to update counters and copy a snapshot.
type StatsRegistry struct {
	mu    sync.Mutex
	stats Stats
	seq   uint64

	// writeMu orders side-file writes; written is the seq of the last one.
	writeMu sync.Mutex
	written uint64

	output string
	logger *slog.Logger
	now    func() time.Time
}

// StatsOption configures a StatsRegistry.
type StatsOption func(*StatsRegistry)

// WithStatsOutput writes the snapshot to path after every decision.
func WithStatsOutput(path string) StatsOption {
	return func(r *StatsRegistry) {
		r.output = path
	}
}

// WithStatsLogger sets the logger used for side-file failures.
func WithStatsLogger(logger *slog.Logger) StatsOption {
	return func(r *StatsRegistry) {
		r.logger = logger
	}
}

// WithStatsClock overrides the time source for LastUpdated.
func WithStatsClock(now func() time.Time) StatsOption {
	return func(r *StatsRegistry) {
		r.now = now
	}
}

// NewStatsRegistry creates an empty registry.
func NewStatsRegistry(opts ...StatsOption) *StatsRegistry {
	r := &StatsRegistry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Record counts one decision and returns the updated snapshot. The side file,
// when configured, is written after the lock is released; a failure is only
// logged.
func (r *StatsRegistry) Record(d Decision, mode WriteMode, policy Policy) Stats {
	r.mu.Lock()
	r.stats.TotalDecisions++
	switch {
	case d.Sampled:
		r.stats.Exported++
		r.stats.SampledExports++
	case d.Forced:
		r.stats.Exported++
		r.stats.ForcedExports++
	default:
		r.stats.Skipped++
	}
	r.stats.LastMode = mode
	r.stats.LastPolicy = policy
	r.stats.LastUpdated = r.now().UTC()
	r.seq++
	snap, seq := r.stats, r.seq
	r.mu.Unlock()

	if r.output != "" {
		r.writeSnapshot(snap, seq)
	}
	return snap
}

// writeSnapshot persists snap unless a newer snapshot was already written.
func (r *StatsRegistry) writeSnapshot(snap Stats, seq uint64) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if seq <= r.written {
		return
	}
	if err := fsutil.WriteJSON(r.output, snap); err != nil {
		r.logger.Warn("failed to write sampling stats", "path", r.output, "error", err)
		return
	}
	r.written = seq
}

// Snapshot returns a copy of the current counters.
func (r *StatsRegistry) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Reset zeroes every counter.
func (r *StatsRegistry) Reset() {
	r.mu.Lock()
	r.stats = Stats{}
	r.mu.Unlock()
}

// ReadStatsFile loads a snapshot previously written by a registry.
func ReadStatsFile(path string) (Stats, error) {
	var s Stats
	err := fsutil.ReadJSON(path, &s)
	return s, err
}
