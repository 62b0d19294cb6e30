package projection

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/axon/internal/fsutil"
	"github.com/aretw0/axon/pkg/domain"
)

// File names written by WriteFiles.
const (
	PublicFile   = "trace.public.json"
	InternalFile = "trace.internal.json"
)

// Status is the health classification of a circuit over a window.
type Status string

const (
	StatusOperational   Status = "operational"
	StatusDegraded      Status = "degraded"
	StatusPartialOutage Status = "partial_outage"
)

// degradedThreshold is the error rate at or above which a faulting circuit is a partial outage.
const degradedThreshold = 0.1

// Options describe the projected execution.
type Options struct {
	Service string
	Circuit string
	Version string
	TraceID string
	// Schematic resolves node kinds. Nodes it does not know are reported as Atom.
	Schematic *domain.Schematic
}

// CircuitStatus is the public health row of one circuit.
type CircuitStatus struct {
	Name         string  `json:"name"`
	Status       Status  `json:"status"`
	SuccessRate  float64 `json:"success_rate"`
	ErrorRate    float64 `json:"error_rate"`
	P95LatencyMS float64 `json:"p95_latency_ms"`
}

// Public is safe to publish on a status page.
type Public struct {
	ServiceName   string          `json:"service_name"`
	WindowStart   time.Time       `json:"window_start"`
	WindowEnd     time.Time       `json:"window_end"`
	OverallStatus Status          `json:"overall_status"`
	Circuits      []CircuitStatus `json:"circuits"`
}

// NodeRow is one completed node visit.
type NodeRow struct {
	NodeID        string          `json:"node_id"`
	Label         string          `json:"label"`
	Kind          domain.NodeKind `json:"kind"`
	EnteredAt     time.Time       `json:"entered_at"`
	ExitedAt      time.Time       `json:"exited_at"`
	LatencyMS     float64         `json:"latency_ms"`
	OutcomeType   string          `json:"outcome_type"`
	BranchID      string          `json:"branch_id,omitempty"`
	ErrorCode     string          `json:"error_code,omitempty"`
	ErrorCategory string          `json:"error_category,omitempty"`
}

// Summary aggregates an internal projection.
type Summary struct {
	NodeCount   int `json:"node_count"`
	FaultCount  int `json:"fault_count"`
	BranchCount int `json:"branch_count"`
}

// Internal is the detailed per-node trace for operators.
type Internal struct {
	TraceID        string    `json:"trace_id"`
	CircuitID      string    `json:"circuit_id"`
	CircuitVersion string    `json:"circuit_version,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Nodes          []NodeRow `json:"nodes"`
	Summary        Summary   `json:"summary"`
}

// Artifacts pairs both projections of one timeline.
type Artifacts struct {
	Public   Public   `json:"public"`
	Internal Internal `json:"internal"`
}

type entered struct {
	label string
	at    int64
}

// FromEvents projects a timeline. It returns domain.ErrEmptyTimeline when
// there is nothing to project.
func FromEvents(events []domain.TimelineEvent, opts Options) (*Artifacts, error) {
	if len(events) == 0 {
		return nil, domain.ErrEmptyTimeline
	}
	if opts.TraceID == "" {
		opts.TraceID = "generated-from-timeline"
	}

	enters := make(map[string]entered)
	var (
		rows                    []NodeRow
		latencies               []float64
		faults, branches, taken int
		minTS                   int64 = math.MaxInt64
		maxTS                   int64
	)

	for _, ev := range events {
		switch ev.Type {
		case domain.EventNodeEnter:
			enters[ev.NodeID] = entered{label: ev.Label, at: ev.Timestamp}
			minTS = min(minTS, ev.Timestamp)
			maxTS = max(maxTS, ev.Timestamp)
		case domain.EventNodeExit:
			in, ok := enters[ev.NodeID]
			if !ok {
				in = entered{label: "unknown", at: ev.Timestamp}
			}
			minTS = min(minTS, in.at)
			maxTS = max(maxTS, ev.Timestamp)
			latencies = append(latencies, float64(ev.DurationMS))

			d := describe(ev.OutcomeTag)
			row := NodeRow{
				NodeID:      ev.NodeID,
				Label:       in.label,
				Kind:        kindOf(opts.Schematic, ev.NodeID),
				EnteredAt:   time.UnixMilli(in.at).UTC(),
				ExitedAt:    time.UnixMilli(ev.Timestamp).UTC(),
				LatencyMS:   float64(ev.DurationMS),
				OutcomeType: ev.OutcomeTag,
				BranchID:    d.branchID,
			}
			if d.fault {
				faults++
				row.ErrorCode = "timeline_fault"
				row.ErrorCategory = "runtime"
			}
			if d.branch {
				branches++
			}
			rows = append(rows, row)
		case domain.EventBranchTaken:
			taken++
			minTS = min(minTS, ev.Timestamp)
			maxTS = max(maxTS, ev.Timestamp)
		}
	}
	branches = max(branches, taken)

	slices.Sort(latencies)
	errorRate := 0.0
	if len(rows) > 0 {
		errorRate = float64(faults) / float64(len(rows))
	}
	status := classify(faults, errorRate)
	start, end := time.UnixMilli(minTS).UTC(), time.UnixMilli(maxTS).UTC()

	return &Artifacts{
		Public: Public{
			ServiceName:   opts.Service,
			WindowStart:   start,
			WindowEnd:     end,
			OverallStatus: status,
			Circuits: []CircuitStatus{{
				Name:         opts.Circuit,
				Status:       status,
				SuccessRate:  max(1-errorRate, 0),
				ErrorRate:    errorRate,
				P95LatencyMS: Percentile(latencies, 0.95),
			}},
		},
		Internal: Internal{
			TraceID:        opts.TraceID,
			CircuitID:      opts.Circuit,
			CircuitVersion: opts.Version,
			StartedAt:      start,
			FinishedAt:     end,
			Nodes:          rows,
			Summary:        Summary{NodeCount: len(rows), FaultCount: faults, BranchCount: branches},
		},
	}, nil
}

// WriteFiles writes both projections into dir and returns their paths.
func WriteFiles(dir string, a *Artifacts) (publicPath, internalPath string, err error) {
	publicPath = filepath.Join(dir, PublicFile)
	internalPath = filepath.Join(dir, InternalFile)
	if err := fsutil.WriteJSON(publicPath, a.Public); err != nil {
		return "", "", fmt.Errorf("failed to write public projection: %w", err)
	}
	if err := fsutil.WriteJSON(internalPath, a.Internal); err != nil {
		return "", "", fmt.Errorf("failed to write internal projection: %w", err)
	}
	return publicPath, internalPath, nil
}

// Percentile returns the nearest-rank value of sorted at p in [0,1], or 0 for no values.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Round(float64(len(sorted)-1) * p))
	return sorted[idx]
}

func classify(faults int, errorRate float64) Status {
	switch {
	case faults == 0:
		return StatusOperational
	case errorRate < degradedThreshold:
		return StatusDegraded
	default:
		return StatusPartialOutage
	}
}

type descriptor struct {
	fault    bool
	branch   bool
	branchID string
}

func describe(tag string) descriptor {
	lowered := strings.ToLower(tag)
	if strings.HasPrefix(lowered, "branch:") {
		_, id, _ := strings.Cut(tag, ":")
		return descriptor{branch: true, branchID: id}
	}
	return descriptor{
		fault:  strings.Contains(lowered, "fault") || strings.Contains(lowered, "error"),
		branch: lowered == "branch",
	}
}

func kindOf(s *domain.Schematic, nodeID string) domain.NodeKind {
	if s != nil {
		if n, ok := s.Node(nodeID); ok {
			return n.Kind
		}
	}
	return domain.NodeAtom
}
