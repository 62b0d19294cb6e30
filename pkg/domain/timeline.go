package domain

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// EventType defines the category of a timeline event.
type EventType string

const (
	EventNodeEnter   EventType = "node_enter"
	EventNodeExit    EventType = "node_exit"
	EventBranchTaken EventType = "branch_taken"
)

// TimelineEvent is one entry of an execution trace. Timestamp is in unix milliseconds.
type TimelineEvent struct {
	Type       EventType `json:"type"`
	NodeID     string    `json:"node_id,omitempty"`
	Label      string    `json:"label,omitempty"`
	OutcomeTag string    `json:"outcome_tag,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	BranchID   string    `json:"branch_id,omitempty"`
	Timestamp  int64     `json:"timestamp"`
}

// Time returns the event timestamp as a time.Time.
func (e TimelineEvent) Time() time.Time { return time.UnixMilli(e.Timestamp) }

// NodeEnter builds a node_enter event.
func NodeEnter(nodeID, label string, at time.Time) TimelineEvent {
	return TimelineEvent{Type: EventNodeEnter, NodeID: nodeID, Label: label, Timestamp: at.UnixMilli()}
}

// NodeExit builds a node_exit event.
func NodeExit(nodeID, outcomeTag string, took time.Duration, at time.Time) TimelineEvent {
	return TimelineEvent{
		Type:       EventNodeExit,
		NodeID:     nodeID,
		OutcomeTag: outcomeTag,
		DurationMS: took.Milliseconds(),
		Timestamp:  at.UnixMilli(),
	}
}

// BranchTaken builds a branch_taken event.
func BranchTaken(branchID string, at time.Time) TimelineEvent {
	return TimelineEvent{Type: EventBranchTaken, BranchID: branchID, Timestamp: at.UnixMilli()}
}

// Timeline collects the events of one execution. Push is safe for concurrent use.
type Timeline struct {
	mu     sync.Mutex
	events []TimelineEvent
}

// NewTimeline returns a timeline seeded with events.
func NewTimeline(events ...TimelineEvent) *Timeline {
	return &Timeline{events: slices.Clone(events)}
}

// Push appends an event.
func (t *Timeline) Push(e TimelineEvent) {
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

// Sort orders events by timestamp. Events with equal timestamps keep their
// recording order.
func (t *Timeline) Sort() {
	t.mu.Lock()
	sortEvents(t.events)
	t.mu.Unlock()
}

// Events returns a copy of the events in recording order.
func (t *Timeline) Events() []TimelineEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

// Snapshot returns a timestamp-sorted copy, leaving the timeline untouched.
func (t *Timeline) Snapshot() []TimelineEvent {
	out := t.Events()
	sortEvents(out)
	return out
}

// Merge appends other's events and re-sorts.
func (t *Timeline) Merge(other []TimelineEvent) {
	t.mu.Lock()
	t.events = append(t.events, other...)
	sortEvents(t.events)
	t.mu.Unlock()
}

// TruncateOldest keeps only the most recent limit events. A limit of zero or less is a no-op.
func (t *Timeline) TruncateOldest(limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if limit <= 0 || len(t.events) <= limit {
		return
	}
	sortEvents(t.events)
	t.events = slices.Clone(t.events[len(t.events)-limit:])
}

type timelineJSON struct {
	Events []TimelineEvent `json:"events"`
}

// MarshalJSON encodes the timeline as {"events": [...]} in recording order.
func (t *Timeline) MarshalJSON() ([]byte, error) {
	events := t.Events()
	if events == nil {
		events = []TimelineEvent{}
	}
	return json.Marshal(timelineJSON{Events: events})
}

// UnmarshalJSON replaces the timeline's events with the decoded ones.
func (t *Timeline) UnmarshalJSON(data []byte) error {
	var raw timelineJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.mu.Lock()
	t.events = raw.Events
	t.mu.Unlock()
	return nil
}

func sortEvents(events []TimelineEvent) {
	slices.SortStableFunc(events, func(a, b TimelineEvent) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})
}
