// Package replay walks a persisted timeline one event at a time.
package replay

import "github.com/aretw0/axon/pkg/domain"

// Frame is one replay step. NodeID is empty for branch events, which happen
// between nodes.
type Frame struct {
	Index  int
	NodeID string
	Event  domain.TimelineEvent
}

// Engine is a cursor over a sorted copy of a timeline. It is not safe for
// concurrent use.
type Engine struct {
	events []domain.TimelineEvent
	cursor int
}

// New creates an engine positioned before the first event.
func New(tl *domain.Timeline) *Engine {
	return &Engine{events: tl.Snapshot()}
}

// Next advances by one event. It returns false once the timeline is exhausted.
func (e *Engine) Next() (Frame, bool) {
	if e.cursor >= len(e.events) {
		return Frame{}, false
	}
	ev := e.events[e.cursor]
	f := Frame{Index: e.cursor, Event: ev}
	if ev.Type != domain.EventBranchTaken {
		f.NodeID = ev.NodeID
	}
	e.cursor++
	return f, true
}

// Reset rewinds to the first event.
func (e *Engine) Reset() { e.cursor = 0 }

// Len returns the number of events.
func (e *Engine) Len() int { return len(e.events) }

// Remaining returns the number of events not yet replayed.
func (e *Engine) Remaining() int { return len(e.events) - e.cursor }
