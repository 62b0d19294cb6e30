package domain

import (
	"context"
	"time"
)

// NodeEvent describes a node visit, passed to lifecycle hooks.
type NodeEvent struct {
	Circuit    string        `json:"circuit"`
	NodeID     string        `json:"node_id"`
	Label      string        `json:"label"`
	Kind       NodeKind      `json:"kind"`
	OutcomeTag string        `json:"outcome_tag,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// BranchEvent describes a Branch outcome produced by a node.
type BranchEvent struct {
	Circuit   string    `json:"circuit"`
	NodeID    string    `json:"node_id"`
	BranchID  string    `json:"branch_id"`
	Timestamp time.Time `json:"timestamp"`
}

// LifecycleHooks defines callbacks for circuit observability.
// OnNodeExit receives the outcome tag and elapsed time.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeExit  func(context.Context, *NodeEvent)
	OnBranch    func(context.Context, *BranchEvent)
}

// Merge combines two hook sets; both callbacks fire, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeExit:  chain(h.OnNodeExit, other.OnNodeExit),
		OnBranch:    chain(h.OnBranch, other.OnBranch),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, ev T) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
