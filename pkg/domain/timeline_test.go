package domain

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_SortIsStable(t *testing.T) {
	base := time.UnixMilli(1_700_000_000_000)
	tl := NewTimeline(
		NodeExit("b", "Next", 0, base.Add(2*time.Millisecond)),
		NodeEnter("a", "A", base),
		NodeEnter("b", "B", base.Add(2*time.Millisecond)),
	)

	tl.Sort()
	events := tl.Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventNodeEnter, events[0].Type)
	assert.Equal(t, EventNodeExit, events[1].Type, "equal timestamps keep recording order")
	assert.Equal(t, EventNodeEnter, events[2].Type)
}

func TestTimeline_SnapshotDoesNotMutate(t *testing.T) {
	tl := NewTimeline(
		TimelineEvent{Type: EventNodeEnter, NodeID: "late", Timestamp: 20},
		TimelineEvent{Type: EventNodeEnter, NodeID: "early", Timestamp: 10},
	)

	snap := tl.Snapshot()
	assert.Equal(t, "early", snap[0].NodeID)
	assert.Equal(t, "late", tl.Events()[0].NodeID)
}

func TestTimeline_MergeAndTruncate(t *testing.T) {
	tl := NewTimeline(
		TimelineEvent{Type: EventNodeEnter, NodeID: "a", Timestamp: 1},
		TimelineEvent{Type: EventNodeEnter, NodeID: "c", Timestamp: 3},
	)
	tl.Merge([]TimelineEvent{
		{Type: EventNodeEnter, NodeID: "b", Timestamp: 2},
		{Type: EventNodeEnter, NodeID: "d", Timestamp: 4},
	})

	ids := func() []string {
		var out []string
		for _, e := range tl.Events() {
			out = append(out, e.NodeID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids())

	tl.TruncateOldest(2)
	assert.Equal(t, []string{"c", "d"}, ids())

	tl.TruncateOldest(0)
	assert.Equal(t, 2, tl.Len())
}

func TestTimeline_ConcurrentPush(t *testing.T) {
	tl := NewTimeline()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tl.Push(TimelineEvent{Type: EventBranchTaken, BranchID: "x", Timestamp: int64(i)})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, tl.Len())
}

func TestSchematic_CloneIsDeep(t *testing.T) {
	inner := &Schematic{Name: "inner", Nodes: []Node{{ID: "i1", Kind: NodeIngress}}}
	s := &Schematic{
		Name:  "outer",
		Nodes: []Node{{ID: "n1", Kind: NodeIngress}, {ID: "n2", Kind: NodeSubgraph, Subgraph: inner}},
		Edges: []Edge{{From: "n1", To: "n2", Kind: EdgeLinear}},
	}

	c := s.Clone()
	c.Nodes[0].Label = "changed"
	c.Nodes[1].Subgraph.Nodes[0].Label = "changed"
	c.Edges[0].Label = "changed"

	assert.Empty(t, s.Nodes[0].Label)
	assert.Empty(t, inner.Nodes[0].Label)
	assert.Empty(t, s.Edges[0].Label)

	n, ok := s.Node("i1")
	require.True(t, ok)
	assert.Equal(t, NodeIngress, n.Kind)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnNodeEnter: func(_ context.Context, e *NodeEvent) { calls = append(calls, "a:"+e.NodeID) }}
	b := LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *NodeEvent) { calls = append(calls, "b:"+e.NodeID) },
		OnBranch:    func(_ context.Context, e *BranchEvent) { calls = append(calls, "branch:"+e.BranchID) },
	}

	h := a.Merge(b)
	h.OnNodeEnter(context.Background(), &NodeEvent{NodeID: "n"})
	h.OnBranch(context.Background(), &BranchEvent{BranchID: "x"})
	assert.Nil(t, h.OnNodeExit)
	assert.Equal(t, []string{"a:n", "b:n", "branch:x"}, calls)
}

func TestTimeline_JSON(t *testing.T) {
	tl := NewTimeline(TimelineEvent{Type: EventBranchTaken, BranchID: "x", Timestamp: 5})
	data, err := json.Marshal(tl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"type":"branch_taken","branch_id":"x","timestamp":5}]}`, string(data))

	empty, err := json.Marshal(NewTimeline())
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(empty))

	var back Timeline
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tl.Events(), back.Events())
}
