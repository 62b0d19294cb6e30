package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/pkg/domain"
)

func TestStatsCollector(t *testing.T) {
	stats := NewStatsRegistry()
	stats.Record(Decision{Sampled: true, Exported: true}, ModeOverwrite, PolicyDefault)
	stats.Record(Decision{}, ModeOverwrite, PolicyDefault)
	stats.Record(Decision{}, ModeOverwrite, PolicyDefault)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewStatsCollector(stats)))

	count, err := testutil.GatherAndCount(reg, "axon_timeline_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "axon_timeline_decisions_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			values[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"exported": 1, "skipped": 2}, values)
}

func TestNodeMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNodeMetrics(reg)
	h := m.Hooks()

	ctx := context.Background()
	h.OnNodeExit(ctx, &domain.NodeEvent{Circuit: "c", Label: "Check", OutcomeTag: "Branch:out_of_stock", Duration: time.Millisecond})
	h.OnNodeExit(ctx, &domain.NodeEvent{Circuit: "c", Label: "Check", OutcomeTag: "Next", Duration: time.Millisecond})
	h.OnBranch(ctx, &domain.BranchEvent{Circuit: "c", BranchID: "out_of_stock"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.visits.WithLabelValues("c", "Check", "Branch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.visits.WithLabelValues("c", "Check", "Next")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.branches.WithLabelValues("c", "out_of_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}
