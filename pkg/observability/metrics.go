package observability

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/axon/pkg/domain"
)

// StatsCollector exposes a StatsRegistry as Prometheus metrics.
type StatsCollector struct {
	stats     *StatsRegistry
	decisions *prometheus.Desc
	exports   *prometheus.Desc
	updated   *prometheus.Desc
}

var _ prometheus.Collector = (*StatsCollector)(nil)

// NewStatsCollector creates a collector reading stats on every scrape.
func NewStatsCollector(stats *StatsRegistry) *StatsCollector {
	return &StatsCollector{
		stats: stats,
		decisions: prometheus.NewDesc(
			"axon_timeline_decisions_total",
			"Timeline sample/export decisions by result.",
			[]string{"result"}, nil,
		),
		exports: prometheus.NewDesc(
			"axon_timeline_exports_total",
			"Exported timelines by reason.",
			[]string{"reason"}, nil,
		),
		updated: prometheus.NewDesc(
			"axon_timeline_last_decision_timestamp_seconds",
			"Unix time of the last decision.",
			nil, nil,
		),
	}
}

func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.decisions
	ch <- c.exports
	ch <- c.updated
}

func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.decisions, prometheus.CounterValue, float64(s.Exported), "exported")
	ch <- prometheus.MustNewConstMetric(c.decisions, prometheus.CounterValue, float64(s.Skipped), "skipped")
	ch <- prometheus.MustNewConstMetric(c.exports, prometheus.CounterValue, float64(s.SampledExports), "sampled")
	ch <- prometheus.MustNewConstMetric(c.exports, prometheus.CounterValue, float64(s.ForcedExports), "forced")
	if !s.LastUpdated.IsZero() {
		ch <- prometheus.MustNewConstMetric(c.updated, prometheus.GaugeValue, float64(s.LastUpdated.UnixNano())/1e9)
	}
}

// NodeMetrics records node visits and latency. Wire it with Hooks.
type NodeMetrics struct {
	visits   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	branches *prometheus.CounterVec
}

// NewNodeMetrics registers node metrics on reg, or the default registerer when nil.
func NewNodeMetrics(reg prometheus.Registerer) *NodeMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &NodeMetrics{
		visits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axon_node_visits_total",
				Help: "Node visits by circuit, node label and outcome kind.",
			},
			[]string{"circuit", "node", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "axon_node_duration_seconds",
				Help:    "Time spent in each node.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"circuit", "node"},
		),
		branches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "axon_branches_total",
				Help: "Branch outcomes by circuit and branch id.",
			},
			[]string{"circuit", "branch"},
		),
	}
	reg.MustRegister(m.visits, m.duration, m.branches)
	return m
}

// Hooks returns lifecycle hooks feeding the metrics.
func (m *NodeMetrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeExit: func(_ context.Context, ev *domain.NodeEvent) {
			m.visits.WithLabelValues(ev.Circuit, ev.Label, outcomeKind(ev.OutcomeTag)).Inc()
			m.duration.WithLabelValues(ev.Circuit, ev.Label).Observe(ev.Duration.Seconds())
		},
		OnBranch: func(_ context.Context, ev *domain.BranchEvent) {
			m.branches.WithLabelValues(ev.Circuit, ev.BranchID).Inc()
		},
	}
}

// outcomeKind strips the identifier from a tag to keep label cardinality bounded.
func outcomeKind(tag string) string {
	kind, _, _ := strings.Cut(tag, ":")
	return kind
}
