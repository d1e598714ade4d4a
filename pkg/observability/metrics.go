package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Metrics counts editor mutations, history moves and telemetry traffic.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	HistoryOps      *prometheus.CounterVec
	HistoryLength   prometheus.Gauge
	TelemetryAdded  *prometheus.CounterVec
	TelemetryDrops  *prometheus.CounterVec
	SnapshotChanges prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tapestry",
				Name:      "mutations_total",
				Help:      "Applied document mutations by operation.",
			},
			[]string{"op"},
		),
		HistoryOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tapestry",
				Name:      "history_operations_total",
				Help:      "History records, undos, redos and resets.",
			},
			[]string{"op"},
		),
		HistoryLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tapestry",
			Name:      "history_length",
			Help:      "Number of retained snapshots after the last history operation.",
		}),
		TelemetryAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tapestry",
				Name:      "telemetry_accepted_total",
				Help:      "Telemetry entries accepted by buffer.",
			},
			[]string{"buffer"},
		),
		TelemetryDrops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tapestry",
				Name:      "telemetry_dropped_total",
				Help:      "Telemetry entries evicted or refused by buffer.",
			},
			[]string{"buffer"},
		),
		SnapshotChanges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tapestry",
			Name:      "history_diff_size",
			Help:      "Number of changed nodes and edges per recorded snapshot.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Mutations,
			m.HistoryOps,
			m.HistoryLength,
			m.TelemetryAdded,
			m.TelemetryDrops,
			m.SnapshotChanges,
		)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) {
			m.Mutations.WithLabelValues(e.Op).Inc()
		},
		OnHistory: func(e *domain.HistoryEvent) {
			m.HistoryOps.WithLabelValues(e.Op).Inc()
			m.HistoryLength.Set(float64(e.Length))
			if e.Op == domain.HistoryRecord && e.Diff != nil {
				m.SnapshotChanges.Observe(float64(diffSize(e.Diff)))
			}
		},
		OnTelemetry: func(e *domain.TelemetryEvent) {
			m.TelemetryAdded.WithLabelValues(e.Buffer).Add(float64(e.Accepted))
			if e.Dropped > 0 {
				m.TelemetryDrops.WithLabelValues(e.Buffer).Add(float64(e.Dropped))
			}
		},
	}
}

func diffSize(d *domain.SnapshotDiff) int {
	n := len(d.AddedNodes) + len(d.RemovedNodes) + len(d.ChangedNodes) +
		len(d.AddedEdges) + len(d.RemovedEdges)
	if d.DocumentName != nil {
		n++
	}
	return n
}

// Chain merges several hook sets; each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnMutation != nil {
			prev := out.OnMutation
			out.OnMutation = func(e *domain.MutationEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnMutation(e)
			}
		}
		if h.OnHistory != nil {
			prev := out.OnHistory
			out.OnHistory = func(e *domain.HistoryEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnHistory(e)
			}
		}
		if h.OnTelemetry != nil {
			prev := out.OnTelemetry
			out.OnTelemetry = func(e *domain.TelemetryEvent) {
				if prev != nil {
					prev(e)
				}
				h.OnTelemetry(e)
			}
		}
	}
	return out
}
