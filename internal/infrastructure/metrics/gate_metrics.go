package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// GateMetrics records feed gate outcomes as Prometheus counters.
type GateMetrics struct {
	decisions  *prometheus.CounterVec
	fetchFails *prometheus.CounterVec
	superseded *prometheus.CounterVec
}

// NewGateMetrics registers the gate counters with reg. A nil reg yields
// ports.NoopGateMetrics.
func NewGateMetrics(reg prometheus.Registerer) (ports.GateMetrics, error) {
	if reg == nil {
		return ports.NoopGateMetrics{}, nil
	}
	m := &GateMetrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_gate_decisions_total",
				Help: "Load cycle decisions by feed",
			},
			[]string{"feed", "decision"},
		),
		fetchFails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_gate_fetch_errors_total",
				Help: "Failed content fetches by feed",
			},
			[]string{"feed"},
		),
		superseded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_gate_superseded_total",
				Help: "Load cycles whose result was dropped for a newer cycle",
			},
			[]string{"feed"},
		),
	}
	for _, c := range []prometheus.Collector{m.decisions, m.fetchFails, m.superseded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *GateMetrics) Decision(kind feed.Kind, d feed.Decision) {
	m.decisions.WithLabelValues(string(kind), string(d)).Inc()
}

func (m *GateMetrics) FetchFailed(kind feed.Kind) {
	m.fetchFails.WithLabelValues(string(kind)).Inc()
}

func (m *GateMetrics) Superseded(kind feed.Kind) {
	m.superseded.WithLabelValues(string(kind)).Inc()
}

var _ ports.GateMetrics = (*GateMetrics)(nil)
