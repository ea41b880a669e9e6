package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "efootball_hub"

// Metrics holds the tournament service collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	actions         *prometheus.CounterVec
	flushes         *prometheus.CounterVec
	flushDuration   *prometheus.HistogramVec
	remoteSnapshots *prometheus.CounterVec
	summaries       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Dispatched tournament actions by mode, action type and result.",
		}, []string{"mode", "action", "result"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_flushes_total",
			Help:      "State document writes to the store by mode and result.",
		}, []string{"mode", "result"}),
		flushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "state_flush_duration_seconds",
			Help:      "Time spent writing a state document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		remoteSnapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_snapshots_total",
			Help:      "State snapshots received from the store, applied or skipped as own echo.",
		}, []string{"mode", "outcome"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_summaries_total",
			Help:      "Match summary generation attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.actions, m.flushes, m.flushDuration, m.remoteSnapshots, m.summaries)
	return m
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) ActionDispatched(mode, action string, success bool) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(mode, action, resultLabel(success)).Inc()
}

func (m *Metrics) FlushCompleted(mode string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.flushes.WithLabelValues(mode, resultLabel(err == nil)).Inc()
	m.flushDuration.WithLabelValues(mode).Observe(took.Seconds())
}

func (m *Metrics) RemoteSnapshot(mode string, applied bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "skipped"
	}
	m.remoteSnapshots.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) SummaryGenerated(err error) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(resultLabel(err == nil)).Inc()
}
