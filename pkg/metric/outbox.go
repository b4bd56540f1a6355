package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ Outbox = (*outboxMetrics)(nil)

type outboxMetrics struct {
	publishedCounter *prometheus.CounterVec
	failedCounter    *prometheus.CounterVec
	deadCounter      *prometheus.CounterVec
	pendingGauge     prometheus.Gauge
}

func newOutboxMetrics(registry *promRegistry) *outboxMetrics {
	published := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_published_total",
			Help: "Total number of notification events published by kind",
		},
		[]string{"kind"},
	)

	failed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_failures_total",
			Help: "Total number of failed publish attempts by kind and reason",
		},
		[]string{"kind", "reason"},
	)

	dead := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_events_dead_total",
			Help: "Total number of events abandoned after max attempts by kind",
		},
		[]string{"kind"},
	)

	pending := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_events_pending",
			Help: "Number of notification events waiting for delivery",
		},
	)

	registry.registry.MustRegister(published, failed, dead, pending)

	return &outboxMetrics{
		publishedCounter: published,
		failedCounter:    failed,
		deadCounter:      dead,
		pendingGauge:     pending,
	}
}

func (m *outboxMetrics) Published(kind string) {
	m.publishedCounter.WithLabelValues(kind).Add(1)
}

func (m *outboxMetrics) Failed(kind string, reason string) {
	m.failedCounter.WithLabelValues(kind, reason).Add(1)
}

func (m *outboxMetrics) Dead(kind string) {
	m.deadCounter.WithLabelValues(kind).Add(1)
}

func (m *outboxMetrics) Pending(count int64) {
	m.pendingGauge.Set(float64(count))
}
