package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var _ Cache = (*cacheMetrics)(nil)

type cacheMetrics struct {
	hitCounter      *prometheus.CounterVec
	missCounter     *prometheus.CounterVec
	evictionCounter *prometheus.CounterVec
	sizeGauge       *prometheus.GaugeVec
}

func newCacheMetrics(registry *promRegistry) *cacheMetrics {
	hits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits by cache type",
		},
		[]string{"cache"},
	)

	misses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses by cache type",
		},
		[]string{"cache"},
	)

	evictions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions by cache type and reason",
		},
		[]string{"cache", "reason"},
	)

	size := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_size",
			Help: "Current number of cached entries by cache type",
		},
		[]string{"cache"},
	)

	registry.registry.MustRegister(hits, misses, evictions, size)

	return &cacheMetrics{
		hitCounter:      hits,
		missCounter:     misses,
		evictionCounter: evictions,
		sizeGauge:       size,
	}
}

func (m *cacheMetrics) Hit(cacheType string) {
	m.hitCounter.WithLabelValues(cacheType).Add(1)
}

func (m *cacheMetrics) Miss(cacheType string) {
	m.missCounter.WithLabelValues(cacheType).Add(1)
}

func (m *cacheMetrics) Eviction(cacheType string, reason string) {
	m.evictionCounter.WithLabelValues(cacheType, reason).Add(1)
}

func (m *cacheMetrics) Size(cacheType string, size int) {
	m.sizeGauge.WithLabelValues(cacheType).Set(float64(size))
}
