package store

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics exposes snapshot cache behavior as Prometheus metrics.
// Registration is optional; the cache always works without it.
type cacheMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	size   prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer, prefix string) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_cache_hits_total",
			Help: "Collection reads served from the snapshot cache.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_cache_misses_total",
			Help: "Collection reads that went to the backing medium.",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_cache_entries",
			Help: "Collections currently held in the snapshot cache.",
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register cache metric: %w", err)
		}
	}
	return m, nil
}

func (m *cacheMetrics) recordHit()        { m.hits.Inc() }
func (m *cacheMetrics) recordMiss()       { m.misses.Inc() }
func (m *cacheMetrics) updateSize(n int)  { m.size.Set(float64(n)) }
