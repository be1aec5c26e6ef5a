package resource

// metrics.go mirrors the teacher's pkg/metrics.go noop/Prometheus split for
// the factory's hit/miss/live-resource counters.

import "github.com/prometheus/client_golang/prometheus"

type factoryMetrics struct {
	hits   prometheus.Counter
	misses prometheus.Counter
	live   prometheus.Gauge
}

func newFactoryMetrics(reg *prometheus.Registry) *factoryMetrics {
	if reg == nil {
		return nil
	}
	m := &factoryMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enginert",
			Subsystem: "resource",
			Name:      "cache_hits_total",
			Help:      "Number of Get calls resolved from an already-loaded descriptor.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "enginert",
			Subsystem: "resource",
			Name:      "cache_misses_total",
			Help:      "Number of Get calls that invoked a loader's Create function.",
		}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "enginert",
			Subsystem: "resource",
			Name:      "live_resources",
			Help:      "Number of currently live, typed resources.",
		}),
	}
	reg.MustRegister(m.hits, m.misses, m.live)
	return m
}

func (m *factoryMetrics) incHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *factoryMetrics) incMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *factoryMetrics) setLive(n int) {
	if m == nil {
		return
	}
	m.live.Set(float64(n))
}
