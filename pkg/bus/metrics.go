package bus

// metrics.go mirrors the teacher's pkg/metrics.go noop/Prometheus split:
// a nil *busMetrics stands for disabled metrics and every method returns
// early on it, so the hot path (Post/Dispatch) never pays for label
// lookups when metrics are disabled.

import "github.com/prometheus/client_golang/prometheus"

type busMetrics struct {
	sockets   prometheus.Gauge
	posted    *prometheus.CounterVec
	dispatched *prometheus.CounterVec
}

func newBusMetrics(reg *prometheus.Registry) *busMetrics {
	if reg == nil {
		return nil
	}
	m := &busMetrics{
		sockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "enginert",
			Subsystem: "bus",
			Name:      "sockets",
			Help:      "Number of live message sockets.",
		}),
		posted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enginert",
			Subsystem: "bus",
			Name:      "messages_posted_total",
			Help:      "Number of messages posted, by socket name.",
		}, []string{"socket"}),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "enginert",
			Subsystem: "bus",
			Name:      "messages_dispatched_total",
			Help:      "Number of messages dispatched, by socket name.",
		}, []string{"socket"}),
	}
	reg.MustRegister(m.sockets, m.posted, m.dispatched)
	return m
}

func (m *busMetrics) setSocketCount(n int) {
	if m == nil {
		return
	}
	m.sockets.Set(float64(n))
}

func (m *busMetrics) incPosted(socket string) {
	if m == nil {
		return
	}
	m.posted.WithLabelValues(socket).Inc()
}

func (m *busMetrics) incDispatched(socket string, n int) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(socket).Add(float64(n))
}
