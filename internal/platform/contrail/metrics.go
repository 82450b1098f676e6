package contrail

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments store requests.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates store metrics and registers them with reg when it is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rtctl",
				Subsystem: "store",
				Name:      "requests_total",
				Help:      "Total number of config store requests by method, resource and status code",
			},
			[]string{"method", "resource", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rtctl",
				Subsystem: "store",
				Name:      "request_duration_seconds",
				Help:      "Duration of config store requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "resource"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method, resource, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, resource, code).Inc()
	m.duration.WithLabelValues(method, resource).Observe(elapsed.Seconds())
}
