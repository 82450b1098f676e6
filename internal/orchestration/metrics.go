package orchestration

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts operation outcomes.
type Metrics struct {
	operations *prometheus.CounterVec
	warnings   *prometheus.CounterVec
}

// NewMetrics creates operation metrics and registers them with reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rtctl",
				Name:      "operations_total",
				Help:      "Total number of connectivity operations by final state",
			},
			[]string{"operation", "state", "reached"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rtctl",
				Name:      "operation_warnings_total",
				Help:      "Total number of partial-completion warnings by operation",
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.warnings)
	}
	return m
}

func (m *Metrics) record(res *Result) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(res.Operation, string(res.State), string(res.Reached)).Inc()
	if n := len(res.Warnings); n > 0 {
		m.warnings.WithLabelValues(res.Operation).Add(float64(n))
	}
}
