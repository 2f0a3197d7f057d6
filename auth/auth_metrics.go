package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	opRegister = "register"
	opLogin    = "login"
	opRefresh  = "refresh"
	opLogout   = "logout"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics counts auth operations by outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics registers the auth counters with reg. A nil registerer leaves
// them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tokenauth",
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// Count returns the counter for an operation/outcome pair.
func (m *Metrics) Count(op, outcome string) prometheus.Counter {
	return m.operations.WithLabelValues(op, outcome)
}
