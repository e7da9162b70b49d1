package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the auth service.
type Metrics struct {
	Logins            *prometheus.CounterVec
	SessionVerifies   *prometheus.CounterVec
	VerifyDurationMs  prometheus.Histogram
	DelegationsIssued prometheus.Counter
	DelegationsUsed   prometheus.Counter
	CleanupDeleted    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rdb_auth_logins_total",
			Help: "Login attempts by principal kind and outcome",
		}, []string{"kind", "outcome"}),
		SessionVerifies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rdb_auth_session_verifies_total",
			Help: "Session verification attempts by principal kind and outcome",
		}, []string{"kind", "outcome"}),
		VerifyDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdb_auth_verify_duration_ms",
			Help:    "Latency of session verification in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),
		DelegationsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rdb_auth_delegations_issued_total",
			Help: "Delegation grants issued by superusers",
		}),
		DelegationsUsed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rdb_auth_delegations_used_total",
			Help: "Delegation grants successfully consumed",
		}),
		CleanupDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rdb_auth_cleanup_deleted_total",
			Help: "Expired delegation grants removed by cleanup sweeps",
		}),
	}
}

// ObserveLogin records one login attempt.
func (m *Metrics) ObserveLogin(kind, outcome string) {
	m.Logins.WithLabelValues(kind, outcome).Inc()
}

// ObserveVerify records one verification attempt and its latency.
func (m *Metrics) ObserveVerify(kind, outcome string, durationMs float64) {
	m.SessionVerifies.WithLabelValues(kind, outcome).Inc()
	m.VerifyDurationMs.Observe(durationMs)
}
