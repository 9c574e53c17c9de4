package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the transfer gate.
type Metrics struct {
	// DecisionsTotal counts authorization outcomes by reason. Denials are
	// expected and frequent; per-reason labels are what make the counter
	// useful.
	DecisionsTotal    *prometheus.CounterVec
	AuthorizeDuration prometheus.Histogram
}

// New creates and registers all transfer metrics.
func New() *Metrics {
	return &Metrics{
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_transfer_decisions_total",
			Help: "Transfer authorization decisions by reason",
		}, []string{"reason"}),
		AuthorizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "surety_transfer_authorize_duration_seconds",
			Help:    "Latency of transfer authorization decisions",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
