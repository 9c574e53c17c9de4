package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the oracle module.
type Metrics struct {
	SubmissionsTotal   *prometheus.CounterVec
	RoundsFinalized    prometheus.Counter
	RoundsExpired      prometheus.Counter
	ValuationAnomalies prometheus.Counter
	AttestorsSlashed   prometheus.Counter
	QuorumVoteCount    prometheus.Histogram
}

// New creates and registers all oracle metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_oracle_submissions_total",
			Help: "Valuation submissions by result (accepted or rejection code)",
		}, []string{"result"}),
		RoundsFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surety_oracle_rounds_finalized_total",
			Help: "Attestation rounds that reached quorum and published a value",
		}),
		RoundsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surety_oracle_rounds_expired_total",
			Help: "Attestation rounds that hit their deadline without quorum",
		}),
		ValuationAnomalies: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surety_oracle_valuation_anomalies_total",
			Help: "Finalizations that dropped past the monotonicity bound",
		}),
		AttestorsSlashed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "surety_oracle_attestors_slashed_total",
			Help: "Attestors penalized for wrong or malicious submissions",
		}),
		QuorumVoteCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "surety_oracle_quorum_vote_count",
			Help:    "Number of agreeing votes in finalized rounds",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
}
