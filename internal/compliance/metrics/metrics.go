package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the compliance module.
type Metrics struct {
	ProfileUpdatesTotal *prometheus.CounterVec
}

// New creates and registers all compliance metrics.
func New() *Metrics {
	return &Metrics{
		ProfileUpdatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "surety_compliance_profile_updates_total",
			Help: "Compliance profile upserts by restriction kind",
		}, []string{"restriction"}),
	}
}
