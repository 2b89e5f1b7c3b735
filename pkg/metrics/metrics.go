package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Probe metrics
	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_probes_total",
			Help: "Total number of health probes by composite status",
		},
		[]string{"status"},
	)

	ProbeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_probe_duration_seconds",
			Help:    "Health probe duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CompositeStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_composite_status",
			Help: "Current composite status (0 = down, 1 = degraded, 2 = healthy)",
		},
	)

	// Recovery metrics
	RecoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vigil_recoveries_total",
			Help: "Total number of recovery attempts by outcome",
		},
		[]string{"outcome"},
	)

	RecoveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vigil_recovery_duration_seconds",
			Help:    "Recovery attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ConsecutiveFailures = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_consecutive_recovery_failures",
			Help: "Number of consecutive failed recovery attempts",
		},
	)

	LastRecoveryTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vigil_last_recovery_timestamp_seconds",
			Help: "Unix timestamp of the last recovery attempt",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ProbesTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(CompositeStatus)
	prometheus.MustRegister(RecoveriesTotal)
	prometheus.MustRegister(RecoveryDuration)
	prometheus.MustRegister(ConsecutiveFailures)
	prometheus.MustRegister(LastRecoveryTimestamp)
}

// SetComposite records the current composite status on the gauge.
// Unrecognized values map to down.
func SetComposite(status string) {
	switch status {
	case "healthy":
		CompositeStatus.Set(2)
	case "degraded":
		CompositeStatus.Set(1)
	default:
		CompositeStatus.Set(0)
	}
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
