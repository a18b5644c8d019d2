// Prometheus metrics of dashsync.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// values of label "result" of dashsync_passes_total.
const (
	ResultOK      = "ok"
	ResultBusy    = "busy"
	ResultLoad    = "load_failed"
	ResultHook    = "hook_refused"
	ResultSave    = "save_failed"
	ResultUnknown = "error"
)

var (
	passesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashsync_passes_total",
			Help: "Total reconciliation passes by result.",
		},
		[]string{"result"},
	)
	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashsync_pass_duration_seconds",
			Help:    "Duration of reconciliation passes.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashsync_candidates_total",
			Help: "Total container names processed by outcome.",
		},
		[]string{"outcome"},
	)
	discoveryFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashsync_discovery_failures_total",
			Help: "Total failures of container discovery.",
		},
	)
)

// ObservePass records a finished (or skipped) pass.
func ObservePass(result string, took time.Duration) {
	passesTotal.WithLabelValues(result).Inc()
	if result != ResultBusy {
		passDuration.Observe(took.Seconds())
	}
}

// ObserveCandidate records an outcome of a container name.
func ObserveCandidate(outcome string) {
	candidatesTotal.WithLabelValues(outcome).Inc()
}

func ObserveDiscoveryFailure() {
	discoveryFailuresTotal.Inc()
}
