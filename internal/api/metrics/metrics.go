// Package metrics defines and registers all custom Prometheus metrics for the
// hybrid client. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pulseconnect/hybrid-client/internal/core/ports"
)

const namespace = "pulseconnect"

// ── Connectivity metrics ─────────────────────────────────────────────────────

// ProbesTotal counts backend probes.
// Label:
//   - result: "reachable" or "unreachable"
var ProbesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "probes_total",
		Help:      "Total number of backend reachability probes, by result.",
	},
	[]string{"result"},
)

// ProbeDuration measures probe round trips, timeouts included.
var ProbeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "probe_duration_seconds",
		Help:      "Duration of backend reachability probes.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	},
)

// BackendReachable is 1 while the backend is considered reachable.
var BackendReachable = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backend_reachable",
		Help:      "1 when the remote backend is considered reachable, 0 otherwise.",
	},
)

// ReachabilityTransitionsTotal counts reachability changes.
// Label:
//   - to: "reachable" or "unreachable"
var ReachabilityTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reachability_transitions_total",
		Help:      "Total number of reachability state changes.",
	},
	[]string{"to"},
)

// ── Fallback metrics ─────────────────────────────────────────────────────────

// FallbacksTotal counts calls served locally after a remote failure.
// Labels:
//   - operation: façade operation (e.g. "data.list_listings")
//   - kind: remote failure class ("transport", "structural", "generic")
var FallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Total number of calls served from the local store after a remote failure.",
	},
	[]string{"operation", "kind"},
)

// Recorder feeds the metrics above from the connectivity monitor and the
// façades.
type Recorder struct{}

var _ ports.Recorder = Recorder{}

func (Recorder) ProbeCompleted(reachable bool, elapsed time.Duration) {
	ProbesTotal.WithLabelValues(reachability(reachable)).Inc()
	ProbeDuration.Observe(elapsed.Seconds())
}

func (Recorder) ReachabilityChanged(reachable bool) {
	ReachabilityTransitionsTotal.WithLabelValues(reachability(reachable)).Inc()
	if reachable {
		BackendReachable.Set(1)
	} else {
		BackendReachable.Set(0)
	}
}

func (Recorder) Fallback(operation, kind string) {
	FallbacksTotal.WithLabelValues(operation, kind).Inc()
}

func reachability(up bool) string {
	if up {
		return "reachable"
	}
	return "unreachable"
}
