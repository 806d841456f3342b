// Package metrics holds Prometheus instruments for the bootstrap pipeline
// and the per-request debug-mode negotiation.  All collectors are registered
// with the global registry, so serving promhttp.Handler() exposes them.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	BootstrapRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootstrap_runs_total",
			Help: "Bootstrap invocations by outcome (ok or the abort kind).",
		}, []string{"outcome"})

	DebugDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debug_mode_decisions_total",
			Help: "Debug-mode decisions by source and result.",
		}, []string{"source", "enabled"})

	PathErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bootstrap_path_errors_total",
			Help: "Directories that neither existed nor could be created.",
		})

	ConfigLayers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootstrap_config_layers",
			Help: "Number of configuration layers in the last plan.",
		})
)

func init() {
	prometheus.MustRegister(
		BootstrapRuns,
		DebugDecisions,
		PathErrors,
		ConfigLayers,
	)
}

// ObserveDecision counts one debug-mode decision.
func ObserveDecision(source string, enabled bool) {
	DebugDecisions.WithLabelValues(source, strconv.FormatBool(enabled)).Inc()
}
