// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ActiveSessions tracks the number of live tracked connections
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "saferoute_active_sessions",
			Help: "Number of currently connected tracking sessions",
		},
	)

	// PingsTotal tracks the number of location pings accepted for processing
	PingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "saferoute_pings_total",
			Help: "Total number of location pings processed",
		},
	)

	// PingsDropped tracks pings discarded before processing
	PingsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saferoute_pings_dropped_total",
			Help: "Total number of location pings dropped before processing",
		},
		[]string{"reason"},
	)

	// RoutesComputed tracks completed shortest-path searches
	RoutesComputed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "saferoute_routes_computed_total",
			Help: "Total number of safety-weighted route computations",
		},
	)

	// ScoreFetchFailures tracks failed calls to the external score provider
	ScoreFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "saferoute_score_fetch_failures_total",
			Help: "Total number of failed safety score provider fetches",
		},
	)

	// FallbackScores tracks synthetic scores generated in place of live data
	FallbackScores = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "saferoute_fallback_scores_total",
			Help: "Total number of synthetic fallback safety scores generated",
		},
	)

	// AlertsTotal tracks disconnect-time alert outcomes
	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saferoute_alerts_total",
			Help: "Total number of disconnect safety alerts by outcome",
		},
		[]string{"result"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(PingsTotal)
	prometheus.MustRegister(PingsDropped)
	prometheus.MustRegister(RoutesComputed)
	prometheus.MustRegister(ScoreFetchFailures)
	prometheus.MustRegister(FallbackScores)
	prometheus.MustRegister(AlertsTotal)
}
