// Package metrics defines all custom Prometheus metrics for the tender
// review API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry at import
// time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tender_system"

// ScansTriggeredTotal counts collection passes, labelled by outcome.
// Labels:
//   - result: "ok" or "error"
var ScansTriggeredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scans_triggered_total",
		Help:      "Total number of collection passes triggered, by result.",
	},
	[]string{"result"},
)

// ScanDuration measures one collection pass end-to-end, including the
// round-trip to the collector and persistence.
var ScanDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of a collection pass from trigger to stored session.",
		Buckets:   []float64{1, 2.5, 5, 10, 30, 60, 120, 300},
	},
)

// AnalysesTotal counts per-tender analysis requests.
// Label:
//   - source: "cache" (replayed from a store) or "fresh" (computed now)
var AnalysesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of analysis requests served, by source (cache/fresh).",
	},
	[]string{"source"},
)

// AuthFailuresTotal counts rejected authentications.
// Label:
//   - reason: "bad_credentials", "invalid_token", or "stale_session"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of failed authentication attempts, by reason.",
	},
	[]string{"reason"},
)

// AdminDecisionsTotal counts role-elevation decisions.
// Label:
//   - decision: "approved" or "rejected"
var AdminDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_decisions_total",
		Help:      "Total number of admin-request decisions, by decision.",
	},
	[]string{"decision"},
)
