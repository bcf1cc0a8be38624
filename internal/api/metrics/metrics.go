// Package metrics defines and registers all custom Prometheus metrics for
// the fire-safety incident API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoint is wired by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "firesafety"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts successful access-token refreshes.
var TokenRefreshTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access tokens minted via the refresh endpoint.",
	},
)

// ── Alert metrics ─────────────────────────────────────────────────────────────

// AlertsCreatedTotal counts created alerts.
// Label:
//   - type: the incident event type (e.g. "ACCIDENT")
var AlertsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_created_total",
		Help:      "Total number of alerts created, by event type.",
	},
	[]string{"type"},
)

// AlertStatusChangesTotal counts status transitions applied to alerts.
// Label:
//   - status: the new status
var AlertStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_status_changes_total",
		Help:      "Total number of alert status changes, by resulting status.",
	},
	[]string{"status"},
)

// AlertCacheTotal counts alert read-cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var AlertCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_cache_total",
		Help:      "Total number of alert cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Import / report metrics ───────────────────────────────────────────────────

// CSVRowsTotal counts processed CSV import rows.
// Labels:
//   - kind:   "sensors" or "alerts"
//   - result: "success" or "failure"
var CSVRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "csv_rows_total",
		Help:      "Total number of CSV import rows processed, by kind and result.",
	},
	[]string{"kind", "result"},
)

// ReportsGeneratedTotal counts generated PDF reports.
var ReportsGeneratedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Total number of alert PDF reports generated.",
	},
)
