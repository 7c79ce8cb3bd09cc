// Package metrics defines and registers all custom Prometheus metrics for the
// portal gateway. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported; /metrics exposes them alongside the echo
// request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Labels:
//   - outcome: "success", "rejected" or "error"
//   - role: the primary dashboard of a successful login, "" otherwise
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome and resolved dashboard.",
	},
	[]string{"outcome", "role"},
)

// SessionsPurgedTotal counts purges of persisted session keys.
// Label:
//   - reason: "logout", "expired", "malformed" or "refresh_failed"
var SessionsPurgedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_purged_total",
		Help:      "Total number of sessions whose persisted keys were purged.",
	},
	[]string{"reason"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls made to backend services.
// Labels:
//   - service: "backend" or "scheduler"
//   - outcome: "ok", "http_error" or "transport_error"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to backend services.",
	},
	[]string{"service", "outcome"},
)

// UpstreamRequestDuration measures backend call latency.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests sent to backend services.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"service"},
)

// ── Polling metrics ───────────────────────────────────────────────────────────

// PollTicksTotal counts poll cycles.
// Labels:
//   - poller: poller name (e.g. "notifications", "trigger_status")
//   - result: "ok" or "error"
var PollTicksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_ticks_total",
		Help:      "Total number of poll cycles, by poller and result.",
	},
	[]string{"poller", "result"},
)

// ActivePollers tracks pollers currently bound to a client connection.
var ActivePollers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_pollers",
		Help:      "Current number of running pollers, by poller name.",
	},
	[]string{"poller"},
)
