// Package metrics defines and registers the Prometheus metrics of the
// helpdesk client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry on import; the watch command
// exposes them on its diagnostics listener.
package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk_client"

// ── API metrics ───────────────────────────────────────────────────────────────

// APIRequestsTotal counts outbound backend calls.
// Labels:
//   - endpoint: the endpoint template with numeric ids collapsed (e.g. "/tickets/:id/vote")
//   - method: HTTP method
//   - outcome: "ok", "http_<status>", or "network_error"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of requests sent to the help desk backend.",
	},
	[]string{"endpoint", "method", "outcome"},
)

// APIRequestDuration measures the round trip of a backend call, including
// body decoding.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of help desk backend requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsUnread is the unread count seen by the last successful poll.
var NotificationsUnread = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_unread",
		Help:      "Unread notifications reported by the most recent poll.",
	},
)

// NotificationPollsTotal counts poll attempts.
// Label:
//   - result: "ok", "error", or "skipped" (no active session)
var NotificationPollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_polls_total",
		Help:      "Total number of notification polls, labelled by result.",
	},
	[]string{"result"},
)

var numericSegment = regexp.MustCompile(`/[0-9]+(/|$)`)

// EndpointLabel collapses numeric path segments so per-ticket calls share a
// series.
func EndpointLabel(endpoint string) string {
	for {
		next := numericSegment.ReplaceAllString(endpoint, "/:id$1")
		if next == endpoint {
			return next
		}
		endpoint = next
	}
}
