// Package telemetry provides application-level observability for the Project
// Metadata Platform backend.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<PMP_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is deliberately not part of the Gin router
// so the scrape path stays off the public ingress and is not subject to the
// API rate-limiting middleware.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/projects/:id)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Authentication metrics, recorded by the auth handlers.
//
// LoginAttemptsTotal has label {outcome} with values "success" and "failure".
// Failures are not broken down further (unknown user vs wrong password) so the
// metric cannot be used for username enumeration any more than the API itself.
//
// TokenRefreshTotal has label {outcome} with values "success",
// "invalid_token", and "invalid_refresh_token".
//
// Example PromQL queries:
//   - Failed login rate:   rate(login_attempts_total{outcome="failure"}[5m])
//   - Refresh error ratio: sum(rate(token_refresh_total{outcome!="success"}[5m])) / sum(rate(token_refresh_total[5m]))
var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of password login attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refresh_total",
			Help: "Total number of access-token refresh attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// AuditEntriesWrittenTotal counts audit log entries persisted, by action name
// (e.g. ADDED_PROJECT). The action set is a closed enum so label cardinality
// is bounded.
//
// Example PromQL query:
//   - Mutation rate by action: sum by (action) (rate(audit_entries_written_total[1h]))
var AuditEntriesWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "audit_entries_written_total",
		Help: "Total number of audit log entries written, by action.",
	},
	[]string{"action"},
)

// DBOpenConnections is a Gauge that tracks the number of open connections
// currently held by the sql.DB pool. It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of
// sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB
// connection pool statistics every 30 seconds and updates the DBOpenConnections
// gauge. The goroutine exits cleanly when the database becomes unreachable
// (db.Ping fails), which happens automatically when the application shuts down
// and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
