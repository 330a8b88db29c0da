// Package metrics holds Prometheus instruments for the inquiry pipeline.
// All collectors are registered with the global registry, so mounting
// promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GuardTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_guard_triggers_total",
			Help: "Abuse heuristics that fired, by kind.",
		}, []string{"kind"})

	SecurityEventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "inquiry_security_events_dropped_total",
			Help: "Security events that could not be written.",
		})

	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiry_submissions_total",
			Help: "Submission attempts by outcome.",
		}, []string{"outcome"})

	PersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inquiry_persist_duration_seconds",
			Help:    "Latency of document store appends.",
			Buckets: prometheus.DefBuckets,
		})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inquiry_active_sessions",
			Help: "Form sessions currently held in memory.",
		})

	// HTTPRequestsTotal is labelled by route template, not raw path.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(
		GuardTriggersTotal,
		SecurityEventsDroppedTotal,
		SubmissionsTotal,
		PersistDuration,
		ActiveSessions,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
