package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helix_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helix_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// QueriesTotal counts dynamic queries by resource and outcome
	// (ok, empty, rejected, error).
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helix_queries_total",
			Help: "Total number of dynamic queries",
		},
		[]string{"resource", "outcome"},
	)
)
