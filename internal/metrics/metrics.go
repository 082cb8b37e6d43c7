// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "studymate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// AuthAttemptsTotal counts register and login outcomes.
	AuthAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studymate",
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts by action and result.",
	}, []string{"action", "result"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studymate",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the login rate limiter.",
	})
)
