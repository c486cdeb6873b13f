// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for:
// - API endpoint latency and throughput
// - Media storage uploads, fallbacks and deletes
// - Circuit breakers around upstream providers
// - Authentication events
// - Email delivery and the notification queue
// - Document store maintenance

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // uploads can take a while
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"group"},
	)

	// Storage Metrics
	StorageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_uploads_total",
			Help: "Total number of media upload attempts per provider",
		},
		[]string{"provider", "result"}, // result: "success", "failure"
	)

	StorageUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_upload_duration_seconds",
			Help:    "Duration of media uploads per provider",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"provider"},
	)

	StorageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_fallbacks_total",
			Help: "Total number of uploads served by a provider other than the first choice",
		},
		[]string{"provider"},
	)

	StorageDeleteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_delete_failures_total",
			Help: "Total number of swallowed media delete failures",
		},
		[]string{"provider"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Auth Metrics
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Total number of authentication events",
		},
		[]string{"event", "result"}, // event: login, refresh, logout, register, verify, reset, oauth
	)

	// Email Metrics
	EmailSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_sends_total",
			Help: "Total number of email send attempts",
		},
		[]string{"template", "result"},
	)

	EmailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "email_queue_depth",
			Help: "Number of queued email tasks not yet handled",
		},
	)

	// Document Store Metrics
	DocstoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_gc_runs_total",
			Help: "Total number of value log garbage collection passes",
		},
		[]string{"result"}, // result: "rewritten", "noop", "error"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request for a rate limit group
func RecordRateLimitHit(group string) {
	APIRateLimitHits.WithLabelValues(group).Inc()
}

// RecordUpload records one upload attempt against provider
func RecordUpload(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	StorageUploads.WithLabelValues(provider, result).Inc()
	StorageUploadDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFallback counts an upload served by a provider further down the order
func RecordFallback(provider string) {
	StorageFallbacks.WithLabelValues(provider).Inc()
}

// RecordDeleteFailure counts a delete failure that was logged and swallowed
func RecordDeleteFailure(provider string) {
	StorageDeleteFailures.WithLabelValues(provider).Inc()
}

// RecordAuthEvent records the outcome of an authentication event
func RecordAuthEvent(event string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthEvents.WithLabelValues(event, result).Inc()
}

// RecordEmailSend records the outcome of sending one email
func RecordEmailSend(template string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EmailSends.WithLabelValues(template, result).Inc()
}

// RecordGCRun records one value log GC pass
func RecordGCRun(result string) {
	DocstoreGCRuns.WithLabelValues(result).Inc()
}
