// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package middleware provides infrastructure HTTP middleware for the API.

Every middleware has the chi signature func(http.Handler) http.Handler and
can be mounted with chi.Router.Use.

Key Components:

  - RequestID: accepts or generates X-Request-ID and seeds the logging context
  - AccessLog: one structured log line per request
  - PrometheusMetrics: request counters and latency histograms labelled by route pattern
  - SecurityHeaders: nosniff, frame denial, referrer policy and HSTS over TLS
  - PerformanceMonitor: a sliding window of request latencies with percentiles

Middleware Stack:

The router installs them in this order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors)
	r.Use(middleware.PrometheusMetrics)
	r.Use(monitor.Middleware)
	r.Use(api.RecoverJSON)
	r.Use(chimiddleware.Compress(5, "application/json"))

NoStore is mounted per group on routes that return session or account data.

Route patterns ("/api/v1/videos/{videoId}") rather than raw paths are used as
metric and monitor labels so label cardinality stays bounded.
*/
package middleware
