// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and exposed
at /metrics by the API router.

# Available Metrics

HTTP:
  - api_requests_total (method, endpoint, status_code)
  - api_request_duration_seconds (method, endpoint)
  - api_active_requests
  - api_rate_limit_hits_total (group)

Storage:
  - storage_uploads_total (provider, result)
  - storage_upload_duration_seconds (provider)
  - storage_fallbacks_total (provider)
  - storage_delete_failures_total (provider)

Circuit breakers:
  - circuit_breaker_state (name): 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total (name, result)
  - circuit_breaker_consecutive_failures (name)
  - circuit_breaker_state_transitions_total (name, from_state, to_state)

Auth and email:
  - auth_events_total (event, result)
  - email_sends_total (template, result)
  - email_queue_depth

Document store:
  - docstore_gc_runs_total (result)

# Usage

	start := time.Now()
	asset, err := provider.Upload(ctx, path, mimetype, kind)
	metrics.RecordUpload(string(provider.Name()), time.Since(start), err)
*/
package metrics
