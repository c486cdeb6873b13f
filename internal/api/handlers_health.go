// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/vidshare/internal/models"
)

// healthPingTimeout bounds the database ping of a probe.
const healthPingTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status            string   `json:"status"`
	Version           string   `json:"version"`
	DatabaseConnected bool     `json:"database_connected"`
	StorageProviders  []string `json:"storage_providers,omitempty"`
	Uptime            float64  `json:"uptime"`
}

// providerLister is satisfied by the storage router.
type providerLister interface {
	Providers() []models.StorageProvider
}

func (h *Handler) storageProviders() []string {
	lister, ok := h.assets.(providerLister)
	if !ok {
		return nil
	}
	providers := lister.Providers()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = string(p)
	}
	return names
}

func (h *Handler) databaseConnected(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	defer cancel()
	return h.db.Ping(ctx) == nil
}

// Health reports overall status. The endpoint answers 200 even when
// degraded so dashboards can read the body; use readiness for routing.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		StorageProviders:  h.storageProviders(),
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers 200 only when the service can handle traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.databaseConnected(r.Context())
	data := map[string]interface{}{
		"database_connected": dbConnected,
		"ready_to_serve":     dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}

	rw := NewResponseWriter(w, r)
	if !dbConnected {
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service is not ready", data)
		return
	}
	rw.Success(data)
}
