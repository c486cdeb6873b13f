// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"time"

	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/middleware"
	"github.com/tomtom215/vidshare/internal/videos"
)

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: request decoding, pagination and context helpers
//   - handlers_health.go: health and readiness probes
//   - handlers_users.go: registration, sessions and account management
//   - handlers_verification.go: email verification
//   - handlers_videos.go: video publishing and listings
//   - handlers_social.go: comments, likes, subscriptions and tweets
//   - handlers_playlists.go: playlists
//   - handlers_history.go: watch history
//   - handlers_dashboard.go: channel dashboard
//   - handlers_admin.go: admin listings, deletes and performance stats
type Handler struct {
	db        *database.DB
	auth      *auth.Service
	videos    *videos.Service
	assets    videos.Assets
	cookies   *auth.CookieJar
	oauth     *auth.OAuthFlow
	config    *config.Config
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
	version   string
}

// HandlerDeps carries the collaborators of a Handler. OAuth is optional.
type HandlerDeps struct {
	DB      *database.DB
	Auth    *auth.Service
	Videos  *videos.Service
	Assets  videos.Assets
	Cookies *auth.CookieJar
	OAuth   *auth.OAuthFlow
	Config  *config.Config
	PerfMon *middleware.PerformanceMonitor
	Version string
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler := api.NewHandler(api.HandlerDeps{DB: db, Auth: authSvc, ...})
//	router := api.NewRouter(handler, chiMW, authMW, adminMW)
//	srv := &http.Server{Handler: router.SetupChi()}
func NewHandler(deps HandlerDeps) *Handler {
	perfMon := deps.PerfMon
	if perfMon == nil {
		perfMon = middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold)
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		db:        deps.DB,
		auth:      deps.Auth,
		videos:    deps.Videos,
		assets:    deps.Assets,
		cookies:   deps.Cookies,
		oauth:     deps.OAuth,
		config:    deps.Config,
		perfMon:   perfMon,
		startTime: time.Now(),
		version:   version,
	}
}

// PerformanceMonitor returns the monitor fed by the router's middleware.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
