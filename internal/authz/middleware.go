// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package authz

import (
	"net/http"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/logging"
)

// Middleware enforces the policy on request paths. It runs after
// auth.Middleware.RequireAuth.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
}

// NewMiddleware creates the authorization middleware. writeError renders
// 403 and 500 responses in the API envelope.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	return &Middleware{enforcer: enforcer, writeError: writeError}
}

// Authorize checks the current user's role against the request path, with
// the action derived from the HTTP method.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			m.writeError(w, r, apperr.Forbidden(apperr.CodeForbidden, "Forbidden: no authentication context"))
			return
		}
		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(string(u.Role), r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			m.writeError(w, r, apperr.Internal("authorization failed", err))
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Warn().
				Str("role", string(u.Role)).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Access denied")
			m.writeError(w, r, apperr.Forbidden(apperr.CodeForbidden, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to policy actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "read"
	case http.MethodDelete:
		return "delete"
	default:
		return "write"
	}
}
