// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"net/http"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// ErrorWriter renders an error response. The api package supplies its
// envelope writer.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware is the auth gate for protected routes.
type Middleware struct {
	service    *Service
	writeError ErrorWriter
}

// NewMiddleware creates the auth gate. A nil writer falls back to plain
// text errors.
func NewMiddleware(service *Service, writeError ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = plainError
	}
	return &Middleware{service: service, writeError: writeError}
}

func plainError(w http.ResponseWriter, _ *http.Request, err error) {
	kind := apperr.KindOf(err)
	http.Error(w, err.Error(), kind.HTTPStatus())
}

// ContextWithUser stores the authenticated user on ctx.
func ContextWithUser(ctx context.Context, u *models.User) context.Context {
	ctx = context.WithValue(ctx, userContextKey, u)
	return logging.ContextWithUserID(ctx, u.ID)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok && u != nil
}

// RequireAuth rejects requests without a valid access token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.service.VerifyAccess(r.Context(), AccessTokenFromRequest(r))
		if err != nil {
			m.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
	})
}

// OptionalAuth attaches the user when a valid token is present and
// otherwise continues anonymously.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := AccessTokenFromRequest(r)
		if token != "" {
			if u, err := m.service.VerifyAccess(r.Context(), token); err == nil {
				r = r.WithContext(ContextWithUser(r.Context(), u))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireVerified rejects authenticated users whose email is unverified.
// It must run after RequireAuth.
func (m *Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			m.writeError(w, r, apperr.Auth(apperr.CodeUnauthorized, "Unauthorized request"))
			return
		}
		if !u.IsEmailVerified {
			m.writeError(w, r, apperr.Forbidden(apperr.CodeEmailNotVerified, "Please verify your email to perform this action"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
