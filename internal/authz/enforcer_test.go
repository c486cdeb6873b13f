// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package authz

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/models"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(config.AuthzConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)

	tests := []struct {
		role   string
		path   string
		action string
		want   bool
	}{
		{"admin", "/api/v1/admin/users", "read", true},
		{"admin", "/api/v1/admin/videos/abc", "delete", true},
		{"admin", "/api/v1/videos", "write", true},
		{"user", "/api/v1/videos", "read", true},
		{"user", "/api/v1/admin/users", "read", false},
		{"user", "/api/v1/admin/users/abc", "delete", false},
		{"user", "/api/v1/videos", "write", false},
		{"", "/api/v1/admin/users", "read", false},
		{"guest", "/api/v1/videos", "read", false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.action+" "+tt.path, func(t *testing.T) {
			// Twice: the second answer comes from the cache.
			for i := 0; i < 2; i++ {
				got, err := e.Enforce(tt.role, tt.path, tt.action)
				if err != nil {
					t.Fatalf("Enforce: %v", err)
				}
				if got != tt.want {
					t.Errorf("Enforce(%q, %q, %q) = %v, want %v", tt.role, tt.path, tt.action, got, tt.want)
				}
			}
		})
	}
	if len(e.Policy()) != 4 {
		t.Errorf("policy rules = %d, want 4", len(e.Policy()))
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, user, /api/v1/*, read, allow\np, user, /api/v1/admin/stats, read, allow\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := NewEnforcer(config.AuthzConfig{PolicyPath: path})
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	defer e.Close()

	if ok, _ := e.Enforce("user", "/api/v1/admin/stats", "read"); !ok {
		t.Error("file policy not applied")
	}
	if ok, _ := e.Enforce("admin", "/api/v1/admin/stats", "read"); ok {
		t.Error("embedded policy leaked into file policy")
	}
}

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()
	e := newTestEnforcer(t)
	var status int
	writeErr := func(w http.ResponseWriter, _ *http.Request, err error) {
		status = apperr.KindOf(err).HTTPStatus()
		w.WriteHeader(status)
	}
	mw := NewMiddleware(e, writeErr)
	handler := mw.Authorize(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		user   *models.User
		method string
		want   int
	}{
		{"anonymous", nil, http.MethodGet, http.StatusForbidden},
		{"user read", &models.User{ID: "u", Role: models.RoleUser}, http.MethodGet, http.StatusForbidden},
		{"user delete", &models.User{ID: "u", Role: models.RoleUser}, http.MethodDelete, http.StatusForbidden},
		{"admin read", &models.User{ID: "a", Role: models.RoleAdmin}, http.MethodGet, http.StatusNoContent},
		{"admin delete", &models.User{ID: "a", Role: models.RoleAdmin}, http.MethodDelete, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/admin/users/123", nil)
			if tt.user != nil {
				req = req.WithContext(auth.ContextWithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		http.MethodGet:    "read",
		http.MethodHead:   "read",
		http.MethodPost:   "write",
		http.MethodPatch:  "write",
		http.MethodPut:    "write",
		http.MethodDelete: "delete",
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
