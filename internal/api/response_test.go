// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/models"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestAppErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest, apperr.CodeValidation},
		{"auth", apperr.Auth(apperr.CodeInvalidToken, "bad token"), http.StatusUnauthorized, apperr.CodeInvalidToken},
		{"forbidden", apperr.Forbidden(apperr.CodeEmailNotVerified, "verify first"), http.StatusForbidden, apperr.CodeEmailNotVerified},
		{"not found", apperr.NotFound("video"), http.StatusNotFound, apperr.CodeNotFound},
		{"conflict", apperr.Conflict("taken"), http.StatusConflict, apperr.CodeConflict},
		{"upstream", apperr.Upstream("storage down", errors.New("timeout")), http.StatusInternalServerError, apperr.CodeUpstream},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/", nil)).AppError(tt.err, false)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Success {
				t.Error("success = true")
			}
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.wantCode)
			}
			if resp.Error != nil && resp.Error.Cause != "" {
				t.Errorf("cause leaked without debug: %q", resp.Error.Cause)
			}
		})
	}
}

func TestAppErrorDebugCause(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/", nil)).AppError(errors.New("disk on fire"), true)

	resp := decodeEnvelope(t, rec)
	if resp.Error == nil {
		t.Fatal("error missing")
	}
	if resp.Error.Message != "Something went wrong" {
		t.Errorf("message = %q", resp.Error.Message)
	}
	if resp.Error.Cause != "disk on fire" {
		t.Errorf("cause = %q, want the wrapped error", resp.Error.Cause)
	}
}

func TestAppErrorDetails(t *testing.T) {
	t.Parallel()

	err := apperr.Validation("invalid").WithDetails(map[string]interface{}{"email": "must be an email"})
	rec := httptest.NewRecorder()
	NewResponseWriter(rec, httptest.NewRequest(http.MethodGet, "/", nil)).AppError(err, false)

	resp := decodeEnvelope(t, rec)
	details, ok := resp.Error.Details.(map[string]interface{})
	if !ok || details["email"] != "must be an email" {
		t.Errorf("details = %+v", resp.Error.Details)
	}
}

func TestPaginationOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page models.Page[string]
		want PaginationMeta
	}{
		{
			name: "first of two",
			page: models.Page[string]{Items: []string{"a", "b"}, Total: 3, Page: 1, Limit: 2, TotalPages: 2},
			want: PaginationMeta{Total: 3, Count: 2, Page: 1, Limit: 2, TotalPages: 2, HasMore: true},
		},
		{
			name: "last page",
			page: models.Page[string]{Items: []string{"c"}, Total: 3, Page: 2, Limit: 2, TotalPages: 2},
			want: PaginationMeta{Total: 3, Count: 1, Page: 2, Limit: 2, TotalPages: 2},
		},
		{
			name: "empty",
			page: models.Page[string]{Page: 1, Limit: 10},
			want: PaginationMeta{Page: 1, Limit: 10},
		},
	}
	for _, tt := range tests {
		if got := *paginationOf(tt.page); got != tt.want {
			t.Errorf("%s: paginationOf = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestPageRequest(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.API.DefaultPageSize = 20
	cfg.API.MaxPageSize = 50
	configured := &Handler{config: cfg}
	bare := &Handler{}

	tests := []struct {
		name  string
		h     *Handler
		query string
		want  models.PageRequest
	}{
		{"defaults", bare, "", models.PageRequest{Page: 1, Limit: 10}},
		{"explicit", bare, "?page=3&limit=5", models.PageRequest{Page: 3, Limit: 5}},
		{"negative page", bare, "?page=-2", models.PageRequest{Page: 1, Limit: 10}},
		{"garbage", bare, "?page=x&limit=y", models.PageRequest{Page: 1, Limit: 10}},
		{"clamped", bare, "?limit=1000", models.PageRequest{Page: 1, Limit: 100}},
		{"configured default", configured, "", models.PageRequest{Page: 1, Limit: 20}},
		{"configured max", configured, "?limit=80", models.PageRequest{Page: 1, Limit: 50}},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		if got := tt.h.pageRequest(r); got != tt.want {
			t.Errorf("%s: pageRequest = %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("clip\n.mp4\x7f"); got != `clip\x0a.mp4\x7f` {
		t.Errorf("sanitizeLogValue = %q", got)
	}
}
