// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want int
		code string
	}{
		{KindValidation, http.StatusBadRequest, CodeValidation},
		{KindAuth, http.StatusUnauthorized, CodeUnauthorized},
		{KindForbidden, http.StatusForbidden, CodeForbidden},
		{KindNotFound, http.StatusNotFound, CodeNotFound},
		{KindConflict, http.StatusConflict, CodeConflict},
		{KindUpstream, http.StatusInternalServerError, CodeUpstream},
		{KindUnexpected, http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()
			if got := tt.kind.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			if got := tt.kind.DefaultCode(); got != tt.code {
				t.Errorf("DefaultCode() = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	t.Parallel()

	base := Auth(CodeTokenExpired, "refresh token expired")
	wrapped := fmt.Errorf("refresh: %w", base)

	if got := KindOf(wrapped); got != KindAuth {
		t.Errorf("KindOf() = %v, want auth", got)
	}
	appErr, ok := As(wrapped)
	if !ok || appErr.Code != CodeTokenExpired {
		t.Fatalf("As() = %+v, %v", appErr, ok)
	}
	if !Is(wrapped, KindAuth) || Is(wrapped, KindForbidden) {
		t.Error("Is() returned wrong classification")
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	t.Parallel()

	if got := KindOf(errors.New("plain")); got != KindUnexpected {
		t.Errorf("KindOf(plain) = %v, want unexpected", got)
	}
	if Is(nil, KindUnexpected) {
		t.Error("Is(nil) should be false")
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Upstream("storage upload failed", cause)

	if err.Error() != "storage upload failed: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if NotFound("video").Message != "video not found" {
		t.Errorf("NotFound message = %q", NotFound("video").Message)
	}
	if Validationf("limit must be <= %d", 100).Message != "limit must be <= 100" {
		t.Error("Validationf formatting broken")
	}
}
