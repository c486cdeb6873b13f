// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/logging"
)

// SendVerification emails a new code to an unverified account.
func (h *Handler) SendVerification(w http.ResponseWriter, r *http.Request) {
	var in auth.EmailInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	alreadyVerified, err := h.auth.SendVerification(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	message := "Verification email sent"
	if alreadyVerified {
		message = "Email is already verified"
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"message":         message,
		"alreadyVerified": alreadyVerified,
	})
}

// ResendVerification reissues the code. Unknown emails get the same answer.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var in auth.EmailInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.ResendVerification(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{
		"message": "If the account exists and is unverified, a new code has been sent",
	})
}

// VerifyEmail checks a 6 digit code.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var in auth.VerifyCodeInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.auth.VerifyCode(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"message": "Email verified successfully",
		"user":    u.Public(),
	})
}

// VerifyLink follows a one-click link and redirects to the frontend page
// named after the outcome.
func (h *Handler) VerifyLink(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.auth.VerifyLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Verification link failed")
		outcome = auth.LinkInvalid
	}
	http.Redirect(w, r, h.frontendURL()+"/verification/"+string(outcome), http.StatusFound)
}

func (h *Handler) frontendURL() string {
	if h.config == nil {
		return ""
	}
	return strings.TrimRight(h.config.Server.FrontendURL, "/")
}
