// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/models"
)

// Register creates an account from a JSON body or a multipart form with
// optional avatar and coverImage files.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if isMultipart(r) {
		form, files, err := h.readMultipart(w, r, "avatar", "coverImage")
		defer files.cleanup()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		in = auth.RegisterInput{
			Fullname:   form.value("fullname"),
			Email:      form.value("email"),
			Username:   form.value("username"),
			Password:   form.fields["password"],
			Avatar:     form.file("avatar"),
			CoverImage: form.file("coverImage"),
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.cookies.Set(w, session.Tokens)
	NewResponseWriter(w, r).Created(session)
}

// Login authenticates by email or username.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	session, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.cookies.Set(w, session.Tokens)
	NewResponseWriter(w, r).Success(session)
}

// Logout revokes the refresh token and clears the cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.Logout(r.Context(), u.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.cookies.Clear(w)
	NewResponseWriter(w, r).Success(map[string]string{"message": "User logged out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates the session. The token comes from the cookie or,
// for non-browser clients, the request body.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := auth.RefreshTokenFromRequest(r)
	if token == "" {
		var body refreshRequest
		if err := decodeJSON(w, r, &body); err != nil {
			h.fail(w, r, err)
			return
		}
		token = body.RefreshToken
	}
	session, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.cookies.Set(w, session.Tokens)
	NewResponseWriter(w, r).Success(session.Tokens)
}

// ChangePassword replaces the current user's password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in auth.ChangePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), u.ID, in); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Password changed successfully"})
}

// CurrentUser returns the authenticated user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(u.Public())
}

// UpdateAccount changes fullname and email.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in auth.UpdateAccountInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.auth.UpdateAccount(r.Context(), u.ID, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(updated.Public())
}

// UpdateAvatar replaces the avatar with the uploaded "avatar" file.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.auth.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image with the uploaded "coverImage" file.
func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.auth.UpdateCoverImage)
}

func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, field string,
	update func(ctx context.Context, userID string, f *models.UploadedFile) (*models.User, error)) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, files, err := h.readMultipart(w, r, field)
	defer files.cleanup()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	file := form.file(field)
	if file == nil {
		h.fail(w, r, apperr.Validationf("%s file is missing", field))
		return
	}
	updated, err := update(r.Context(), u.ID, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(updated.Public())
}

// ChannelProfile returns a public channel page, with the subscription state
// of the signed in viewer.
func (h *Handler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	username, err := pathID(r, "username")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	profile, err := h.db.ChannelProfile(r.Context(), username, viewerID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(profile)
}

// ForgotPassword emails a reset link. The response is the same whether or
// not the address belongs to an account.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in auth.ForgotPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{
		"message": "If an account exists for this email, a password reset link has been sent",
	})
}

// ResetPassword consumes the reset token from the path.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token, err := pathID(r, "token")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in auth.ResetPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	in.Token = token
	if err := h.auth.ResetPassword(r.Context(), in); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Password has been reset, please log in again"})
}

// OAuthStart redirects to the identity provider.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "OAuth login is not enabled")
		return
	}
	h.oauth.Start(w, r)
}

// OAuthCallback completes the provider login.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeNotFound, "OAuth login is not enabled")
		return
	}
	h.oauth.Callback(w, r)
}
