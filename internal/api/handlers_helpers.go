// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/models"
)

// maxJSONBodyBytes bounds JSON request bodies. Files go through multipart.
const maxJSONBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst unchanged
// so that validation reports the missing fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &tooLarge):
		return &apperr.Error{Kind: apperr.KindValidation, Code: ErrCodePayloadTooLarge, Message: "Request body is too large"}
	default:
		return apperr.Validation("Request body must be valid JSON")
	}
}

// getIntParam extracts an integer query parameter with a default value
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// pageRequest reads page and limit from the query. Out of range values fall
// back to the first page and the configured default size; limits above the
// configured maximum are clamped, and so are pages whose offset would overflow.
func (h *Handler) pageRequest(r *http.Request) models.PageRequest {
	def, maxSize := 10, 100
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			def = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxSize = h.config.API.MaxPageSize
		}
	}
	page := getIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := getIntParam(r, "limit", def)
	if limit < 1 {
		limit = def
	}
	if limit > maxSize {
		limit = maxSize
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return models.PageRequest{Page: page, Limit: limit}
}

// pathID returns a required path parameter.
func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		return "", apperr.Validationf("%s is required", name)
	}
	return id, nil
}

// currentUser returns the authenticated user. Routes using it sit behind
// RequireAuth, so a missing user is an Auth error rather than a panic.
func currentUser(r *http.Request) (*models.User, error) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperr.Auth(apperr.CodeUnauthorized, "Unauthorized request")
	}
	return u, nil
}

// viewer returns the signed in user on optional-auth routes, or nil.
func viewer(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

func viewerID(r *http.Request) string {
	if u := viewer(r); u != nil {
		return u.ID
	}
	return ""
}

// fail writes err in the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	NewResponseWriter(w, r).AppError(err, h.debug())
}

func (h *Handler) debug() bool {
	return h.config == nil || !h.config.IsProduction()
}
