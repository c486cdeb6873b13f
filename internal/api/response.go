// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

// APIResponse is the standardized response wrapper for all API endpoints.
type APIResponse struct {
	// Success indicates whether the request was successful
	Success bool `json:"success"`

	// Data contains the response payload (null on error)
	Data interface{} `json:"data,omitempty"`

	// Error contains error details (null on success)
	Error *APIError `json:"error,omitempty"`

	// Meta contains optional metadata about the response
	Meta *APIMeta `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details interface{} `json:"details,omitempty"`

	// Cause is the wrapped internal error. Only filled outside production.
	Cause string `json:"cause,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta contains optional response metadata.
type APIMeta struct {
	RequestID  string          `json:"request_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	DurationMs int64           `json:"duration_ms,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta describes one page of a paginated list.
type PaginationMeta struct {
	Total      int  `json:"total"`
	Count      int  `json:"count"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// Error codes produced by the HTTP layer itself. Service errors carry the
// codes defined in apperr.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ResponseWriter provides methods for writing standardized API responses.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  logging.RequestIDFromContext(rw.r.Context()),
		Timestamp:  time.Now(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// Created writes a 201 response with data.
func (rw *ResponseWriter) Created(data interface{}) {
	rw.writeJSON(http.StatusCreated, APIResponse{Success: true, Data: data, Meta: rw.meta()})
}

// SuccessWithPagination writes a 200 response carrying a list and its
// pagination metadata.
func (rw *ResponseWriter) SuccessWithPagination(data interface{}, pagination *PaginationMeta) {
	meta := rw.meta()
	meta.Pagination = pagination
	rw.writeJSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	rw.writeError(statusCode, &APIError{Code: code, Message: message, Details: details})
}

func (rw *ResponseWriter) writeError(statusCode int, apiErr *APIError) {
	meta := rw.meta()
	apiErr.RequestID = meta.RequestID
	rw.writeJSON(statusCode, APIResponse{Success: false, Error: apiErr, Meta: meta})
}

// AppError classifies err and writes it. Unclassified errors become a
// generic 500 and are logged with their cause; the cause is echoed to the
// client only when debug is set.
func (rw *ResponseWriter) AppError(err error, debug bool) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("Something went wrong", err)
	}
	status := appErr.Kind.HTTPStatus()

	logger := logging.Ctx(rw.r.Context())
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("kind", appErr.Kind.String()).
		Str("code", appErr.Code).
		Int("status", status).
		Msg("Request failed")

	apiErr := &APIError{Code: appErr.Code, Message: appErr.Message}
	if len(appErr.Details) > 0 {
		apiErr.Details = appErr.Details
	}
	if debug && appErr.Err != nil {
		apiErr.Cause = appErr.Err.Error()
	}
	rw.writeError(status, apiErr)
}

// writeJSON writes JSON response with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// paginationOf builds the metadata for p.
func paginationOf[T any](p models.Page[T]) *PaginationMeta {
	return &PaginationMeta{
		Total:      p.Total,
		Count:      len(p.Items),
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		HasMore:    p.Page < p.TotalPages,
	}
}

// writePage writes the items of p with pagination metadata.
func writePage[T any](w http.ResponseWriter, r *http.Request, p models.Page[T]) {
	NewResponseWriter(w, r).SuccessWithPagination(p.Items, paginationOf(p))
}

// ErrorWriter returns an auth.ErrorWriter rendering errors in the response
// envelope. It is shared by the auth gate and the admin authorizer so that
// rejected requests look like every other error.
func ErrorWriter(debug bool) auth.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		NewResponseWriter(w, r).AppError(err, debug)
	}
}
