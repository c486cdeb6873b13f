// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package apperr defines the application error taxonomy shared by every layer.
//
// Services return *Error values (or wrap sentinels with fmt.Errorf and %w);
// the HTTP layer is the single boundary that turns them into the JSON error
// envelope. Kind decides the status code, Code is the machine-readable value
// clients switch on.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the purpose of reporting it to a client.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

// String returns the lowercase kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	default:
		return "unexpected"
	}
}

// HTTPStatus maps a Kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Machine-readable codes. Kinds without a more specific code use DefaultCode.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeInvalidCreds     = "INVALID_CREDENTIALS"
	CodeForbidden        = "FORBIDDEN"
	CodeEmailNotVerified = "EMAIL_NOT_VERIFIED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeUpstream         = "UPSTREAM_FAILURE"
	CodeInternal         = "INTERNAL_ERROR"
)

// DefaultCode returns the generic code for a kind.
func (k Kind) DefaultCode() string {
	switch k {
	case KindValidation:
		return CodeValidation
	case KindAuth:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindUpstream:
		return CodeUpstream
	default:
		return CodeInternal
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetails attaches client-visible details and returns e.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

func newError(kind Kind, code, msg string, err error) *Error {
	if code == "" {
		code = kind.DefaultCode()
	}
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

// Validation reports missing or malformed input.
func Validation(msg string) *Error { return newError(KindValidation, "", msg, nil) }

// Validationf is Validation with formatting.
func Validationf(format string, args ...interface{}) *Error {
	return newError(KindValidation, "", fmt.Sprintf(format, args...), nil)
}

// Auth reports an unauthenticated request. code may be empty.
func Auth(code, msg string) *Error { return newError(KindAuth, code, msg, nil) }

// Forbidden reports an authenticated request that may not proceed. code may be empty.
func Forbidden(code, msg string) *Error { return newError(KindForbidden, code, msg, nil) }

// NotFound reports a missing entity, e.g. NotFound("video").
func NotFound(entity string) *Error {
	return newError(KindNotFound, "", entity+" not found", nil)
}

// Conflict reports a duplicate unique field.
func Conflict(msg string) *Error { return newError(KindConflict, "", msg, nil) }

// Upstream wraps a failure of an external collaborator (storage, email).
func Upstream(msg string, err error) *Error { return newError(KindUpstream, "", msg, err) }

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error { return newError(KindUnexpected, "", msg, err) }

// Wrap classifies err under kind with a client-facing message.
func Wrap(kind Kind, msg string, err error) *Error { return newError(kind, "", msg, err) }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindUnexpected when it is unclassified.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
