// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared. Besides the built-in
// tags it registers:
//
//	sixdigits  exactly six ASCII digits (email verification codes)
//	username   3-30 chars of [a-z0-9_.]
//	notblank   non-empty after trimming whitespace
//
// Field names in error messages follow the json/form/query tag so that
// clients see the same names they sent. Failures convert to an
// apperr.KindValidation error through ToAppError.
//
//	type VerifyEmailRequest struct {
//	    Email string `json:"email" validate:"required,email"`
//	    Code  string `json:"code" validate:"required,sixdigits"`
//	}
package validation
