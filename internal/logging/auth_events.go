// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package logging

import (
	"context"
	"strings"
)

// AuthEvent describes a security relevant account action.
// Identifier may be an email or username as typed by the client; it is masked
// before being written.
type AuthEvent struct {
	Event      string // e.g. "login", "refresh", "logout", "password_reset"
	UserID     string
	Identifier string
	Success    bool
	Reason     string
}

// LogAuthEvent writes an AuthEvent at info level on success and warn level on failure.
//
//nolint:gocritic // AuthEvent is small and built inline by callers
func LogAuthEvent(ctx context.Context, ev AuthEvent) {
	logger := Ctx(ctx)
	event := logger.Info()
	if !ev.Success {
		event = logger.Warn()
	}
	event = event.Str("component", "auth").Str("event", ev.Event).Bool("success", ev.Success)
	if ev.UserID != "" {
		event = event.Str("subject", ev.UserID)
	}
	if ev.Identifier != "" {
		event = event.Str("identifier", MaskEmail(ev.Identifier))
	}
	if ev.Reason != "" {
		event = event.Str("reason", ev.Reason)
	}
	event.Msg("auth event")
}

// MaskEmail hides most of the local part of an email address:
// "alice@example.com" becomes "a***@example.com". Non-email input is returned
// with everything after the first character masked.
func MaskEmail(s string) string {
	if s == "" {
		return ""
	}
	local, domain, found := strings.Cut(s, "@")
	if local == "" {
		local = "*"
	}
	masked := local[:1] + "***"
	if found {
		return masked + "@" + domain
	}
	return masked
}
