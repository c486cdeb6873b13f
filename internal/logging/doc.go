// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package logging provides centralized zerolog-based structured logging for Vidshare.
//
// The package provides:
//   - A global zerolog logger configured once from config.LoggingConfig
//   - Request-scoped loggers carrying request_id and correlation_id
//   - An slog adapter for the suture supervisor (sutureslog)
//   - A watermill.LoggerAdapter so the email queue logs through zerolog
//   - Auth event helpers that mask email addresses before they are written
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("user_id", id).Msg("User registered")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Asset delete failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event is
// never written.
//
// # Field Names
//
// time, level, message, error and caller are used consistently so that log
// pipelines can parse every component the same way. Components add a
// "component" field through WithComponent.
package logging
