// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vidshare/internal/logging"
)

// LogSender writes messages to the log instead of sending them. Used in
// development and when no provider is configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender {
	return &LogSender{logger: logging.WithComponent("notify")}
}

// Send implements Sender. The text body is logged at debug so codes and
// links are visible locally without leaking at info level.
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := validateRecipient(msg.To); err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.logger.Info().
		Str("message_id", id).
		Str("to", logging.MaskEmail(msg.To)).
		Str("subject", msg.Subject).
		Str("template", msg.Template).
		Msg("Email (log sender)")
	s.logger.Debug().Str("message_id", id).Str("body", msg.Text).Msg("Email body")
	return id, nil
}
