// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"
	"fmt"

	resend "github.com/resend/resend-go/v2"

	"github.com/tomtom215/vidshare/internal/config"
)

// emailsAPI is the part of the Resend client we call.
type emailsAPI interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	from   string
	emails emailsAPI
}

// NewResendSender creates a Resend sender.
func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{
		from:   fromHeader(cfg.FromName, cfg.From),
		emails: resend.NewClient(cfg.ResendAPIKey).Emails,
	}
}

// Send implements Sender. The Resend client has no context support, so
// cancellation is only checked before the call.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := validateRecipient(msg.To); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return resp.Id, nil
}
