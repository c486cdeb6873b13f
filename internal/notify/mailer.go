// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
)

// Enqueuer accepts messages for background delivery.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// MailerConfig holds the values templates need.
type MailerConfig struct {
	App             string
	PublicURL       string // API base, hosts the one-click verification link
	FrontendURL     string // web client, hosts the reset page and welcome link
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Mailer renders and sends the transactional emails. Verification and reset
// mails are sent inline so the caller can report failure; the welcome mail is
// queued.
type Mailer struct {
	sender    Sender
	queue     Enqueuer
	templates *Templates
	cfg       MailerConfig
}

// NewMailer wires a mailer. queue may be nil, in which case welcome mail is
// sent inline in a goroutine.
func NewMailer(sender Sender, queue Enqueuer, templates *Templates, cfg MailerConfig) *Mailer {
	if cfg.App == "" {
		cfg.App = "Vidshare"
	}
	return &Mailer{sender: sender, queue: queue, templates: templates, cfg: cfg}
}

// VerificationLink is the one-click verification URL for token.
func (m *Mailer) VerificationLink(token string) string {
	if token == "" {
		return ""
	}
	return strings.TrimRight(m.cfg.PublicURL, "/") + "/api/v1/email/verify-link/" + url.PathEscape(token)
}

// ResetLink is the frontend password reset URL for token.
func (m *Mailer) ResetLink(token string) string {
	return strings.TrimRight(m.cfg.FrontendURL, "/") + "/reset-password/" + url.PathEscape(token)
}

// SendVerification emails the 6-digit code and, if linkToken is set, the
// one-click link.
func (m *Mailer) SendVerification(ctx context.Context, to, name, code, linkToken string) error {
	return m.send(ctx, TemplateVerification, to, "Verify your "+m.cfg.App+" account", TemplateData{
		Name:             name,
		Code:             code,
		Link:             m.VerificationLink(linkToken),
		ExpiresInMinutes: minutes(m.cfg.VerificationTTL),
	}, "Failed to send verification email")
}

// SendPasswordReset emails a reset link built from the raw token.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string) error {
	return m.send(ctx, TemplatePasswordReset, to, "Reset your "+m.cfg.App+" password", TemplateData{
		Name:             name,
		Link:             m.ResetLink(token),
		ExpiresInMinutes: minutes(m.cfg.ResetTTL),
	}, "Failed to send password reset email")
}

// EnqueueWelcome schedules the welcome email. Failures are logged only.
func (m *Mailer) EnqueueWelcome(ctx context.Context, to, name string) {
	msg, err := m.templates.Render(TemplateWelcome, to, "Welcome to "+m.cfg.App+"!", TemplateData{
		Name: name,
		Link: m.cfg.FrontendURL,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Render welcome email")
		return
	}

	if m.queue != nil {
		if err := m.queue.Enqueue(ctx, msg); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Queue welcome email")
		}
		return
	}

	reqID := logging.RequestIDFromContext(ctx)
	go func() {
		bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		bg = logging.ContextWithRequestID(bg, reqID)
		_, err := m.sender.Send(bg, msg)
		metrics.RecordEmailSend(TemplateWelcome, err)
		if err != nil {
			logging.Ctx(bg).Warn().Err(err).Msg("Welcome email failed")
		}
	}()
}

func (m *Mailer) send(ctx context.Context, template, to, subject string, data TemplateData, failMsg string) error {
	msg, err := m.templates.Render(template, to, subject, data)
	if err != nil {
		return apperr.Internal("render email", err)
	}
	id, err := m.sender.Send(ctx, msg)
	metrics.RecordEmailSend(template, err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("template", template).Str("to", logging.MaskEmail(to)).Msg("Email send failed")
		return apperr.Upstream(failMsg, err)
	}
	logging.Ctx(ctx).Debug().Str("template", template).Str("message_id", id).Msg("Email sent")
	return nil
}

func minutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Round(time.Minute) / time.Minute)
}
