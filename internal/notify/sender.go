// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/tomtom215/vidshare/internal/config"
)

// Message is a rendered email ready to send.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text,omitempty"`
	// Template names the template the message was rendered from, for metrics.
	Template string `json:"template"`
}

// Sender delivers a single message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ErrInvalidRecipient is returned for a malformed To address.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.Provider {
	case "smtp":
		return NewSMTPSender(cfg), nil
	case "resend":
		return NewResendSender(cfg), nil
	case "log", "":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func validateRecipient(to string) error {
	if strings.TrimSpace(to) == "" {
		return ErrInvalidRecipient
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipient, err.Error())
	}
	return nil
}

// fromHeader formats the sender as `Name <addr>`.
func fromHeader(name, addr string) string {
	if name == "" {
		return addr
	}
	return (&mail.Address{Name: name, Address: addr}).String()
}
