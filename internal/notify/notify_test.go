// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	resend "github.com/resend/resend-go/v2"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
)

// recordingSender captures messages and optionally fails.
type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
	sent chan Message
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan Message, 16)}
}

func (s *recordingSender) Send(_ context.Context, msg Message) (string, error) {
	s.mu.Lock()
	s.msgs = append(s.msgs, msg)
	err := s.err
	s.mu.Unlock()
	s.sent <- msg
	if err != nil {
		return "", err
	}
	return "msg-1", nil
}

func mustTemplates(t *testing.T) *Templates {
	t.Helper()
	tpl, err := NewTemplates("Vidshare")
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}
	return tpl
}

func TestTemplatesRender(t *testing.T) {
	t.Parallel()
	tpl := mustTemplates(t)

	tests := []struct {
		name     string
		template string
		data     TemplateData
		wantHTML []string
		wantText []string
	}{
		{
			name:     "verification with link",
			template: TemplateVerification,
			data:     TemplateData{Name: "Ada", Code: "123456", Link: "https://api.example.com/api/v1/email/verify-link/tok", ExpiresInMinutes: 15},
			wantHTML: []string{"123456", "verify-link/tok", "15 minutes", "Hi Ada"},
			wantText: []string{"123456", "verify-link/tok"},
		},
		{
			name:     "verification without link",
			template: TemplateVerification,
			data:     TemplateData{Name: "Ada", Code: "654321", ExpiresInMinutes: 15},
			wantHTML: []string{"654321"},
			wantText: []string{"654321"},
		},
		{
			name:     "reset",
			template: TemplatePasswordReset,
			data:     TemplateData{Name: "Bob", Link: "https://app.example.com/reset-password/abc", ExpiresInMinutes: 10},
			wantHTML: []string{"reset-password/abc", "10 minutes"},
			wantText: []string{"reset-password/abc"},
		},
		{
			name:     "welcome escapes names",
			template: TemplateWelcome,
			data:     TemplateData{Name: "<script>x</script>", Link: "https://app.example.com"},
			wantHTML: []string{"&lt;script&gt;", "Welcome to Vidshare"},
			wantText: []string{"Start exploring"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg, err := tpl.Render(tt.template, "a@example.com", "subject", tt.data)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, want := range tt.wantHTML {
				if !strings.Contains(msg.HTML, want) {
					t.Errorf("html missing %q", want)
				}
			}
			for _, want := range tt.wantText {
				if !strings.Contains(msg.Text, want) {
					t.Errorf("text missing %q", want)
				}
			}
			if msg.Template != tt.template || msg.To != "a@example.com" {
				t.Errorf("message = %+v", msg)
			}
		})
	}

	if strings.Contains(mustRender(t, tpl, TemplateVerification, TemplateData{Code: "1"}).HTML, "one click") {
		t.Error("link block rendered without a link")
	}
	if _, err := tpl.Render("nope", "a@example.com", "s", TemplateData{}); err == nil {
		t.Error("expected unknown template error")
	}
}

func mustRender(t *testing.T, tpl *Templates, name string, data TemplateData) Message {
	t.Helper()
	msg, err := tpl.Render(name, "a@example.com", "s", data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return msg
}

func newTestMailer(t *testing.T, sender Sender, queue Enqueuer) *Mailer {
	t.Helper()
	return NewMailer(sender, queue, mustTemplates(t), MailerConfig{
		App:             "Vidshare",
		PublicURL:       "https://api.example.com/",
		FrontendURL:     "https://app.example.com",
		VerificationTTL: 15 * time.Minute,
		ResetTTL:        10 * time.Minute,
	})
}

func TestMailerSendVerification(t *testing.T) {
	t.Parallel()
	sender := newRecordingSender()
	m := newTestMailer(t, sender, nil)

	if err := m.SendVerification(context.Background(), "ada@example.com", "Ada", "042042", "linktok"); err != nil {
		t.Fatalf("SendVerification: %v", err)
	}
	msg := <-sender.sent
	if !strings.Contains(msg.HTML, "https://api.example.com/api/v1/email/verify-link/linktok") {
		t.Errorf("verification link missing from html")
	}
	if !strings.Contains(msg.Text, "042042") || msg.Subject != "Verify your Vidshare account" {
		t.Errorf("message = %+v", msg)
	}
}

func TestMailerSendFailureIsUpstream(t *testing.T) {
	t.Parallel()
	sender := newRecordingSender()
	sender.err = errors.New("relay down")
	m := newTestMailer(t, sender, nil)

	err := m.SendPasswordReset(context.Background(), "bob@example.com", "Bob", "raw")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("error = %v, want upstream", err)
	}
	msg := <-sender.sent
	if !strings.Contains(msg.Text, "https://app.example.com/reset-password/raw") {
		t.Errorf("reset link missing: %q", msg.Text)
	}
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []Message
}

func (q *recordingQueue) Enqueue(_ context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func TestMailerEnqueueWelcome(t *testing.T) {
	t.Parallel()

	t.Run("queued", func(t *testing.T) {
		t.Parallel()
		q := &recordingQueue{}
		m := newTestMailer(t, newRecordingSender(), q)
		m.EnqueueWelcome(context.Background(), "ada@example.com", "Ada")
		if len(q.msgs) != 1 || q.msgs[0].Template != TemplateWelcome {
			t.Fatalf("queued = %+v", q.msgs)
		}
	})

	t.Run("inline fallback swallows failures", func(t *testing.T) {
		t.Parallel()
		sender := newRecordingSender()
		sender.err = errors.New("boom")
		m := newTestMailer(t, sender, nil)
		m.EnqueueWelcome(context.Background(), "ada@example.com", "Ada")
		select {
		case msg := <-sender.sent:
			if msg.Template != TemplateWelcome {
				t.Errorf("template = %q", msg.Template)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("welcome email never attempted")
		}
	})
}

func TestQueueDeliversAndSurvivesFailures(t *testing.T) {
	t.Parallel()
	sender := newRecordingSender()
	q := NewQueue(sender, QueueConfig{SendRate: 100, SendBurst: 10})
	t.Cleanup(func() { _ = q.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	select {
	case <-q.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("queue never became ready")
	}

	sender.mu.Lock()
	sender.err = errors.New("first send fails")
	sender.mu.Unlock()
	if err := q.Enqueue(context.Background(), Message{To: "a@example.com", Template: TemplateWelcome}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitForSend(t, sender)

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	if err := q.Enqueue(context.Background(), Message{To: "b@example.com", Template: TemplateWelcome}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if got := waitForSend(t, sender); got.To != "b@example.com" {
		t.Errorf("second message to = %q", got.To)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("queue did not stop")
	}
}

func waitForSend(t *testing.T, s *recordingSender) Message {
	t.Helper()
	select {
	case msg := <-s.sent:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
		return Message{}
	}
}

type fakeEmails struct {
	req *resend.SendEmailRequest
	err error
}

func (f *fakeEmails) Send(req *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "re_123"}, nil
}

func TestResendSender(t *testing.T) {
	t.Parallel()
	api := &fakeEmails{}
	s := NewResendSender(config.EmailConfig{From: "no-reply@example.com", FromName: "Vidshare", ResendAPIKey: "re_key"})
	s.emails = api

	id, err := s.Send(context.Background(), Message{To: "ada@example.com", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "re_123" {
		t.Errorf("id = %q", id)
	}
	if api.req.From != `"Vidshare" <no-reply@example.com>` || api.req.To[0] != "ada@example.com" || api.req.Html != "<p>x</p>" {
		t.Errorf("request = %+v", api.req)
	}

	if _, err := s.Send(context.Background(), Message{To: "not-an-address"}); !errors.Is(err, ErrInvalidRecipient) {
		t.Errorf("error = %v, want ErrInvalidRecipient", err)
	}
}

func TestSMTPBuildMessage(t *testing.T) {
	t.Parallel()
	s := NewSMTPSender(config.EmailConfig{From: "no-reply@example.com", FromName: "Vidshare", SMTPHost: "smtp.example.com"})

	both := s.buildMessage("<id@example.com>", Message{To: "a@example.com", Subject: "S", HTML: "<b>h</b>", Text: "t"})
	for _, want := range []string{"multipart/alternative", "text/plain", "text/html", "Subject: S\r\n", "Message-ID: <id@example.com>"} {
		if !strings.Contains(both, want) {
			t.Errorf("message missing %q", want)
		}
	}
	htmlOnly := s.buildMessage("<id@example.com>", Message{To: "a@example.com", Subject: "S", HTML: "<b>h</b>"})
	if strings.Contains(htmlOnly, "multipart") || !strings.Contains(htmlOnly, "text/html") {
		t.Errorf("html-only message wrong:\n%s", htmlOnly)
	}
	if s.domain() != "example.com" {
		t.Errorf("domain = %q", s.domain())
	}
}

func TestNewSender(t *testing.T) {
	t.Parallel()
	tests := []struct {
		provider string
		wantType string
		wantErr  bool
	}{
		{"smtp", "*notify.SMTPSender", false},
		{"resend", "*notify.ResendSender", false},
		{"log", "*notify.LogSender", false},
		{"", "*notify.LogSender", false},
		{"pigeon", "", true},
	}
	for _, tt := range tests {
		s, err := NewSender(config.EmailConfig{Provider: tt.provider})
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.provider, err)
			continue
		}
		if err == nil {
			if got := typeName(s); got != tt.wantType {
				t.Errorf("%q: type = %s, want %s", tt.provider, got, tt.wantType)
			}
		}
	}
}

func typeName(s Sender) string {
	switch s.(type) {
	case *SMTPSender:
		return "*notify.SMTPSender"
	case *ResendSender:
		return "*notify.ResendSender"
	case *LogSender:
		return "*notify.LogSender"
	default:
		return "unknown"
	}
}

func TestLogSender(t *testing.T) {
	t.Parallel()
	id, err := NewLogSender().Send(context.Background(), Message{To: "ada@example.com", Subject: "x"})
	if err != nil || id == "" {
		t.Errorf("Send = %q, %v", id, err)
	}
}
