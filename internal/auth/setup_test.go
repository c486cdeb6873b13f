// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

const testPassword = "correct-horse-battery"

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		AccessTokenSecret:  "access-secret-that-is-at-least-32-characters",
		RefreshTokenSecret: "refresh-secret-that-is-at-least-32-characters",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
		VerificationTTL:    15 * time.Minute,
		PasswordResetTTL:   10 * time.Minute,
	}
}

// fakeMailer records the last verification and reset secrets per address.
type fakeMailer struct {
	mu       sync.Mutex
	codes    map[string]string
	links    map[string]string
	resets   map[string]string
	welcomes []string
	failWith error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: map[string]string{}, links: map[string]string{}, resets: map[string]string{}}
}

func (m *fakeMailer) SendVerification(_ context.Context, to, _, code, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.codes[to] = code
	m.links[to] = link
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.resets[to] = token
	return nil
}

func (m *fakeMailer) EnqueueWelcome(_ context.Context, to, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, to)
}

func (m *fakeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

func (m *fakeMailer) link(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[to]
}

func (m *fakeMailer) reset(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets[to]
}

func (m *fakeMailer) welcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.welcomes)
}

// fakeAssets hands out primary assets and records releases.
type fakeAssets struct {
	mu        sync.Mutex
	uploadErr error
	uploads   int
	released  []string
}

func (a *fakeAssets) Upload(_ context.Context, path, mimetype string) (*models.StoredAsset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.uploadErr != nil {
		return nil, a.uploadErr
	}
	a.uploads++
	return &models.StoredAsset{
		URL:             "https://media.example.com/" + path,
		PublicID:        path,
		StorageProvider: models.ProviderPrimary,
		ResourceKind:    models.ResourceKindFor(mimetype),
	}, nil
}

func (a *fakeAssets) Release(_ context.Context, asset *models.StoredAsset) {
	if !asset.Deletable() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = append(a.released, asset.PublicID)
}

type testEnv struct {
	svc    *Service
	db     *database.DB
	mailer *fakeMailer
	assets *fakeAssets
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	store, err := docstore.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db := database.New(store)
	t.Cleanup(func() { _ = db.Close() })

	issuer, err := NewTokenIssuer(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	env := &testEnv{db: db, mailer: newFakeMailer(), assets: &fakeAssets{}}
	env.svc = NewService(ServiceConfig{
		Users:     db,
		Assets:    env.assets,
		Mailer:    env.mailer,
		Tokens:    issuer,
		Passwords: NewPasswordHasher(bcrypt.MinCost),
		Security:  *testSecurityConfig(),
	})
	return env
}

// register creates an account through the public flow.
func (e *testEnv) register(t *testing.T, username string) *Session {
	t.Helper()
	session, err := e.svc.Register(context.Background(), RegisterInput{
		Fullname: "Test " + username,
		Email:    username + "@example.com",
		Username: username,
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return session
}

// registerVerified creates an account and verifies it by code.
func (e *testEnv) registerVerified(t *testing.T, username string) *Session {
	t.Helper()
	session := e.register(t, username)
	email := username + "@example.com"
	if _, err := e.svc.VerifyCode(context.Background(), VerifyCodeInput{Email: email, Code: e.mailer.code(email)}); err != nil {
		t.Fatalf("VerifyCode(%s): %v", username, err)
	}
	return session
}

func checkCode(t *testing.T, err error, kind apperr.Kind, code string) {
	t.Helper()
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("error = %v, want apperr %s", err, kind)
	}
	if appErr.Kind != kind {
		t.Fatalf("kind = %s, want %s (%v)", appErr.Kind, kind, err)
	}
	if code != "" && appErr.Code != code {
		t.Fatalf("code = %s, want %s", appErr.Code, code)
	}
}

var errMailDown = errors.New("mail server down")
