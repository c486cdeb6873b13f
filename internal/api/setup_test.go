// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/videos"
)

const testPassword = "correct-horse-battery"

// recordingMailer keeps the last verification code per address.
type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *recordingMailer) SendVerification(_ context.Context, to, _, code, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *recordingMailer) SendPasswordReset(context.Context, string, string, string) error {
	return nil
}

func (m *recordingMailer) EnqueueWelcome(context.Context, string, string) {}

func (m *recordingMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

// memoryAssets pretends every upload lands on the primary provider.
type memoryAssets struct {
	mu       sync.Mutex
	released []string
}

func (a *memoryAssets) Upload(_ context.Context, path, mimetype string) (*models.StoredAsset, error) {
	return &models.StoredAsset{
		URL:             "https://cdn.example.com/" + path,
		PublicID:        path,
		StorageProvider: models.ProviderPrimary,
		ResourceKind:    models.ResourceKindFor(mimetype),
		DurationSeconds: 12,
	}, nil
}

func (a *memoryAssets) Release(_ context.Context, asset *models.StoredAsset) {
	if !asset.Deletable() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = append(a.released, asset.PublicID)
}

func (a *memoryAssets) ThumbnailURL(asset models.StoredAsset) string {
	return asset.URL + ".jpg"
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	auth    *auth.Service
	mailer  *recordingMailer
	assets  *memoryAssets
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := docstore.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db := database.New(store)
	t.Cleanup(func() { _ = db.Close() })

	security := config.SecurityConfig{
		AccessTokenSecret:  "access-secret-that-is-at-least-32-characters",
		RefreshTokenSecret: "refresh-secret-that-is-at-least-32-characters",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    time.Hour,
		RateLimitDisabled:  true,
	}
	issuer, err := auth.NewTokenIssuer(&security)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	mailer := &recordingMailer{codes: map[string]string{}}
	assets := &memoryAssets{}
	authSvc := auth.NewService(auth.ServiceConfig{
		Users:     db,
		Assets:    assets,
		Mailer:    mailer,
		Tokens:    issuer,
		Passwords: auth.NewPasswordHasher(bcrypt.MinCost),
		Security:  security,
	})

	cfg := &config.Config{}
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.FrontendURL = "https://app.example.com"

	h := NewHandler(HandlerDeps{
		DB:      db,
		Auth:    authSvc,
		Videos:  videos.NewService(db, assets),
		Assets:  assets,
		Cookies: auth.NewCookieJar(issuer, false, ""),
		Config:  cfg,
		Version: "test",
	})
	writeErr := ErrorWriter(true)
	router := NewRouter(h, NewChiMiddlewareFromConfig(security), auth.NewMiddleware(authSvc, writeErr), nil)

	return &testServer{
		t:       t,
		handler: router.SetupChi(),
		auth:    authSvc,
		mailer:  mailer,
		assets:  assets,
	}
}

// do sends a JSON request, optionally authenticated, and decodes the envelope.
func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(req)
}

func (s *testServer) send(req *http.Request) (*httptest.ResponseRecorder, APIResponse) {
	s.t.Helper()
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var resp APIResponse
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			s.t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, resp
}

// register creates an account through the API and returns its access token.
func (s *testServer) register(username string) string {
	s.t.Helper()
	rec, resp := s.do(http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"fullname": "Test " + username,
		"email":    username + "@example.com",
		"username": username,
		"password": testPassword,
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	return accessToken(s.t, resp)
}

// registerVerified registers and verifies by code, then logs in.
func (s *testServer) registerVerified(username string) string {
	s.t.Helper()
	s.register(username)
	email := username + "@example.com"
	rec, _ := s.do(http.MethodPost, "/api/v1/email/verify", "", map[string]string{
		"email": email,
		"code":  s.mailer.code(email),
	})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("verify %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	return s.login(email)
}

func (s *testServer) login(identifier string) string {
	s.t.Helper()
	rec, resp := s.do(http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"identifier": identifier,
		"password":   testPassword,
	})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: status %d body %s", identifier, rec.Code, rec.Body.String())
	}
	return accessToken(s.t, resp)
}

func accessToken(t *testing.T, resp APIResponse) string {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	tokens, ok := data["tokens"].(map[string]interface{})
	if !ok {
		t.Fatalf("tokens missing in %v", data)
	}
	token, _ := tokens["accessToken"].(string)
	if token == "" {
		t.Fatalf("accessToken missing in %v", tokens)
	}
	return token
}

// dataField reads a top-level field of an object payload.
func dataField(t *testing.T, resp APIResponse, name string) interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T, want object", resp.Data)
	}
	return data[name]
}

func errorCode(resp APIResponse) string {
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}
