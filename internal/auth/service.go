// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
	"github.com/tomtom215/vidshare/internal/models"
)

// UserStore is the subset of the database used by the auth service.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	GetUserByLinkToken(ctx context.Context, tokenHash string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	GetUserByOAuthSubject(ctx context.Context, subject string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	HasAdmin(ctx context.Context) (bool, error)
}

// AssetStore uploads and releases user images.
type AssetStore interface {
	Upload(ctx context.Context, path, mimetype string) (*models.StoredAsset, error)
	Release(ctx context.Context, asset *models.StoredAsset)
}

// Mailer delivers account emails.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, code, linkToken string) error
	SendPasswordReset(ctx context.Context, to, name, token string) error
	EnqueueWelcome(ctx context.Context, to, name string)
}

// Service implements account, session and verification flows.
type Service struct {
	users           UserStore
	assets          AssetStore
	mailer          Mailer
	tokens          *TokenIssuer
	passwords       *PasswordHasher
	verificationTTL time.Duration
	resetTTL        time.Duration
	now             func() time.Time
}

// ServiceConfig carries the collaborators of a Service.
type ServiceConfig struct {
	Users     UserStore
	Assets    AssetStore
	Mailer    Mailer
	Tokens    *TokenIssuer
	Passwords *PasswordHasher
	Security  config.SecurityConfig
}

// NewService builds the auth service.
func NewService(cfg ServiceConfig) *Service {
	verificationTTL := cfg.Security.VerificationTTL
	if verificationTTL <= 0 || verificationTTL > 15*time.Minute {
		verificationTTL = 15 * time.Minute
	}
	resetTTL := cfg.Security.PasswordResetTTL
	if resetTTL <= 0 || resetTTL > 10*time.Minute {
		resetTTL = 10 * time.Minute
	}
	passwords := cfg.Passwords
	if passwords == nil {
		passwords = NewPasswordHasher(0)
	}
	return &Service{
		users:           cfg.Users,
		assets:          cfg.Assets,
		mailer:          cfg.Mailer,
		tokens:          cfg.Tokens,
		passwords:       passwords,
		verificationTTL: verificationTTL,
		resetTTL:        resetTTL,
		now:             time.Now,
	}
}

// Tokens exposes the issuer, mainly for cookie lifetimes.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Session is a user together with a freshly issued token pair.
type Session struct {
	User   models.PublicUser `json:"user"`
	Tokens TokenPair         `json:"tokens"`
}

// IssueTokenPair signs a new access/refresh pair for userID and stores the
// refresh token, replacing any previous one.
func (s *Service) IssueTokenPair(ctx context.Context, userID string) (*Session, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

func (s *Service) issue(ctx context.Context, u *models.User) (*Session, error) {
	access, err := s.tokens.SignAccess(u)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	refresh, err := s.tokens.SignRefresh(u.ID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong while generating tokens", err)
	}
	if err := s.users.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return nil, err
	}
	return &Session{
		User:   u.Public(),
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// VerifyAccess authenticates an access token and returns the current user.
// Missing, malformed, expired and orphaned tokens are all Auth errors.
func (s *Service) VerifyAccess(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Auth(apperr.CodeUnauthorized, "Unauthorized request")
	}
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, apperr.Auth(apperr.CodeInvalidToken, "Invalid access token")
	}
	u, err := s.users.GetUser(ctx, claims.Subject)
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Auth(apperr.CodeInvalidToken, "Invalid access token")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Refresh rotates a refresh token. The presented token must equal the one
// stored on the user; on success both tokens are replaced.
func (s *Service) Refresh(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperr.Auth(apperr.CodeUnauthorized, "Unauthorized request")
	}
	claims, err := s.tokens.ParseRefresh(token)
	switch {
	case errors.Is(err, ErrTokenExpired):
		s.recordAuth(ctx, "refresh", "", false, "expired")
		return nil, apperr.Auth(apperr.CodeTokenExpired, "Refresh token is expired")
	case err != nil:
		s.recordAuth(ctx, "refresh", "", false, "invalid")
		return nil, apperr.Auth(apperr.CodeInvalidToken, "Invalid refresh token")
	}

	u, err := s.users.GetUser(ctx, claims.Subject)
	if apperr.Is(err, apperr.KindNotFound) {
		s.recordAuth(ctx, "refresh", claims.Subject, false, "unknown user")
		return nil, apperr.Auth(apperr.CodeInvalidToken, "Invalid refresh token")
	}
	if err != nil {
		return nil, err
	}
	if u.RefreshToken == "" || u.RefreshToken != token {
		s.recordAuth(ctx, "refresh", u.ID, false, "token mismatch")
		return nil, apperr.Auth(apperr.CodeTokenExpired, "Refresh token is expired or used")
	}

	session, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.recordAuth(ctx, "refresh", u.ID, true, "")
	return session, nil
}

// Logout revokes the stored refresh token.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshToken(ctx, userID, ""); err != nil {
		return err
	}
	s.recordAuth(ctx, "logout", userID, true, "")
	return nil
}

func (s *Service) recordAuth(ctx context.Context, event, userID string, success bool, reason string) {
	metrics.RecordAuthEvent(event, success)
	logging.LogAuthEvent(ctx, logging.AuthEvent{
		Event:   event,
		UserID:  userID,
		Success: success,
		Reason:  reason,
	})
}
