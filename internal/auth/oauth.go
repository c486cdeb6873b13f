// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

// OAuth state errors
var (
	ErrStateNotFound = errors.New("oauth state not found")
	ErrStateExpired  = errors.New("oauth state expired")
)

const oauthStateTTL = 10 * time.Minute

// OAuthProfile is the identity returned by the provider. EmailVerified is the
// provider's email_verified claim.
type OAuthProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// identityProvider is the part of an OIDC relying party the flow needs.
type identityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}

// zitadelProvider adapts a zitadel relying party.
type zitadelProvider struct {
	rp rp.RelyingParty
}

func (z *zitadelProvider) AuthURL(state string) string {
	return rp.AuthURL(state, z.rp)
}

func (z *zitadelProvider) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, z.rp)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	if tokens.IDTokenClaims == nil {
		return nil, errors.New("no id token in exchange response")
	}
	claims := tokens.IDTokenClaims
	profile := &OAuthProfile{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
	if profile.Email == "" && tokens.AccessToken != "" {
		info, err := rp.Userinfo[*oidc.UserInfo](ctx, tokens.AccessToken, tokens.TokenType, claims.Subject, z.rp)
		if err != nil {
			return nil, fmt.Errorf("userinfo: %w", err)
		}
		profile.Email = info.Email
		profile.EmailVerified = bool(info.EmailVerified)
		if profile.Name == "" {
			profile.Name = info.Name
		}
		if profile.Picture == "" {
			profile.Picture = info.Picture
		}
	}
	return profile, nil
}

// stateStore holds outstanding authorization states until the callback.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *stateStore) put(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(oauthStateTTL)
}

// consume removes state and reports whether it was valid.
func (s *stateStore) consume(state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)
	if s.now().After(exp) {
		return ErrStateExpired
	}
	return nil
}

// OAuthFlow implements sign-in with an external OpenID Connect provider.
type OAuthFlow struct {
	service     *Service
	provider    identityProvider
	states      *stateStore
	cookies     *CookieJar
	frontendURL string
}

// NewOAuthFlow performs provider discovery and returns the flow. The client
// is confidential, authenticating with its secret at the token endpoint.
func NewOAuthFlow(ctx context.Context, cfg config.OAuthConfig, frontendURL string, service *Service, cookies *CookieJar) (*OAuthFlow, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}
	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.Issuer,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}
	return newOAuthFlow(&zitadelProvider{rp: relyingParty}, frontendURL, service, cookies), nil
}

func newOAuthFlow(provider identityProvider, frontendURL string, service *Service, cookies *CookieJar) *OAuthFlow {
	return &OAuthFlow{
		service:     service,
		provider:    provider,
		states:      newStateStore(),
		cookies:     cookies,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Start redirects the browser to the provider's consent page.
func (f *OAuthFlow) Start(w http.ResponseWriter, r *http.Request) {
	state, err := generateToken(16)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("OAuth state generation failed")
		f.fail(w, r)
		return
	}
	f.states.put(state)
	http.Redirect(w, r, f.provider.AuthURL(state), http.StatusFound)
}

// Callback completes the authorization code flow and redirects to the
// frontend with the session cookies set and the tokens in the fragment.
func (f *OAuthFlow) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		logging.Ctx(ctx).Warn().Str("error", e).Str("description", q.Get("error_description")).Msg("OAuth provider returned an error")
		f.fail(w, r)
		return
	}
	if err := f.states.consume(q.Get("state")); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("OAuth callback with bad state")
		f.fail(w, r)
		return
	}
	profile, err := f.provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("OAuth code exchange failed")
		f.fail(w, r)
		return
	}
	session, err := f.service.CompleteOAuthLogin(ctx, *profile)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("OAuth login failed")
		f.fail(w, r)
		return
	}

	f.cookies.Set(w, session.Tokens)
	fragment := url.Values{}
	fragment.Set("accessToken", session.Tokens.AccessToken)
	fragment.Set("refreshToken", session.Tokens.RefreshToken)
	http.Redirect(w, r, f.frontendURL+"/?auth=success#"+fragment.Encode(), http.StatusFound)
}

func (f *OAuthFlow) fail(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, f.frontendURL+"/?auth=failed", http.StatusFound)
}

// CompleteOAuthLogin finds or creates the account for an external identity
// and issues a session. Accounts are matched by OAuth subject first. Matching
// by email and creating an account both require a provider-verified email.
func (s *Service) CompleteOAuthLogin(ctx context.Context, p OAuthProfile) (*Session, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Subject == "" || p.Email == "" {
		return nil, apperr.Auth(apperr.CodeInvalidCreds, "OAuth profile is missing subject or email")
	}

	u, err := s.users.GetUserByOAuthSubject(ctx, p.Subject)
	if apperr.Is(err, apperr.KindNotFound) {
		if !p.EmailVerified {
			s.recordAuth(ctx, "oauth_login", "", false, "email not verified by provider")
			return nil, apperr.Auth(apperr.CodeInvalidCreds, "OAuth provider has not verified this email")
		}
		u, err = s.users.GetUserByEmail(ctx, p.Email)
	}
	switch {
	case err == nil:
		u, err = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
			u.OAuthSubject = p.Subject
			if !u.IsEmailVerified && p.EmailVerified && u.Email == p.Email {
				markVerified(u)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	case apperr.Is(err, apperr.KindNotFound):
		u, err = s.createOAuthUser(ctx, p)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	session, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.recordAuth(ctx, "oauth_login", u.ID, true, "")
	return session, nil
}

// createOAuthUser registers a verified account with a random password the
// user never learns. Username collisions are retried with new digits.
func (s *Service) createOAuthUser(ctx context.Context, p OAuthProfile) (*models.User, error) {
	secret, err := generateToken(24)
	if err != nil {
		return nil, apperr.Internal("failed to generate password", err)
	}
	hash, err := s.passwords.Hash(secret)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(p.Email, "@")
	}
	var avatar *models.StoredAsset
	if p.Picture != "" {
		avatar = &models.StoredAsset{
			URL:             p.Picture,
			StorageProvider: models.ProviderExternal,
			ResourceKind:    models.ResourceImage,
		}
	}

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		username, err := oauthUsername(p.Email)
		if err != nil {
			return nil, apperr.Internal("failed to generate username", err)
		}
		u := &models.User{
			Username:        username,
			Email:           p.Email,
			Fullname:        name,
			Avatar:          avatar,
			Role:            models.RoleUser,
			PasswordHash:    hash,
			IsEmailVerified: true,
			OAuthSubject:    p.Subject,
		}
		err = s.users.CreateUser(ctx, u)
		if err == nil {
			logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "register", UserID: u.ID, Identifier: u.Email, Success: true, Reason: "oauth"})
			return u, nil
		}
		if !apperr.Is(err, apperr.KindConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// oauthUsername derives a username from the email local part plus four
// random digits, trimmed to the allowed alphabet.
func oauthUsername(email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if len(base) > 24 {
		base = base[:24]
	}
	if base == "" {
		base = "user"
	}
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	return base + code[:4], nil
}
