// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names carrying the token pair.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieJar sets and clears the session cookies.
type CookieJar struct {
	Secure     bool
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewCookieJar returns a jar for the issuer's lifetimes. Secure cookies are
// only set in production so local HTTP development keeps working.
func NewCookieJar(issuer *TokenIssuer, production bool, domain string) *CookieJar {
	return &CookieJar{
		Secure:     production,
		Domain:     domain,
		AccessTTL:  issuer.AccessTTL(),
		RefreshTTL: issuer.RefreshTTL(),
	}
}

func (j *CookieJar) cookie(name, value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if !j.Secure {
		// Browsers reject SameSite=None without Secure.
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   j.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: sameSite,
	}
}

// Set writes both token cookies.
func (j *CookieJar) Set(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, j.cookie(AccessCookie, pair.AccessToken, int(j.AccessTTL.Seconds())))
	http.SetCookie(w, j.cookie(RefreshCookie, pair.RefreshToken, int(j.RefreshTTL.Seconds())))
}

// Clear expires both token cookies.
func (j *CookieJar) Clear(w http.ResponseWriter) {
	http.SetCookie(w, j.cookie(AccessCookie, "", -1))
	http.SetCookie(w, j.cookie(RefreshCookie, "", -1))
}

// AccessTokenFromRequest reads the access token from the cookie, falling
// back to an "Authorization: Bearer" header.
func AccessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RefreshTokenFromRequest reads the refresh token from its cookie.
// Callers fall back to the request body.
func RefreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(RefreshCookie); err == nil {
		return c.Value
	}
	return ""
}
