// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package config

import (
	"fmt"
	"strings"
)

// minSecretLength is the minimum HMAC secret length accepted in production.
const minSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	if err := c.validateOAuth(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.FrontendURL != "" {
		if err := validateHTTPURL(c.Server.FrontendURL, "FRONTEND_URL"); err != nil {
			return err
		}
	}
	if c.Server.PublicURL != "" {
		if err := validateHTTPURL(c.Server.PublicURL, "PUBLIC_URL"); err != nil {
			return err
		}
	}
	if c.API.DefaultPageSize < 1 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be >= 1 and <= API_MAX_PAGE_SIZE")
	}
	if c.API.ViewDedupWindow < 0 {
		return fmt.Errorf("VIEW_DEDUP_WINDOW must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if s.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if s.AccessTokenSecret == s.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.IsProduction() {
		if len(s.AccessTokenSecret) < minSecretLength {
			return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d characters in production", minSecretLength)
		}
		if len(s.RefreshTokenSecret) < minSecretLength {
			return fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d characters in production", minSecretLength)
		}
	}
	if s.AccessTokenTTL <= 0 || s.RefreshTokenTTL <= s.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRY must be longer than ACCESS_TOKEN_EXPIRY")
	}
	if s.VerificationTTL <= 0 || s.VerificationTTL > defaultConfig().Security.VerificationTTL {
		return fmt.Errorf("VERIFICATION_TTL must be positive and at most 15m")
	}
	if s.PasswordResetTTL <= 0 || s.PasswordResetTTL > defaultConfig().Security.PasswordResetTTL {
		return fmt.Errorf("PASSWORD_RESET_TTL must be positive and at most 10m")
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs < 1 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "badger":
		if !c.Database.InMemory && c.Database.Path == "" {
			return fmt.Errorf("BADGER_PATH is required when DB_DRIVER=badger")
		}
	case "mongo":
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when DB_DRIVER=mongo")
		}
		if c.Database.MongoDatabase == "" {
			return fmt.Errorf("MONGODB_DB is required when DB_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be badger or mongo, got %q", c.Database.Driver)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if len(c.Storage.Order) == 0 {
		return fmt.Errorf("STORAGE_ORDER must name at least one provider")
	}
	seen := make(map[string]bool, len(c.Storage.Order))
	for _, name := range c.Storage.Order {
		name = strings.ToLower(name)
		if name != ProviderMediaHost && name != ProviderS3 {
			return fmt.Errorf("STORAGE_ORDER contains unknown provider %q", name)
		}
		if seen[name] {
			return fmt.Errorf("STORAGE_ORDER lists %q twice", name)
		}
		seen[name] = true
	}
	if c.Storage.MediaHost.BaseURL != "" {
		if err := validateHTTPURL(c.Storage.MediaHost.BaseURL, "CLOUDINARY_BASE_URL"); err != nil {
			return err
		}
	}
	if c.IsProduction() {
		if seen[ProviderMediaHost] && !c.Storage.MediaHost.Configured() {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required in production")
		}
		if seen[ProviderS3] && !c.Storage.S3.Configured() {
			return fmt.Errorf("AWS_REGION and AWS_BUCKET_NAME are required in production")
		}
	}
	return nil
}

func (c *Config) validateEmail() error {
	e := c.Email
	switch e.Provider {
	case "log":
		if c.IsProduction() {
			return fmt.Errorf("EMAIL_PROVIDER=log is not allowed in production")
		}
	case "smtp":
		if e.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER=smtp")
		}
		if e.SMTPPort < 1 || e.SMTPPort > 65535 {
			return fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %d", e.SMTPPort)
		}
	case "resend":
		if e.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be smtp, resend or log, got %q", e.Provider)
	}
	if e.From == "" {
		return fmt.Errorf("EMAIL_FROM is required")
	}
	if e.SendRate <= 0 {
		return fmt.Errorf("EMAIL_SEND_RATE must be positive")
	}
	return nil
}

func (c *Config) validateOAuth() error {
	if !c.OAuth.Enabled {
		return nil
	}
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required when GOOGLE_OAUTH_ENABLED=true")
	}
	if err := validateHTTPURL(c.OAuth.Issuer, "GOOGLE_ISSUER"); err != nil {
		return err
	}
	if c.OAuth.RedirectURL == "" {
		return fmt.Errorf("GOOGLE_CALLBACK_URL is required when GOOGLE_OAUTH_ENABLED=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
