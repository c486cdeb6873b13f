// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file, an optional .env file and the process environment.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Dotenv: Optional .env file merged into the process environment
//  4. Environment Variables: Override any setting via environment variables
//
// The loaded struct is constructed once at process start and handed to the
// components that need it (token issuer, storage adapters, mailer). Nothing
// below the cmd layer reads the environment directly.
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	issuer, err := auth.NewTokenIssuer(&cfg.Security, users)
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	API        APIConfig        `koanf:"api"`
	Security   SecurityConfig   `koanf:"security"`
	Database   DatabaseConfig   `koanf:"database"`
	Storage    StorageConfig    `koanf:"storage"`
	Email      EmailConfig      `koanf:"email"`
	OAuth      OAuthConfig      `koanf:"oauth"`
	Admin      AdminConfig      `koanf:"admin"`
	Authz      AuthzConfig      `koanf:"authz"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging" or "production"

	// PublicURL is the externally reachable base URL of this API, used to
	// build one-click verification links.
	PublicURL string `koanf:"public_url"`

	// FrontendURL is the web client base URL used for redirects after
	// link verification, password reset and OAuth login.
	FrontendURL string `koanf:"frontend_url"`

	// UploadDir receives multipart uploads before they are pushed to storage.
	UploadDir      string `koanf:"upload_dir"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

// APIConfig holds pagination and view counting settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// ViewDedupWindow collapses repeat views by one signed in viewer.
	// Zero counts every view.
	ViewDedupWindow time.Duration `koanf:"view_dedup_window"`
}

// SecurityConfig holds token signing, cookie and rate limit settings.
//
// Environment Variables:
//   - ACCESS_TOKEN_SECRET: HMAC secret for access tokens (required)
//   - ACCESS_TOKEN_EXPIRY: access token lifetime (default: 1h)
//   - REFRESH_TOKEN_SECRET: HMAC secret for refresh tokens (required)
//   - REFRESH_TOKEN_EXPIRY: refresh token lifetime (default: 168h)
//   - CORS_ORIGINS: comma separated list of allowed origins
type SecurityConfig struct {
	AccessTokenSecret  string        `koanf:"access_token_secret"`
	AccessTokenTTL     time.Duration `koanf:"access_token_ttl"`
	RefreshTokenSecret string        `koanf:"refresh_token_secret"`
	RefreshTokenTTL    time.Duration `koanf:"refresh_token_ttl"`

	// VerificationTTL bounds both the 6 digit code and the link token.
	VerificationTTL time.Duration `koanf:"verification_ttl"`
	// PasswordResetTTL bounds the reset token lifetime.
	PasswordResetTTL time.Duration `koanf:"password_reset_ttl"`

	CookieDomain string `koanf:"cookie_domain"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// DatabaseConfig selects and configures the document store backend.
type DatabaseConfig struct {
	Driver   string `koanf:"driver"` // "badger" or "mongo"
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	MongoURI      string        `koanf:"mongo_uri"`
	MongoDatabase string        `koanf:"mongo_database"`
	MongoTimeout  time.Duration `koanf:"mongo_timeout"`

	// GCInterval controls how often the badger value log is compacted.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// StorageConfig configures the media storage providers and the order in
// which the fallback router tries them.
type StorageConfig struct {
	// Order lists provider names, most preferred first.
	Order       []string        `koanf:"order"`
	MediaHost   MediaHostConfig `koanf:"media_host"`
	S3          S3Config        `koanf:"s3"`
	FFProbePath string          `koanf:"ffprobe_path"`
}

// MediaHostConfig holds credentials for the Cloudinary compatible media host.
type MediaHostConfig struct {
	CloudName string        `koanf:"cloud_name"`
	APIKey    string        `koanf:"api_key"`
	APISecret string        `koanf:"api_secret"`
	BaseURL   string        `koanf:"base_url"`
	Folder    string        `koanf:"folder"`
	Timeout   time.Duration `koanf:"timeout"`
}

// Configured reports whether enough credentials are present to use the host.
func (m MediaHostConfig) Configured() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

// S3Config holds settings for the S3 object store.
type S3Config struct {
	Region          string `koanf:"region"`
	Bucket          string `koanf:"bucket"`
	Endpoint        string `koanf:"endpoint"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	PublicBaseURL   string `koanf:"public_base_url"`
	UsePathStyle    bool   `koanf:"use_path_style"`
}

// Configured reports whether a bucket and region are set.
func (s S3Config) Configured() bool {
	return s.Bucket != "" && s.Region != ""
}

// EmailConfig configures outbound transactional email.
type EmailConfig struct {
	Provider     string  `koanf:"provider"` // "smtp", "resend" or "log"
	From         string  `koanf:"from"`
	FromName     string  `koanf:"from_name"`
	SMTPHost     string  `koanf:"smtp_host"`
	SMTPPort     int     `koanf:"smtp_port"`
	SMTPUser     string  `koanf:"smtp_user"`
	SMTPPassword string  `koanf:"smtp_password"`
	SMTPUseTLS   bool    `koanf:"smtp_use_tls"`
	ResendAPIKey string  `koanf:"resend_api_key"`
	SendRate     float64 `koanf:"send_rate"` // messages per second for queued mail
	SendBurst    int     `koanf:"send_burst"`
}

// OAuthConfig holds the OpenID Connect relying party settings used for
// "sign in with Google".
type OAuthConfig struct {
	Enabled      bool     `koanf:"enabled"`
	Issuer       string   `koanf:"issuer"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
}

// AdminConfig describes the root administrator created on first start.
type AdminConfig struct {
	BootstrapEmail    string `koanf:"bootstrap_email"`
	BootstrapUsername string `koanf:"bootstrap_username"`
	BootstrapPassword string `koanf:"bootstrap_password"`
}

// AuthzConfig points at optional Casbin model and policy files.
// When empty the embedded defaults are used.
type AuthzConfig struct {
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig tunes the suture supervisor tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads configuration using layered sources:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. .env file (DOTENV_PATH or ./.env, if present)
//  4. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
