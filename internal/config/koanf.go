// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vidshare/config.yaml",
	"/etc/vidshare/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotenvPathEnvVar overrides the location of the optional .env file.
const DotenvPathEnvVar = "DOTENV_PATH"

// Provider names accepted in StorageConfig.Order.
const (
	ProviderMediaHost = "mediahost"
	ProviderS3        = "s3"
)

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8000,
			Host:           "0.0.0.0",
			Timeout:        30 * time.Second,
			Environment:    "development",
			PublicURL:      "http://localhost:8000",
			FrontendURL:    "http://localhost:5173",
			UploadDir:      os.TempDir(),
			MaxUploadBytes: 512 << 20,
		},
		API: APIConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
			ViewDedupWindow: 30 * time.Second,
		},
		Security: SecurityConfig{
			AccessTokenTTL:    time.Hour,
			RefreshTokenTTL:   7 * 24 * time.Hour,
			VerificationTTL:   15 * time.Minute,
			PasswordResetTTL:  10 * time.Minute,
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Driver:        "badger",
			Path:          "/data/vidshare",
			MongoDatabase: "vidshare",
			MongoTimeout:  10 * time.Second,
			GCInterval:    10 * time.Minute,
		},
		Storage: StorageConfig{
			Order: []string{ProviderMediaHost, ProviderS3},
			MediaHost: MediaHostConfig{
				BaseURL: "https://api.cloudinary.com",
				Folder:  "vidshare",
				Timeout: 5 * time.Minute,
			},
			S3: S3Config{
				Region: "us-east-1",
			},
			FFProbePath: "ffprobe",
		},
		Email: EmailConfig{
			Provider:   "log",
			From:       "no-reply@vidshare.local",
			FromName:   "Vidshare",
			SMTPPort:   587,
			SMTPUseTLS: true,
			SendRate:   5,
			SendBurst:  5,
		},
		OAuth: OAuthConfig{
			Enabled: false,
			Issuer:  "https://accounts.google.com",
			Scopes:  []string{"openid", "profile", "email"},
		},
		Admin: AdminConfig{
			BootstrapUsername: "admin",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Dotenv: Optional .env file, never overriding variables already set
//  4. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Merge .env into the process environment (optional)
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	// Layer 4: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotenv merges a .env file into the environment. A missing file is not an error.
func loadDotenv() error {
	path := os.Getenv(DotenvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load dotenv file %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"storage.order",
	"oauth.scopes",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// The names follow the variables the web client deployment already uses.
var envMappings = map[string]string{
	// Server
	"port":             "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"environment":      "server.environment",
	"public_url":       "server.public_url",
	"frontend_url":     "server.frontend_url",
	"upload_dir":       "server.upload_dir",
	"max_upload_bytes": "server.max_upload_bytes",

	// API
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",
	"view_dedup_window":     "api.view_dedup_window",

	// Security
	"access_token_secret":  "security.access_token_secret",
	"access_token_expiry":  "security.access_token_ttl",
	"refresh_token_secret": "security.refresh_token_secret",
	"refresh_token_expiry": "security.refresh_token_ttl",
	"verification_ttl":     "security.verification_ttl",
	"password_reset_ttl":   "security.password_reset_ttl",
	"cookie_domain":        "security.cookie_domain",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"cors_origins":         "security.cors_origins",

	// Database
	"db_driver":       "database.driver",
	"badger_path":     "database.path",
	"db_in_memory":    "database.in_memory",
	"mongodb_uri":     "database.mongo_uri",
	"mongodb_db":      "database.mongo_database",
	"mongodb_timeout": "database.mongo_timeout",
	"db_gc_interval":  "database.gc_interval",

	// Storage
	"storage_order":          "storage.order",
	"cloudinary_cloud_name":  "storage.media_host.cloud_name",
	"cloudinary_api_key":     "storage.media_host.api_key",
	"cloudinary_api_secret":  "storage.media_host.api_secret",
	"cloudinary_base_url":    "storage.media_host.base_url",
	"cloudinary_folder":      "storage.media_host.folder",
	"aws_region":             "storage.s3.region",
	"aws_bucket_name":        "storage.s3.bucket",
	"aws_s3_endpoint":        "storage.s3.endpoint",
	"aws_access_key_id":      "storage.s3.access_key_id",
	"aws_secret_access_key":  "storage.s3.secret_access_key",
	"aws_s3_public_base_url": "storage.s3.public_base_url",
	"aws_s3_use_path_style":  "storage.s3.use_path_style",
	"ffprobe_path":           "storage.ffprobe_path",

	// Email
	"email_provider":  "email.provider",
	"email_from":      "email.from",
	"email_from_name": "email.from_name",
	"smtp_host":       "email.smtp_host",
	"smtp_port":       "email.smtp_port",
	"smtp_user":       "email.smtp_user",
	"smtp_pass":       "email.smtp_password",
	"smtp_use_tls":    "email.smtp_use_tls",
	"resend_api_key":  "email.resend_api_key",
	"email_send_rate": "email.send_rate",

	// OAuth
	"google_oauth_enabled": "oauth.enabled",
	"google_issuer":        "oauth.issuer",
	"google_client_id":     "oauth.client_id",
	"google_client_secret": "oauth.client_secret",
	"google_callback_url":  "oauth.redirect_url",
	"oauth_scopes":         "oauth.scopes",

	// Admin bootstrap
	"admin_email":    "admin.bootstrap_email",
	"admin_username": "admin.bootstrap_username",
	"admin_password": "admin.bootstrap_password",

	// Authorization
	"casbin_model_path":  "authz.model_path",
	"casbin_policy_path": "authz.policy_path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped keys return the empty string so unrelated variables never leak into config.
//
// Examples:
//   - ACCESS_TOKEN_SECRET -> security.access_token_secret
//   - CLOUDINARY_CLOUD_NAME -> storage.media_host.cloud_name
//   - MONGODB_URI -> database.mongo_uri
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
