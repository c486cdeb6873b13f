// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package config provides centralized configuration management for Vidshare.

Configuration is assembled once at startup by Load and passed explicitly to
every component that needs it. Layers, lowest priority first:

  - built-in defaults (defaultConfig)
  - an optional YAML file (CONFIG_PATH, ./config.yaml, /etc/vidshare/config.yaml)
  - an optional .env file (DOTENV_PATH or ./.env), loaded with godotenv
  - environment variables, mapped explicitly through envMappings

# Environment Variables

Server:
  - PORT, HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - PUBLIC_URL: base URL used in verification links
  - FRONTEND_URL: web client used for redirects
  - UPLOAD_DIR, MAX_UPLOAD_BYTES
  - API_DEFAULT_PAGE_SIZE, API_MAX_PAGE_SIZE
  - VIEW_DEDUP_WINDOW: repeat views by one viewer inside it count once (default 30s)

Tokens and cookies:
  - ACCESS_TOKEN_SECRET, ACCESS_TOKEN_EXPIRY (default 1h)
  - REFRESH_TOKEN_SECRET, REFRESH_TOKEN_EXPIRY (default 168h)
  - CORS_ORIGINS, COOKIE_DOMAIN

Database:
  - DB_DRIVER: badger (default) or mongo
  - BADGER_PATH, DB_IN_MEMORY
  - MONGODB_URI, MONGODB_DB

Storage:
  - STORAGE_ORDER: provider preference, default "mediahost,s3"
  - CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET
  - AWS_REGION, AWS_BUCKET_NAME, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY

Email:
  - EMAIL_PROVIDER: smtp, resend or log
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, RESEND_API_KEY

OAuth:
  - GOOGLE_OAUTH_ENABLED, GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_CALLBACK_URL

# Validation

Validate rejects missing token secrets, identical access and refresh secrets,
verification windows longer than 15 minutes and reset windows longer than 10
minutes. Production mode additionally requires long secrets, fully configured
storage providers and a real email transport.
*/
package config
