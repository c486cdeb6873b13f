// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package main is the entry point for the Vidshare server.

Vidshare is the backend of a video sharing platform: accounts with email
verification, video publishing, comments, likes, playlists, subscriptions,
short text posts (tweets), watch history, a per-channel dashboard and an
admin surface. All responses use one JSON envelope.

# Application Architecture

Long-running work runs under a Suture v4 supervisor tree:

	RootSupervisor ("vidshare")
	├── DataSupervisor ("data-layer")
	│   └── Store GC (badger value log, on-disk stores only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Email queue (watermill gochannel, rate limited)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file, .env and environment
 2. Logging: zerolog with JSON/console output modes
 3. Document store: BadgerDB (embedded) or MongoDB
 4. Media storage: primary media host with S3 fallback, ffprobe durations
 5. Email: SMTP, Resend or log sender behind a delivery queue
 6. Authentication: JWT access/refresh pair, bcrypt, optional OIDC sign-in
 7. Authorization: Casbin policy for the admin surface
 8. Supervisor Tree and HTTP Server

# Configuration

Core environment variables (see package config for the full list):

	PORT=8000
	ENVIRONMENT=development        # production enables Secure cookies
	ACCESS_TOKEN_SECRET=<32+ chars>
	REFRESH_TOKEN_SECRET=<32+ chars>
	DB_DRIVER=badger               # or mongo
	STORAGE_ORDER=mediahost,s3
	EMAIL_PROVIDER=log             # smtp, resend or log
	LOG_LEVEL=info
	LOG_FORMAT=json

# Graceful Shutdown

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within SUPERVISOR_SHUTDOWN_TIMEOUT, the email queue
stops accepting work, and services that miss the deadline are reported.

# Build

	go build -ldflags "-X main.version=$(git describe --tags)" ./cmd/server
*/
package main
