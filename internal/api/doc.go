// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package api implements the HTTP surface of the video sharing backend.

The route table lives in router.go and is built with chi. Handlers decode
input, call the auth, videos and database layers and write every response
in one envelope:

	{"success": true, "data": ..., "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "video not found"}}

Errors returned by lower layers are *apperr.Error values and are mapped to
status codes by ResponseWriter.AppError. Anything unclassified becomes a
500 with a generic message; the wrapped cause is only exposed outside
production.

Route Groups:

  - /api/v1/healthcheck: liveness and readiness
  - /api/v1/users, /api/v1/auth, /api/v1/email: accounts, sessions, OAuth and verification
  - /api/v1/videos, /comments, /likes, /playlists, /subscriptions, /tweets: content
  - /api/v1/history, /api/v1/dashboard: per-user views
  - /api/v1/admin: moderation listings and deletes, gated by the authz policy

Uploads arrive as multipart/form-data and are streamed to temporary files
under the configured upload directory. The temporary files are removed
once the request finishes, whether or not the upload succeeded.

Rate limits are applied per client IP with httprate. Authentication,
email and upload routes carry their own stricter limits on top of the
group default.
*/
package api
