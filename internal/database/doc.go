// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package database provides the record stores of Vidshare.
//
// # Overview
//
// DB sits between the HTTP handlers and a docstore.Store (BadgerDB or
// MongoDB). It owns the collections, their uniqueness keys and every rule
// that spans more than one record: cascades on delete, counters joined into
// views, ownership checks.
//
// # Files
//
//   - store.go: DB type, collection names, shared helpers and error mapping
//   - users.go: accounts, unique username/email, token lookups
//   - videos.go: video records, listing, search and trending
//   - comments.go: comments on videos and tweets
//   - likes.go: like toggles on videos, comments and tweets
//   - playlists.go: playlists and their ordered video lists
//   - subscriptions.go: channel subscriptions
//   - tweets.go: short text posts
//   - history.go: watch history with progress
//   - dashboard.go: channel stats and the public channel profile
//
// # Uniqueness
//
// Unique fields are claimed as index keys in the same transaction as the
// document write, so two concurrent registrations with the same email can
// never both succeed. A like is keyed by (owner, target) and a subscription
// by (subscriber, channel), which makes toggles idempotent under races.
//
// # Errors
//
// Methods return apperr values: NotFound for missing records, Conflict for
// uniqueness violations, Forbidden for ownership failures. Anything else is
// wrapped as an internal error with the failing operation named.
//
// # Cascades
//
// Deleting a video removes its likes, comments and history entries and
// pulls it from every playlist. Deleting a comment or tweet removes the
// likes on it. Deleting a user does not cascade.
package database
