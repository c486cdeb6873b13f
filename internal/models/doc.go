// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package models defines the persisted records and API projections of Vidshare.
//
// Records are stored as JSON documents in the document store, so the json
// tags here are the storage format. Types that carry secrets (User) expose a
// Public projection for responses; handlers never encode a User directly.
package models
