// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package videos implements the video lifecycle: publishing with asset
// upload, detail updates, publish toggling, view counting and deletion.
//
// Files are stored through an Assets implementation (the storage fallback
// router in production). Every asset is recorded with the provider that
// accepted it, and released through the same provider when it is replaced
// or its video is deleted. A video published without a thumbnail gets a
// frame-extraction URL derived from the stored video instead of a second
// upload.
//
// Ownership is enforced here rather than in the record store: owners may
// update, toggle and delete their videos, admins may delete any video, and
// unpublished videos are hidden from everyone else.
package videos
