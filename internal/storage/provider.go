// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/tomtom215/vidshare/internal/models"
)

// ErrNotConfigured is returned by providers missing credentials.
var ErrNotConfigured = errors.New("storage provider not configured")

// Provider is one media backend. Implementations make exactly one attempt
// per call; retry and fallback policy lives in Router.
type Provider interface {
	// Name is the tag recorded on assets this provider stores.
	Name() models.StorageProvider

	// Upload pushes the file at path and returns the stored asset. The local
	// file is left in place for the caller to remove.
	Upload(ctx context.Context, path, mimetype string) (models.StoredAsset, error)

	// Delete removes a previously uploaded resource.
	Delete(ctx context.Context, publicID string, kind models.ResourceKind) error

	// ThumbnailURL derives a still image URL for a video asset. Providers
	// without frame extraction return the asset URL.
	ThumbnailURL(asset models.StoredAsset) string
}

// folderFor picks the upload folder for a mimetype.
func folderFor(mimetype string) string {
	switch models.ResourceKindFor(mimetype) {
	case models.ResourceVideo:
		return "videos"
	case models.ResourceImage:
		return "images"
	default:
		return "others"
	}
}

// joinFolder prefixes folder with an optional root, e.g. "vidshare/videos".
func joinFolder(root, folder string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return folder
	}
	return root + "/" + folder
}

// baseName returns the file name of path with characters unsafe for object
// keys replaced.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
