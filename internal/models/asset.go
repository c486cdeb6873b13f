// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package models

import "strings"

// StorageProvider names the backend that holds an asset. It is recorded at
// upload time and never changed, so deletes go to the same backend.
type StorageProvider string

const (
	ProviderPrimary   StorageProvider = "primary"
	ProviderSecondary StorageProvider = "secondary"
	// ProviderExternal marks assets we only reference (e.g. an OAuth avatar URL).
	// They are never deleted.
	ProviderExternal StorageProvider = "external"
)

// ResourceKind is the kind of file behind an asset. Media hosts delete video
// and image resources through different endpoints.
type ResourceKind string

const (
	ResourceVideo ResourceKind = "video"
	ResourceImage ResourceKind = "image"
	ResourceRaw   ResourceKind = "raw"
)

// ResourceKindFor maps a mimetype to a ResourceKind.
func ResourceKindFor(mimetype string) ResourceKind {
	switch {
	case strings.HasPrefix(mimetype, "video/"):
		return ResourceVideo
	case strings.HasPrefix(mimetype, "image/"):
		return ResourceImage
	default:
		return ResourceRaw
	}
}

// StoredAsset references a file held by a storage provider.
type StoredAsset struct {
	URL             string          `json:"url"`
	PublicID        string          `json:"publicId,omitempty"`
	StorageProvider StorageProvider `json:"storageProvider"`
	ResourceKind    ResourceKind    `json:"resourceKind,omitempty"`
	// DurationSeconds is set for videos when it could be determined; 0 means unknown.
	DurationSeconds float64 `json:"duration,omitempty"`
}

// IsZero reports whether the asset is unset.
func (a *StoredAsset) IsZero() bool {
	return a == nil || a.URL == ""
}

// Deletable reports whether the asset can be removed from its backend.
func (a *StoredAsset) Deletable() bool {
	return !a.IsZero() && a.PublicID != "" && a.StorageProvider != ProviderExternal
}

// URLOrEmpty returns the asset URL or "" for an unset asset.
func (a *StoredAsset) URLOrEmpty() string {
	if a == nil {
		return ""
	}
	return a.URL
}

// UploadedFile is a client upload already spooled to local disk. The api
// layer owns the file and removes it once the request finishes.
type UploadedFile struct {
	Path     string
	Mimetype string
}

// IsImage reports whether the upload declares an image mimetype.
func (f *UploadedFile) IsImage() bool {
	return f != nil && strings.HasPrefix(f.Mimetype, "image/")
}

// IsVideo reports whether the upload declares a video mimetype.
func (f *UploadedFile) IsVideo() bool {
	return f != nil && strings.HasPrefix(f.Mimetype, "video/")
}
