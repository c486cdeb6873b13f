// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/models"
)

// fakeProvider records calls and fails on demand.
type fakeProvider struct {
	name      models.StorageProvider
	uploadErr error
	deleteErr error
	duration  float64

	mu      sync.Mutex
	uploads int
	deletes []string
}

func (f *fakeProvider) Name() models.StorageProvider { return f.name }

func (f *fakeProvider) Upload(_ context.Context, path, mimetype string) (models.StoredAsset, error) {
	f.mu.Lock()
	f.uploads++
	f.mu.Unlock()
	if f.uploadErr != nil {
		return models.StoredAsset{}, f.uploadErr
	}
	return models.StoredAsset{
		URL:             "https://" + string(f.name) + "/" + filepath.Base(path),
		PublicID:        filepath.Base(path),
		ResourceKind:    models.ResourceKindFor(mimetype),
		DurationSeconds: f.duration,
	}, nil
}

func (f *fakeProvider) Delete(_ context.Context, publicID string, _ models.ResourceKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, publicID)
	return f.deleteErr
}

func (f *fakeProvider) ThumbnailURL(asset models.StoredAsset) string {
	return asset.URL + "#thumb"
}

type fixedProbe float64

func (p fixedProbe) Probe(context.Context, string) float64 { return float64(p) }

func tempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestRouterUpload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		primaryErr   error
		secondaryErr error
		mimetype     string
		wantProvider models.StorageProvider
		wantErr      bool
	}{
		{"primary succeeds", nil, nil, "video/mp4", models.ProviderPrimary, false},
		{"falls back to secondary", errors.New("host down"), nil, "video/mp4", models.ProviderSecondary, false},
		{"image falls back", errors.New("host down"), nil, "image/png", models.ProviderSecondary, false},
		{"both fail", errors.New("host down"), errors.New("bucket gone"), "video/mp4", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			primary := &fakeProvider{name: models.ProviderPrimary, uploadErr: tt.primaryErr}
			secondary := &fakeProvider{name: models.ProviderSecondary, uploadErr: tt.secondaryErr}
			r := NewRouter(nil, primary, secondary)

			asset, err := r.Upload(context.Background(), tempFile(t, "clip.mp4"), tt.mimetype)
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindUpstream) {
					t.Fatalf("error = %v, want upstream", err)
				}
				if primary.uploads != 1 || secondary.uploads != 1 {
					t.Errorf("attempts = %d/%d, want 1/1", primary.uploads, secondary.uploads)
				}
				return
			}
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if asset.StorageProvider != tt.wantProvider {
				t.Errorf("provider = %q, want %q", asset.StorageProvider, tt.wantProvider)
			}
			if primary.uploads != 1 {
				t.Errorf("primary attempts = %d, want 1", primary.uploads)
			}
		})
	}
}

func TestRouterUpload_NoProviders(t *testing.T) {
	t.Parallel()
	r := NewRouter(nil)
	_, err := r.Upload(context.Background(), tempFile(t, "a.mp4"), "video/mp4")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}

func TestRouterUpload_EmptyPath(t *testing.T) {
	t.Parallel()
	r := NewRouter(nil, &fakeProvider{name: models.ProviderPrimary})
	_, err := r.Upload(context.Background(), "", "video/mp4")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestRouterUpload_ProbesMissingDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reported float64
		mimetype string
		want     float64
	}{
		{"provider duration kept", 12.5, "video/mp4", 12.5},
		{"probed when missing", 0, "video/mp4", 42},
		{"images not probed", 0, "image/jpeg", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRouter(fixedProbe(42), &fakeProvider{name: models.ProviderSecondary, duration: tt.reported})
			asset, err := r.Upload(context.Background(), tempFile(t, "v.mp4"), tt.mimetype)
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if asset.DurationSeconds != tt.want {
				t.Errorf("duration = %v, want %v", asset.DurationSeconds, tt.want)
			}
		})
	}
}

func TestRouterDelete_RoutesByTag(t *testing.T) {
	t.Parallel()
	primary := &fakeProvider{name: models.ProviderPrimary}
	secondary := &fakeProvider{name: models.ProviderSecondary, deleteErr: errors.New("denied")}
	r := NewRouter(nil, primary, secondary)
	ctx := context.Background()

	r.Delete(ctx, "p1", models.ProviderPrimary, models.ResourceVideo)
	r.Delete(ctx, "s1", models.ProviderSecondary, models.ResourceVideo) // error swallowed
	r.Delete(ctx, "x1", models.ProviderExternal, models.ResourceImage)
	r.Delete(ctx, "u1", "unknown", models.ResourceImage)
	r.Release(ctx, nil)
	r.Release(ctx, &models.StoredAsset{URL: "https://x/y", PublicID: "p2", StorageProvider: models.ProviderPrimary})

	if got := primary.deletes; len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("primary deletes = %v, want [p1 p2]", got)
	}
	if got := secondary.deletes; len(got) != 1 || got[0] != "s1" {
		t.Errorf("secondary deletes = %v, want [s1]", got)
	}
}

func TestRouterThumbnailURL(t *testing.T) {
	t.Parallel()
	r := NewRouter(nil, &fakeProvider{name: models.ProviderPrimary})

	got := r.ThumbnailURL(models.StoredAsset{URL: "https://a/b", StorageProvider: models.ProviderPrimary})
	if got != "https://a/b#thumb" {
		t.Errorf("primary thumbnail = %q", got)
	}
	got = r.ThumbnailURL(models.StoredAsset{URL: "https://c/d", StorageProvider: models.ProviderSecondary})
	if got != "https://c/d" {
		t.Errorf("unrouted thumbnail = %q", got)
	}
}

func TestFolderFor(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"video/mp4":       "videos",
		"image/png":       "images",
		"application/pdf": "others",
		"":                "others",
	}
	for mime, want := range tests {
		if got := folderFor(mime); got != want {
			t.Errorf("folderFor(%q) = %q, want %q", mime, got, want)
		}
	}
	if got := joinFolder("/vidshare/", "videos"); got != "vidshare/videos" {
		t.Errorf("joinFolder = %q", got)
	}
	if got := baseName("/tmp/up/my clip (1).mp4"); got != "my_clip__1_.mp4" {
		t.Errorf("baseName = %q", got)
	}
}

func TestFFProbe_MissingBinary(t *testing.T) {
	t.Parallel()
	p := NewFFProbe(filepath.Join(t.TempDir(), "no-such-ffprobe"))
	if got := p.Probe(context.Background(), "whatever.mp4"); got != 0 {
		t.Errorf("Probe = %v, want 0", got)
	}
}
