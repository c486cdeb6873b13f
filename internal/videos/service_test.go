// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package videos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

// fakeAssets stores everything on the primary provider unless failFor names
// a path, and records released public ids.
type fakeAssets struct {
	mu       sync.Mutex
	failFor  map[string]bool
	released []string
}

func (a *fakeAssets) Upload(_ context.Context, path, mimetype string) (*models.StoredAsset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failFor[path] {
		return nil, apperr.Upstream("file upload failed", errors.New("both providers down"))
	}
	return &models.StoredAsset{
		URL:             "https://cdn.example.com/" + path,
		PublicID:        path,
		StorageProvider: models.ProviderPrimary,
		ResourceKind:    models.ResourceKindFor(mimetype),
		DurationSeconds: 42,
	}, nil
}

func (a *fakeAssets) Release(_ context.Context, asset *models.StoredAsset) {
	if !asset.Deletable() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.released = append(a.released, asset.PublicID)
}

func (a *fakeAssets) ThumbnailURL(asset models.StoredAsset) string {
	return asset.URL + "#frame0"
}

func (a *fakeAssets) releasedIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.released...)
}

type testEnv struct {
	svc    *Service
	db     *database.DB
	assets *fakeAssets
	owner  *models.User
	other  *models.User
	admin  *models.User
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	store, err := docstore.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db := database.New(store)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{db: db, assets: &fakeAssets{failFor: map[string]bool{}}}
	env.svc = NewService(db, env.assets)
	env.owner = createUser(t, db, "owner", models.RoleUser)
	env.other = createUser(t, db, "other", models.RoleUser)
	env.admin = createUser(t, db, "root", models.RoleAdmin)
	return env
}

func createUser(t *testing.T, db *database.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:        username,
		Email:           username + "@example.com",
		Fullname:        username,
		PasswordHash:    "hash",
		Role:            role,
		IsEmailVerified: true,
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func (e *testEnv) publish(t *testing.T, name string, withThumb bool) models.VideoView {
	t.Helper()
	in := PublishInput{
		Title:       "Video " + name,
		Description: "About " + name,
		Video:       &models.UploadedFile{Path: name + ".mp4", Mimetype: "video/mp4"},
	}
	if withThumb {
		in.Thumbnail = &models.UploadedFile{Path: name + ".png", Mimetype: "image/png"}
	}
	view, err := e.svc.Publish(context.Background(), e.owner.ID, in)
	if err != nil {
		t.Fatalf("Publish(%s): %v", name, err)
	}
	return view
}

func checkKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if got := apperr.KindOf(err); got != kind || err == nil {
		t.Fatalf("error = %v (kind %s), want kind %s", err, got, kind)
	}
}

func TestPublish(t *testing.T) {
	t.Parallel()
	env := setup(t)

	t.Run("derives thumbnail when none uploaded", func(t *testing.T) {
		view := env.publish(t, "derived", false)
		if view.Thumbnail != "https://cdn.example.com/derived.mp4#frame0" {
			t.Errorf("thumbnail = %q", view.Thumbnail)
		}
		if view.Duration != 42 || !view.IsPublished || view.Owner.Username != "owner" {
			t.Errorf("view = %+v", view)
		}
		stored, err := env.db.GetVideo(context.Background(), view.ID)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Thumbnail.Deletable() {
			t.Error("derived thumbnail must not be deletable")
		}
	})

	t.Run("uploads given thumbnail", func(t *testing.T) {
		view := env.publish(t, "explicit", true)
		if view.Thumbnail != "https://cdn.example.com/explicit.png" {
			t.Errorf("thumbnail = %q", view.Thumbnail)
		}
	})
}

func TestPublish_Rejects(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()
	video := &models.UploadedFile{Path: "v.mp4", Mimetype: "video/mp4"}

	tests := []struct {
		name string
		in   PublishInput
	}{
		{"missing title", PublishInput{Description: "d", Video: video}},
		{"blank description", PublishInput{Title: "t", Description: "   ", Video: video}},
		{"missing video", PublishInput{Title: "t", Description: "d"}},
		{"video is an image", PublishInput{Title: "t", Description: "d", Video: &models.UploadedFile{Path: "x.png", Mimetype: "image/png"}}},
		{"thumbnail is a video", PublishInput{Title: "t", Description: "d", Video: video, Thumbnail: video}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Publish(ctx, env.owner.ID, tt.in)
			checkKind(t, err, apperr.KindValidation)
		})
	}
}

func TestPublish_ThumbnailFailureReleasesVideo(t *testing.T) {
	t.Parallel()
	env := setup(t)
	env.assets.failFor["thumb.png"] = true

	_, err := env.svc.Publish(context.Background(), env.owner.ID, PublishInput{
		Title:       "t",
		Description: "d",
		Video:       &models.UploadedFile{Path: "orphan.mp4", Mimetype: "video/mp4"},
		Thumbnail:   &models.UploadedFile{Path: "thumb.png", Mimetype: "image/png"},
	})
	checkKind(t, err, apperr.KindUpstream)

	released := env.assets.releasedIDs()
	if len(released) != 1 || released[0] != "orphan.mp4" {
		t.Errorf("released = %v, want [orphan.mp4]", released)
	}
}

func TestGet_DraftVisibility(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()
	view := env.publish(t, "draft", false)
	if _, err := env.svc.TogglePublish(ctx, view.ID, env.owner); err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}

	tests := []struct {
		name    string
		viewer  *models.User
		visible bool
	}{
		{"anonymous", nil, false},
		{"other user", env.other, false},
		{"owner", env.owner, true},
		{"admin", env.admin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Get(ctx, view.ID, tt.viewer)
			if tt.visible && err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !tt.visible {
				checkKind(t, err, apperr.KindNotFound)
			}
		})
	}
}

func TestRecordView_CountsAndRecordsHistory(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()
	view := env.publish(t, "watched", false)

	if _, err := env.svc.RecordView(ctx, view.ID, nil); err != nil {
		t.Fatalf("anonymous RecordView: %v", err)
	}
	got, err := env.svc.RecordView(ctx, view.ID, env.other)
	if err != nil {
		t.Fatalf("RecordView: %v", err)
	}
	if got.Views != 2 {
		t.Errorf("views = %d, want 2", got.Views)
	}

	history, err := env.db.History(ctx, env.other.ID, models.PageRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if history.Total != 1 || history.Items[0].VideoID != view.ID {
		t.Errorf("history = %+v", history)
	}
}

func TestRecordView_DedupWithinWindow(t *testing.T) {
	t.Parallel()
	env := setup(t)
	env.svc = NewService(env.db, env.assets, WithViewDedup(time.Hour))
	ctx := context.Background()
	view := env.publish(t, "reloaded", false)

	for i := 0; i < 3; i++ {
		if _, err := env.svc.RecordView(ctx, view.ID, env.other); err != nil {
			t.Fatalf("RecordView #%d: %v", i, err)
		}
	}
	if _, err := env.svc.RecordView(ctx, view.ID, env.owner); err != nil {
		t.Fatalf("RecordView by owner: %v", err)
	}
	// anonymous views are never collapsed
	if _, err := env.svc.RecordView(ctx, view.ID, nil); err != nil {
		t.Fatalf("anonymous RecordView: %v", err)
	}
	got, err := env.svc.Get(ctx, view.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != 3 {
		t.Errorf("views = %d, want 3 (one per viewer plus anonymous)", got.Views)
	}
}

func TestUpdate_ReplacesThumbnail(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()
	view := env.publish(t, "first", true)

	updated, err := env.svc.Update(ctx, view.ID, env.owner, UpdateInput{
		Title:     "Renamed",
		Thumbnail: &models.UploadedFile{Path: "second.png", Mimetype: "image/png"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed" || updated.Description != "About first" {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Thumbnail != "https://cdn.example.com/second.png" {
		t.Errorf("thumbnail = %q", updated.Thumbnail)
	}
	released := env.assets.releasedIDs()
	if len(released) != 1 || released[0] != "first.png" {
		t.Errorf("released = %v, want [first.png]", released)
	}
}

func TestUpdate_Rejects(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()
	view := env.publish(t, "guarded", false)

	_, err := env.svc.Update(ctx, view.ID, env.other, UpdateInput{Title: "hijack"})
	checkKind(t, err, apperr.KindForbidden)

	_, err = env.svc.Update(ctx, view.ID, env.owner, UpdateInput{})
	checkKind(t, err, apperr.KindValidation)

	env.assets.failFor["broken.png"] = true
	_, err = env.svc.Update(ctx, view.ID, env.owner, UpdateInput{Thumbnail: &models.UploadedFile{Path: "broken.png", Mimetype: "image/png"}})
	checkKind(t, err, apperr.KindUpstream)

	got, err := env.svc.Get(ctx, view.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Video guarded" {
		t.Errorf("title changed to %q after failed updates", got.Title)
	}
}

func TestTogglePublish_OwnerOnly(t *testing.T) {
	t.Parallel()
	env := setup(t)
	view := env.publish(t, "toggle", false)

	_, err := env.svc.TogglePublish(context.Background(), view.ID, env.other)
	checkKind(t, err, apperr.KindForbidden)

	got, err := env.svc.TogglePublish(context.Background(), view.ID, env.owner)
	if err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}
	if got.IsPublished {
		t.Error("video still published after toggle")
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	env := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   *models.User
		wantErr apperr.Kind
	}{
		{"other user forbidden", env.other, apperr.KindForbidden},
		{"owner", env.owner, apperr.KindUnexpected},
		{"admin", env.admin, apperr.KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := env.publish(t, tt.name, true)
			_, err := env.svc.Delete(ctx, view.ID, tt.actor)
			if tt.wantErr != apperr.KindUnexpected {
				checkKind(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := env.db.GetVideo(ctx, view.ID); !apperr.Is(err, apperr.KindNotFound) {
				t.Errorf("video still present: %v", err)
			}
		})
	}

	released := env.assets.releasedIDs()
	want := map[string]bool{"owner.mp4": true, "owner.png": true, "admin.mp4": true, "admin.png": true}
	if len(released) != len(want) {
		t.Fatalf("released = %v", released)
	}
	for _, id := range released {
		if !want[id] {
			t.Errorf("unexpected release %s", id)
		}
	}
}
