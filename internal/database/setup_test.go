// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

// setupTestDB returns a DB over an in-memory badger store. Its clock advances
// one second per call so orderings by timestamp are deterministic.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	store, err := docstore.OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	db := New(store)
	db.now = tickingClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func mustCreateUser(t *testing.T, db *DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		Fullname:     "User " + username,
		PasswordHash: "hash",
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustCreateVideo(t *testing.T, db *DB, ownerID, title string, views int64, published bool) *models.Video {
	t.Helper()
	v := &models.Video{
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		Duration:    60,
		Views:       views,
		IsPublished: published,
		VideoFile:   models.StoredAsset{URL: "https://cdn.example.com/" + title + ".mp4", PublicID: title, StorageProvider: models.ProviderPrimary, ResourceKind: models.ResourceVideo},
	}
	if err := db.CreateVideo(context.Background(), v); err != nil {
		t.Fatalf("CreateVideo(%s): %v", title, err)
	}
	return v
}

func checkNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func checkKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("error kind = %v, want %v (err: %v)", got, want, err)
	}
}
