// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

// Collection names
const (
	collUsers         = "users"
	collVideos        = "videos"
	collComments      = "comments"
	collLikes         = "likes"
	collPlaylists     = "playlists"
	collSubscriptions = "subscriptions"
	collTweets        = "tweets"
	collHistory       = "history"
)

// DB provides the record stores of the application on top of a document store.
type DB struct {
	store docstore.Store
	now   func() time.Time
}

// New wraps a document store.
func New(store docstore.Store) *DB {
	return &DB{store: store, now: time.Now}
}

// Ping checks the underlying store.
func (db *DB) Ping(ctx context.Context) error {
	return db.store.Ping(ctx)
}

// Close closes the underlying store.
func (db *DB) Close() error {
	return db.store.Close()
}

func newID() string {
	return uuid.New().String()
}

// notFound converts docstore.ErrNotFound into an apperr NotFound for entity.
func notFound(err error, entity string) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}

// storeErr classifies an unexpected store failure.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Internal(op, err)
}

// pageBounds clamps the requested page to sane values.
func pageBounds(req models.PageRequest) models.PageRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}
	return req
}

// containsFold reports whether substr occurs in s ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func errOwnership(entity string) error {
	return apperr.Forbidden("", fmt.Sprintf("you are not the owner of this %s", entity))
}

// paginate returns the slice of items covered by req.
func paginate[T any](items []T, req models.PageRequest) []T {
	start := req.Offset()
	if start < 0 || start >= len(items) {
		return nil
	}
	end := len(items)
	if req.Limit > 0 && req.Limit < end-start {
		end = start + req.Limit
	}
	return items[start:end]
}

func sortLikesNewestFirst(likes []models.Like) {
	sort.SliceStable(likes, func(i, j int) bool { return likes[i].CreatedAt.After(likes[j].CreatedAt) })
}
