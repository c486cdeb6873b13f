// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"errors"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

func likeKey(userID string, target models.Target) string {
	return userID + "|" + target.Key()
}

func likeKeys(l *models.Like) []string {
	return []string{likeKey(l.UserID, l.Target)}
}

// ToggleLike likes target for userID, or removes the like if it exists.
// It reports whether the target is liked afterwards. The (user, target) pair
// is a unique key, so concurrent toggles can never create two likes.
func (db *DB) ToggleLike(ctx context.Context, userID string, target models.Target) (bool, error) {
	key := likeKey(userID, target)
	id, err := db.store.Lookup(ctx, collLikes, key)
	switch {
	case err == nil:
		if err := db.store.Delete(ctx, collLikes, id, key); err != nil {
			return false, storeErr("unlike", err)
		}
		return false, nil
	case !errors.Is(err, docstore.ErrNotFound):
		return false, storeErr("lookup like", err)
	}

	like := &models.Like{ID: newID(), UserID: userID, Target: target, CreatedAt: db.now()}
	err = db.store.Insert(ctx, collLikes, like.ID, like, key)
	if errors.Is(err, docstore.ErrConflict) {
		// A concurrent toggle created the like first.
		return true, nil
	}
	if err != nil {
		return false, storeErr("like", err)
	}
	return true, nil
}

// IsLiked reports whether userID likes target.
func (db *DB) IsLiked(ctx context.Context, userID string, target models.Target) (bool, error) {
	_, err := db.store.Lookup(ctx, collLikes, likeKey(userID, target))
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("lookup like", err)
	}
	return true, nil
}

// likeCounts counts likes per target key in one pass.
func (db *DB) likeCounts(ctx context.Context, targets []models.Target) (map[string]int, error) {
	want := make(map[string]bool, len(targets))
	for _, t := range targets {
		want[t.Key()] = true
	}
	counts := make(map[string]int, len(targets))
	if len(want) == 0 {
		return counts, nil
	}
	likes, err := docstore.All(ctx, db.store, collLikes, func(l *models.Like) bool { return want[l.Target.Key()] })
	if err != nil {
		return nil, storeErr("count likes", err)
	}
	for i := range likes {
		counts[likes[i].Target.Key()]++
	}
	return counts, nil
}

// LikeCount returns the number of likes on target.
func (db *DB) LikeCount(ctx context.Context, target models.Target) (int, error) {
	counts, err := db.likeCounts(ctx, []models.Target{target})
	if err != nil {
		return 0, err
	}
	return counts[target.Key()], nil
}

// LikedVideos lists the videos userID liked, most recent like first. Likes on
// videos that no longer exist are skipped.
func (db *DB) LikedVideos(ctx context.Context, userID string, req models.PageRequest) (models.Page[models.VideoView], error) {
	req = pageBounds(req)
	likes, err := docstore.All(ctx, db.store, collLikes, func(l *models.Like) bool {
		return l.UserID == userID && l.Target.Kind() == models.TargetVideo
	})
	if err != nil {
		return models.Page[models.VideoView]{}, storeErr("list likes", err)
	}
	sortLikesNewestFirst(likes)

	videos := make([]models.Video, 0, len(likes))
	for i := range likes {
		v, err := db.GetVideo(ctx, likes[i].Target.ID())
		if apperr.Is(err, apperr.KindNotFound) {
			continue
		}
		if err != nil {
			return models.Page[models.VideoView]{}, err
		}
		videos = append(videos, *v)
	}

	total := len(videos)
	videos = paginate(videos, req)
	views, err := db.videoViews(ctx, videos)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

func (db *DB) deleteLikesFor(ctx context.Context, target models.Target) error {
	key := target.Key()
	_, err := docstore.DeleteWhere(ctx, db.store, collLikes,
		func(l *models.Like) bool { return l.Target.Key() == key }, likeKeys)
	return storeErr("delete likes", err)
}

// ListLikes lists every like, newest first, for administration.
func (db *DB) ListLikes(ctx context.Context, req models.PageRequest) (models.Page[models.Like], error) {
	req = pageBounds(req)
	likes, total, err := docstore.List(ctx, db.store, collLikes, docstore.Query[models.Like]{
		Less:   func(a, b *models.Like) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.Like]{}, storeErr("list likes", err)
	}
	return models.NewPage(likes, total, req), nil
}

// DeleteLike removes a like by id.
func (db *DB) DeleteLike(ctx context.Context, id string) error {
	var l models.Like
	if err := db.store.Get(ctx, collLikes, id, &l); err != nil {
		return storeErr("get like", notFound(err, "like"))
	}
	return storeErr("delete like", db.store.Delete(ctx, collLikes, id, likeKeys(&l)...))
}
