// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

// CreateTweet stores a new tweet by ownerID.
func (db *DB) CreateTweet(ctx context.Context, ownerID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	now := db.now()
	t := &models.Tweet{ID: newID(), OwnerID: ownerID, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := db.store.Insert(ctx, collTweets, t.ID, t); err != nil {
		return nil, storeErr("create tweet", err)
	}
	return t, nil
}

// GetTweet returns a tweet by id.
func (db *DB) GetTweet(ctx context.Context, id string) (*models.Tweet, error) {
	var t models.Tweet
	if err := db.store.Get(ctx, collTweets, id, &t); err != nil {
		return nil, storeErr("get tweet", notFound(err, "tweet"))
	}
	return &t, nil
}

// UpdateTweet changes the content of an owner's tweet. Tweets owned by
// someone else are reported as not found.
func (db *DB) UpdateTweet(ctx context.Context, id, ownerID, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	var t models.Tweet
	err := db.store.Mutate(ctx, collTweets, id, &t, func() error {
		if t.OwnerID != ownerID {
			return apperr.NotFound("tweet")
		}
		t.Content = content
		t.UpdatedAt = db.now()
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("update tweet", notFound(err, "tweet"))
	}
	return &t, nil
}

// DeleteTweet removes an owner's tweet with its comments and likes.
func (db *DB) DeleteTweet(ctx context.Context, id, ownerID string) (*models.Tweet, error) {
	t, err := db.GetTweet(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != ownerID {
		return nil, apperr.NotFound("tweet")
	}
	return t, db.removeTweet(ctx, t)
}

func (db *DB) removeTweet(ctx context.Context, t *models.Tweet) error {
	if err := db.store.Delete(ctx, collTweets, t.ID); err != nil {
		return storeErr("delete tweet", err)
	}
	ref := models.TweetRef(t.ID)
	if err := db.deleteLikesFor(ctx, ref); err != nil {
		return err
	}
	return db.deleteCommentsFor(ctx, ref)
}

// UserTweets lists a user's tweets newest first with owner and like count.
func (db *DB) UserTweets(ctx context.Context, userID string) ([]models.TweetView, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	tweets, _, err := docstore.List(ctx, db.store, collTweets, docstore.Query[models.Tweet]{
		Filter: func(t *models.Tweet) bool { return t.OwnerID == userID },
		Less:   func(a, b *models.Tweet) bool { return a.CreatedAt.After(b.CreatedAt) },
	})
	if err != nil {
		return nil, storeErr("list tweets", err)
	}
	return db.tweetViews(ctx, tweets)
}

func (db *DB) tweetViews(ctx context.Context, tweets []models.Tweet) ([]models.TweetView, error) {
	ownerIDs := make([]string, 0, len(tweets))
	targets := make([]models.Target, 0, len(tweets))
	for i := range tweets {
		ownerIDs = append(ownerIDs, tweets[i].OwnerID)
		targets = append(targets, models.TweetRef(tweets[i].ID))
	}
	owners, err := db.userSummaries(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	likes, err := db.likeCounts(ctx, targets)
	if err != nil {
		return nil, err
	}
	out := make([]models.TweetView, len(tweets))
	for i, t := range tweets {
		out[i] = models.TweetView{
			ID:         t.ID,
			Content:    t.Content,
			Owner:      owners[t.OwnerID],
			LikesCount: likes[models.TweetRef(t.ID).Key()],
			CreatedAt:  t.CreatedAt,
			UpdatedAt:  t.UpdatedAt,
		}
	}
	return out, nil
}

// ListAllTweets lists every tweet, newest first, for administration.
func (db *DB) ListAllTweets(ctx context.Context, req models.PageRequest) (models.Page[models.TweetView], error) {
	req = pageBounds(req)
	tweets, total, err := docstore.List(ctx, db.store, collTweets, docstore.Query[models.Tweet]{
		Less:   func(a, b *models.Tweet) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.TweetView]{}, storeErr("list tweets", err)
	}
	views, err := db.tweetViews(ctx, tweets)
	if err != nil {
		return models.Page[models.TweetView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

// AdminDeleteTweet removes any tweet by id.
func (db *DB) AdminDeleteTweet(ctx context.Context, id string) error {
	t, err := db.GetTweet(ctx, id)
	if err != nil {
		return err
	}
	return db.removeTweet(ctx, t)
}
