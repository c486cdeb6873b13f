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

// ensureParent checks that comments may be attached to parent and that it exists.
func (db *DB) ensureParent(ctx context.Context, parent models.Target) error {
	if !parent.CanHaveComments() {
		return apperr.Validation("comments can only be attached to videos or tweets")
	}
	switch parent.Kind() {
	case models.TargetVideo:
		_, err := db.GetVideo(ctx, parent.ID())
		return err
	default:
		_, err := db.GetTweet(ctx, parent.ID())
		return err
	}
}

// AddComment attaches a comment by ownerID to parent.
func (db *DB) AddComment(ctx context.Context, ownerID string, parent models.Target, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	if err := db.ensureParent(ctx, parent); err != nil {
		return nil, err
	}

	now := db.now()
	c := &models.Comment{
		ID:        newID(),
		Content:   content,
		OwnerID:   ownerID,
		Parent:    parent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.store.Insert(ctx, collComments, c.ID, c); err != nil {
		return nil, storeErr("add comment", err)
	}
	return c, nil
}

// GetComment returns a comment by id.
func (db *DB) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var c models.Comment
	if err := db.store.Get(ctx, collComments, id, &c); err != nil {
		return nil, storeErr("get comment", notFound(err, "comment"))
	}
	return &c, nil
}

// UpdateComment changes the content of a comment. Only the owner may update
// it, and only under its own parent; anything else is reported as not found.
func (db *DB) UpdateComment(ctx context.Context, parent models.Target, id, ownerID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content is required")
	}
	var c models.Comment
	err := db.store.Mutate(ctx, collComments, id, &c, func() error {
		if c.OwnerID != ownerID || c.Parent != parent {
			return apperr.NotFound("comment")
		}
		c.Content = content
		c.UpdatedAt = db.now()
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("update comment", notFound(err, "comment"))
	}
	return &c, nil
}

// DeleteComment removes an owner's comment under parent together with its likes.
func (db *DB) DeleteComment(ctx context.Context, parent models.Target, id, ownerID string) (*models.Comment, error) {
	c, err := db.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID || c.Parent != parent {
		return nil, apperr.NotFound("comment")
	}
	return c, db.removeComment(ctx, c)
}

func (db *DB) removeComment(ctx context.Context, c *models.Comment) error {
	if err := db.store.Delete(ctx, collComments, c.ID); err != nil {
		return storeErr("delete comment", err)
	}
	return db.deleteLikesFor(ctx, models.CommentRef(c.ID))
}

// ListComments returns one page of comments under parent, oldest first.
func (db *DB) ListComments(ctx context.Context, parent models.Target, req models.PageRequest) (models.Page[models.CommentView], error) {
	if !parent.CanHaveComments() {
		return models.Page[models.CommentView]{}, apperr.Validation("invalid parent type")
	}
	req = pageBounds(req)
	comments, total, err := docstore.List(ctx, db.store, collComments, docstore.Query[models.Comment]{
		Filter: func(c *models.Comment) bool { return c.Parent == parent },
		Less:   func(a, b *models.Comment) bool { return a.CreatedAt.Before(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.CommentView]{}, storeErr("list comments", err)
	}
	views, err := db.commentViews(ctx, comments)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

func (db *DB) commentViews(ctx context.Context, comments []models.Comment) ([]models.CommentView, error) {
	ownerIDs := make([]string, 0, len(comments))
	targets := make([]models.Target, 0, len(comments))
	for i := range comments {
		ownerIDs = append(ownerIDs, comments[i].OwnerID)
		targets = append(targets, models.CommentRef(comments[i].ID))
	}
	owners, err := db.userSummaries(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	likes, err := db.likeCounts(ctx, targets)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentView, len(comments))
	for i, c := range comments {
		out[i] = models.CommentView{
			ID:         c.ID,
			Content:    c.Content,
			Parent:     c.Parent,
			Owner:      owners[c.OwnerID],
			LikesCount: likes[models.CommentRef(c.ID).Key()],
			CreatedAt:  c.CreatedAt,
			UpdatedAt:  c.UpdatedAt,
		}
	}
	return out, nil
}

// deleteCommentsFor removes every comment under parent and the likes on them.
func (db *DB) deleteCommentsFor(ctx context.Context, parent models.Target) error {
	deleted, err := docstore.DeleteWhere(ctx, db.store, collComments,
		func(c *models.Comment) bool { return c.Parent == parent }, nil)
	if err != nil {
		return storeErr("delete comments", err)
	}
	for i := range deleted {
		if err := db.deleteLikesFor(ctx, models.CommentRef(deleted[i].ID)); err != nil {
			return err
		}
	}
	return nil
}

// ListAllComments lists every comment, newest first, for administration.
func (db *DB) ListAllComments(ctx context.Context, req models.PageRequest) (models.Page[models.CommentView], error) {
	req = pageBounds(req)
	comments, total, err := docstore.List(ctx, db.store, collComments, docstore.Query[models.Comment]{
		Less:   func(a, b *models.Comment) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.CommentView]{}, storeErr("list comments", err)
	}
	views, err := db.commentViews(ctx, comments)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

// AdminDeleteComment removes any comment by id.
func (db *DB) AdminDeleteComment(ctx context.Context, id string) error {
	c, err := db.GetComment(ctx, id)
	if err != nil {
		return err
	}
	return db.removeComment(ctx, c)
}
