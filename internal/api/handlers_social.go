// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/validation"
)

// contentRequest is the body of comment and tweet writes.
type contentRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

func (h *Handler) decodeContent(w http.ResponseWriter, r *http.Request) (string, error) {
	var body contentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return "", err
	}
	body.Content = strings.TrimSpace(body.Content)
	if verr := validation.ValidateStruct(body); verr != nil {
		return "", verr.ToAppError()
	}
	return body.Content, nil
}

// commentParent reads the {kind}/{parentId} pair. Only videos and tweets
// take comments.
func commentParent(r *http.Request) (models.Target, error) {
	kind, err := pathID(r, "kind")
	if err != nil {
		return models.Target{}, err
	}
	id, err := pathID(r, "parentId")
	if err != nil {
		return models.Target{}, err
	}
	parent, err := models.ParseTarget(kind, id)
	if err != nil || !parent.CanHaveComments() {
		return models.Target{}, apperr.Validation("comments belong to a video or a tweet")
	}
	return parent, nil
}

// ListComments lists the comments of a video or tweet, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	parent, err := commentParent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.db.ListComments(r.Context(), parent, h.pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// AddComment comments on a video or tweet.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	parent, err := commentParent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	content, err := h.decodeContent(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.db.AddComment(r.Context(), u.ID, parent, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(c)
}

// UpdateComment edits the caller's own comment.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	parent, err := commentParent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	content, err := h.decodeContent(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.db.UpdateComment(r.Context(), parent, id, u.ID, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(c)
}

// DeleteComment removes the caller's own comment.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	parent, err := commentParent(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.db.DeleteComment(r.Context(), parent, id, u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(c)
}

// ToggleVideoLike likes or unlikes a video.
func (h *Handler) ToggleVideoLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, "videoId", models.VideoRef)
}

// ToggleCommentLike likes or unlikes a comment.
func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, "commentId", models.CommentRef)
}

// ToggleTweetLike likes or unlikes a tweet.
func (h *Handler) ToggleTweetLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, "tweetId", models.TweetRef)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, param string, ref func(string) models.Target) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, param)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target := ref(id)
	if err := h.ensureLikeTarget(r.Context(), target); err != nil {
		h.fail(w, r, err)
		return
	}
	liked, err := h.db.ToggleLike(r.Context(), u.ID, target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count, err := h.db.LikeCount(r.Context(), target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"liked":     liked,
		"likeCount": count,
	})
}

func (h *Handler) ensureLikeTarget(ctx context.Context, t models.Target) error {
	var err error
	switch t.Kind() {
	case models.TargetVideo:
		_, err = h.db.GetVideo(ctx, t.ID())
	case models.TargetComment:
		_, err = h.db.GetComment(ctx, t.ID())
	case models.TargetTweet:
		_, err = h.db.GetTweet(ctx, t.ID())
	default:
		err = apperr.Validation("unknown like target")
	}
	return err
}

// LikedVideos lists the videos the caller has liked.
func (h *Handler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.db.LikedVideos(r.Context(), u.ID, h.pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// ToggleSubscription subscribes to or unsubscribes from a channel.
func (h *Handler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	channelID, err := pathID(r, "channelId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subscribed, err := h.db.ToggleSubscription(r.Context(), u.ID, channelID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"subscribed": subscribed})
}

// ChannelSubscribers lists who subscribes to a channel.
func (h *Handler) ChannelSubscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	subs, err := h.db.ChannelSubscribers(r.Context(), channelID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(subs)
}

// SubscribedChannels lists the channels a user subscribes to.
func (h *Handler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	channels, err := h.db.SubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(channels)
}

// CreateTweet posts a tweet.
func (h *Handler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	content, err := h.decodeContent(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.db.CreateTweet(r.Context(), u.ID, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(t)
}

// UserTweets lists a user's tweets, newest first.
func (h *Handler) UserTweets(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tweets, err := h.db.UserTweets(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(tweets)
}

// UpdateTweet edits the caller's own tweet.
func (h *Handler) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "tweetId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	content, err := h.decodeContent(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.db.UpdateTweet(r.Context(), id, u.ID, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(t)
}

// DeleteTweet removes the caller's own tweet.
func (h *Handler) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "tweetId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.db.DeleteTweet(r.Context(), id, u.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Tweet deleted successfully"})
}
