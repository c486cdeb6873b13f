// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/auth"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

// adminList serves a paginated admin listing.
func adminList[T any](h *Handler, list func(ctx context.Context, req models.PageRequest) (models.Page[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := list(r.Context(), h.pageRequest(r))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writePage(w, r, page)
	}
}

// adminDelete serves a delete-by-id for entity.
func (h *Handler) adminDelete(entity string, del func(ctx context.Context, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			h.fail(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Info().Str("entity", entity).Str("id", id).Msg("Admin deleted record")
		NewResponseWriter(w, r).Success(map[string]string{"message": entity + " deleted", "id": id})
	}
}

// AdminListUsers lists accounts without their secrets.
func (h *Handler) AdminListUsers() http.HandlerFunc { return adminList(h, h.db.ListUsers) }

// AdminListVideos lists every video, drafts included.
func (h *Handler) AdminListVideos() http.HandlerFunc { return adminList(h, h.db.ListAllVideos) }

// AdminListComments lists every comment.
func (h *Handler) AdminListComments() http.HandlerFunc { return adminList(h, h.db.ListAllComments) }

// AdminListPlaylists lists every playlist.
func (h *Handler) AdminListPlaylists() http.HandlerFunc { return adminList(h, h.db.ListAllPlaylists) }

// AdminListLikes lists every like.
func (h *Handler) AdminListLikes() http.HandlerFunc { return adminList(h, h.db.ListLikes) }

// AdminListSubscriptions lists every subscription.
func (h *Handler) AdminListSubscriptions() http.HandlerFunc {
	return adminList(h, h.db.ListSubscriptions)
}

// AdminListTweets lists every tweet.
func (h *Handler) AdminListTweets() http.HandlerFunc { return adminList(h, h.db.ListAllTweets) }

// AdminListHistory lists every history entry.
func (h *Handler) AdminListHistory() http.HandlerFunc { return adminList(h, h.db.ListAllHistory) }

// AdminDeleteUser deletes an account and releases its avatar and cover
// image. Admins cannot delete their own account.
func (h *Handler) AdminDeleteUser() http.HandlerFunc {
	return h.adminDelete("user", func(ctx context.Context, id string) error {
		if u, ok := auth.UserFromContext(ctx); ok && u.ID == id {
			return apperr.Validation("admins cannot delete their own account")
		}
		deleted, err := h.db.DeleteUser(ctx, id)
		if err != nil {
			return err
		}
		if h.assets != nil {
			h.assets.Release(ctx, deleted.Avatar)
			h.assets.Release(ctx, deleted.CoverImage)
		}
		return nil
	})
}

// AdminDeleteVideo deletes any video and releases its files.
func (h *Handler) AdminDeleteVideo() http.HandlerFunc {
	return h.adminDelete("video", func(ctx context.Context, id string) error {
		actor, _ := auth.UserFromContext(ctx)
		_, err := h.videos.Delete(ctx, id, actor)
		return err
	})
}

// AdminDeleteComment deletes any comment.
func (h *Handler) AdminDeleteComment() http.HandlerFunc {
	return h.adminDelete("comment", h.db.AdminDeleteComment)
}

// AdminDeletePlaylist deletes any playlist.
func (h *Handler) AdminDeletePlaylist() http.HandlerFunc {
	return h.adminDelete("playlist", h.db.AdminDeletePlaylist)
}

// AdminDeleteLike deletes a like.
func (h *Handler) AdminDeleteLike() http.HandlerFunc {
	return h.adminDelete("like", h.db.DeleteLike)
}

// AdminDeleteSubscription deletes a subscription.
func (h *Handler) AdminDeleteSubscription() http.HandlerFunc {
	return h.adminDelete("subscription", h.db.DeleteSubscription)
}

// AdminDeleteTweet deletes any tweet.
func (h *Handler) AdminDeleteTweet() http.HandlerFunc {
	return h.adminDelete("tweet", h.db.AdminDeleteTweet)
}

// AdminDeleteHistory deletes a history entry.
func (h *Handler) AdminDeleteHistory() http.HandlerFunc {
	return h.adminDelete("history entry", h.db.DeleteHistoryEntry)
}

// AdminPerformance reports per-endpoint latency percentiles and the most
// recent requests seen by the performance monitor.
func (h *Handler) AdminPerformance(w http.ResponseWriter, r *http.Request) {
	recent := getIntParam(r, "recent", 20)
	if recent < 0 || recent > 500 {
		recent = 20
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"endpoints": h.perfMon.Stats(),
		"recent":    h.perfMon.Recent(recent),
	})
}
