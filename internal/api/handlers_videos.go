// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/database"
	"github.com/tomtom215/vidshare/internal/videos"
)

var videoSortFields = map[string]bool{
	database.SortCreatedAt: true,
	database.SortViews:     true,
	database.SortDuration:  true,
	database.SortTitle:     true,
}

// ListVideos searches videos.
//
// Query parameters: query, userId, sortBy (createdAt|views|duration|title),
// sortType (asc|desc), page, limit. Drafts are included when the viewer
// lists their own channel, or for admins.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := database.VideoQuery{
		Query:       q.Get("query"),
		OwnerID:     strings.TrimSpace(q.Get("userId")),
		SortBy:      q.Get("sortBy"),
		SortType:    strings.ToLower(q.Get("sortType")),
		PageRequest: h.pageRequest(r),
	}
	if query.SortBy != "" && !videoSortFields[query.SortBy] {
		h.fail(w, r, apperr.Validation("sortBy must be one of createdAt, views, duration, title"))
		return
	}
	if query.SortType != "" && query.SortType != "asc" && query.SortType != "desc" {
		h.fail(w, r, apperr.Validation("sortType must be asc or desc"))
		return
	}
	if u := viewer(r); u != nil && (u.IsAdmin() || (query.OwnerID != "" && query.OwnerID == u.ID)) {
		query.IncludeUnpublished = true
	}

	page, err := h.db.ListVideos(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// TrendingVideos lists the most viewed published videos.
func (h *Handler) TrendingVideos(w http.ResponseWriter, r *http.Request) {
	page, err := h.db.TrendingVideos(r.Context(), h.pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// ChannelVideos lists a channel's published videos as popular, latest or oldest.
func (h *Handler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	order, err := pathID(r, "order")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.db.ChannelVideos(r.Context(), channelID, database.ChannelOrder(order), h.pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// PublishVideo accepts a multipart form with videoFile, optional thumbnail,
// title and description.
func (h *Handler) PublishVideo(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, files, err := h.readMultipart(w, r, "videoFile", "thumbnail")
	defer files.cleanup()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.videos.Publish(r.Context(), u.ID, videos.PublishInput{
		Title:       form.value("title"),
		Description: form.value("description"),
		Video:       form.file("videoFile"),
		Thumbnail:   form.file("thumbnail"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(view)
}

// GetVideo returns one video.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.videos.Get(r.Context(), id, viewer(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(view)
}

// RecordView counts a view and adds it to the viewer's history.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.videos.RecordView(r.Context(), id, viewer(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(view)
}

// UpdateVideo changes title, description and thumbnail. It accepts JSON or
// a multipart form carrying the new thumbnail.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var in videos.UpdateInput
	if isMultipart(r) {
		form, files, err := h.readMultipart(w, r, "thumbnail")
		defer files.cleanup()
		if err != nil {
			h.fail(w, r, err)
			return
		}
		in = videos.UpdateInput{
			Title:       form.value("title"),
			Description: form.value("description"),
			Thumbnail:   form.file("thumbnail"),
		}
	} else if err := decodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.videos.Update(r.Context(), id, u, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(view)
}

// DeleteVideo removes a video and its stored files.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.videos.Delete(r.Context(), id, u); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Video deleted successfully"})
}

// TogglePublish flips the published flag.
func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.videos.TogglePublish(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(view)
}
