// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"

	"github.com/tomtom215/vidshare/internal/validation"
)

type progressRequest struct {
	Position float64 `json:"position" validate:"gte=0"`
	Duration float64 `json:"duration" validate:"gte=0"`
}

// AddToHistory records that the caller watched a video.
func (h *Handler) AddToHistory(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.db.AddToHistory(r.Context(), u.ID, videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(entry)
}

// UpdateWatchProgress stores the playback position of a video.
func (h *Handler) UpdateWatchProgress(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var body progressRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, err)
		return
	}
	if verr := validation.ValidateStruct(body); verr != nil {
		h.fail(w, r, verr.ToAppError())
		return
	}
	entry, err := h.db.UpdateWatchProgress(r.Context(), u.ID, videoID, body.Position, body.Duration)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(entry)
}

// WatchHistory lists the caller's history, most recent first.
func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.db.History(r.Context(), u.ID, h.pageRequest(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}

// RemoveFromHistory deletes one video from the caller's history.
func (h *Handler) RemoveFromHistory(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.db.RemoveFromHistory(r.Context(), u.ID, videoID); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Video removed from history"})
}

// ClearHistory deletes the caller's whole history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	removed, err := h.db.ClearHistory(r.Context(), u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]int{"deletedCount": removed})
}

// HistoryStats summarises the caller's viewing.
func (h *Handler) HistoryStats(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.db.HistoryStats(r.Context(), u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}
