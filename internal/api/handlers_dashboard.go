// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"

	"github.com/tomtom215/vidshare/internal/database"
)

// ChannelStats returns subscriber, video, view and like totals for the
// caller's channel.
func (h *Handler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	stats, err := h.db.ChannelStats(r.Context(), u.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(stats)
}

// DashboardVideos lists every video of the caller's channel, drafts included.
func (h *Handler) DashboardVideos(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.db.ListVideos(r.Context(), database.VideoQuery{
		OwnerID:            u.ID,
		SortBy:             database.SortCreatedAt,
		SortType:           "desc",
		IncludeUnpublished: true,
		PageRequest:        h.pageRequest(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writePage(w, r, page)
}
