// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/validation"
)

type playlistRequest struct {
	Name        string `json:"name" validate:"omitempty,notblank,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (h *Handler) decodePlaylist(w http.ResponseWriter, r *http.Request, requireName bool) (playlistRequest, error) {
	var body playlistRequest
	if err := decodeJSON(w, r, &body); err != nil {
		return body, err
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	if verr := validation.ValidateStruct(body); verr != nil {
		return body, verr.ToAppError()
	}
	if requireName && body.Name == "" {
		return body, apperr.Validation("name is required")
	}
	if !requireName && body.Name == "" && body.Description == "" {
		return body, apperr.Validation("name or description is required")
	}
	return body, nil
}

// CreatePlaylist creates an empty playlist for the caller.
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := h.decodePlaylist(w, r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.db.CreatePlaylist(r.Context(), u.ID, body.Name, body.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(p)
}

// UserPlaylists lists a user's playlists with their video counts.
func (h *Handler) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	playlists, err := h.db.UserPlaylists(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(playlists)
}

// GetPlaylist returns a playlist with its videos.
func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.db.PlaylistDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(detail)
}

// UpdatePlaylist renames or redescribes the caller's playlist.
func (h *Handler) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := h.decodePlaylist(w, r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.db.UpdatePlaylist(r.Context(), id, u.ID, body.Name, body.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(p)
}

// DeletePlaylist deletes the caller's playlist.
func (h *Handler) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.db.DeletePlaylist(r.Context(), id, u.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"message": "Playlist deleted successfully"})
}

// AddVideoToPlaylist appends a video. A video already present is kept once.
func (h *Handler) AddVideoToPlaylist(w http.ResponseWriter, r *http.Request) {
	h.changePlaylistVideo(w, r, true)
}

// RemoveVideoFromPlaylist removes a video from the caller's playlist.
func (h *Handler) RemoveVideoFromPlaylist(w http.ResponseWriter, r *http.Request) {
	h.changePlaylistVideo(w, r, false)
}

func (h *Handler) changePlaylistVideo(w http.ResponseWriter, r *http.Request, add bool) {
	u, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := pathID(r, "playlistId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	videoID, err := pathID(r, "videoId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	change := h.db.RemoveVideoFromPlaylist
	if add {
		change = h.db.AddVideoToPlaylist
	}
	p, err := change(r.Context(), id, u.ID, videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(p)
}
