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

func playlistSummary(p *models.Playlist) models.PlaylistSummary {
	return models.PlaylistSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		VideoCount:  len(p.VideoIDs),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// CreatePlaylist creates an empty playlist owned by ownerID.
func (db *DB) CreatePlaylist(ctx context.Context, ownerID, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("playlist name is required")
	}
	now := db.now()
	p := &models.Playlist{
		ID:          newID(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.store.Insert(ctx, collPlaylists, p.ID, p); err != nil {
		return nil, storeErr("create playlist", err)
	}
	return p, nil
}

// GetPlaylist returns a playlist by id.
func (db *DB) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var p models.Playlist
	if err := db.store.Get(ctx, collPlaylists, id, &p); err != nil {
		return nil, storeErr("get playlist", notFound(err, "playlist"))
	}
	return &p, nil
}

// PlaylistDetail returns a playlist with its owner and resolved videos.
// Videos deleted since they were added are left out.
func (db *DB) PlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error) {
	p, err := db.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	videos := make([]models.Video, 0, len(p.VideoIDs))
	for _, vid := range p.VideoIDs {
		v, err := db.GetVideo(ctx, vid)
		if apperr.Is(err, apperr.KindNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	views, err := db.videoViews(ctx, videos)
	if err != nil {
		return nil, err
	}
	owners, err := db.userSummaries(ctx, []string{p.OwnerID})
	if err != nil {
		return nil, err
	}
	return &models.PlaylistDetail{
		PlaylistSummary: playlistSummary(p),
		Owner:           owners[p.OwnerID],
		Videos:          views,
	}, nil
}

// UserPlaylists lists the playlists owned by ownerID, newest first.
func (db *DB) UserPlaylists(ctx context.Context, ownerID string) ([]models.PlaylistSummary, error) {
	if _, err := db.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	items, _, err := docstore.List(ctx, db.store, collPlaylists, docstore.Query[models.Playlist]{
		Filter: func(p *models.Playlist) bool { return p.OwnerID == ownerID },
		Less:   func(a, b *models.Playlist) bool { return a.CreatedAt.After(b.CreatedAt) },
	})
	if err != nil {
		return nil, storeErr("list playlists", err)
	}
	out := make([]models.PlaylistSummary, len(items))
	for i := range items {
		out[i] = playlistSummary(&items[i])
	}
	return out, nil
}

// mutatePlaylist loads a playlist, checks ownership and applies fn.
func (db *DB) mutatePlaylist(ctx context.Context, id, ownerID string, fn func(p *models.Playlist) error) (*models.Playlist, error) {
	var p models.Playlist
	err := db.store.Mutate(ctx, collPlaylists, id, &p, func() error {
		if p.OwnerID != ownerID {
			return errOwnership("playlist")
		}
		if err := fn(&p); err != nil {
			return err
		}
		p.UpdatedAt = db.now()
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("update playlist", notFound(err, "playlist"))
	}
	return &p, nil
}

// AddVideoToPlaylist appends videoID unless it is already present.
func (db *DB) AddVideoToPlaylist(ctx context.Context, id, ownerID, videoID string) (*models.Playlist, error) {
	if _, err := db.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	return db.mutatePlaylist(ctx, id, ownerID, func(p *models.Playlist) error {
		if !p.Contains(videoID) {
			p.VideoIDs = append(p.VideoIDs, videoID)
		}
		return nil
	})
}

// RemoveVideoFromPlaylist removes videoID; it is NotFound if absent.
func (db *DB) RemoveVideoFromPlaylist(ctx context.Context, id, ownerID, videoID string) (*models.Playlist, error) {
	return db.mutatePlaylist(ctx, id, ownerID, func(p *models.Playlist) error {
		if !p.Contains(videoID) {
			return apperr.NotFound("video in playlist")
		}
		p.VideoIDs = removeString(p.VideoIDs, videoID)
		return nil
	})
}

// UpdatePlaylist changes name and/or description. Empty values are left unchanged.
func (db *DB) UpdatePlaylist(ctx context.Context, id, ownerID, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" && description == "" {
		return nil, apperr.Validation("name or description is required")
	}
	return db.mutatePlaylist(ctx, id, ownerID, func(p *models.Playlist) error {
		if name != "" {
			p.Name = name
		}
		if description != "" {
			p.Description = description
		}
		return nil
	})
}

// DeletePlaylist removes an owner's playlist.
func (db *DB) DeletePlaylist(ctx context.Context, id, ownerID string) (*models.Playlist, error) {
	p, err := db.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, errOwnership("playlist")
	}
	return p, storeErr("delete playlist", db.store.Delete(ctx, collPlaylists, id))
}

func (db *DB) pullFromPlaylists(ctx context.Context, videoID string) error {
	holding, err := docstore.All(ctx, db.store, collPlaylists, func(p *models.Playlist) bool { return p.Contains(videoID) })
	if err != nil {
		return storeErr("scan playlists", err)
	}
	for i := range holding {
		var p models.Playlist
		err := db.store.Mutate(ctx, collPlaylists, holding[i].ID, &p, func() error {
			p.VideoIDs = removeString(p.VideoIDs, videoID)
			return nil
		}, nil)
		if err != nil && !apperr.Is(notFound(err, "playlist"), apperr.KindNotFound) {
			return storeErr("pull video from playlist", err)
		}
	}
	return nil
}

// ListAllPlaylists lists every playlist, newest first, for administration.
func (db *DB) ListAllPlaylists(ctx context.Context, req models.PageRequest) (models.Page[models.Playlist], error) {
	req = pageBounds(req)
	items, total, err := docstore.List(ctx, db.store, collPlaylists, docstore.Query[models.Playlist]{
		Less:   func(a, b *models.Playlist) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.Playlist]{}, storeErr("list playlists", err)
	}
	return models.NewPage(items, total, req), nil
}

// AdminDeletePlaylist removes any playlist by id.
func (db *DB) AdminDeletePlaylist(ctx context.Context, id string) error {
	if _, err := db.GetPlaylist(ctx, id); err != nil {
		return err
	}
	return storeErr("delete playlist", db.store.Delete(ctx, collPlaylists, id))
}

func removeString(items []string, s string) []string {
	out := items[:0]
	for _, it := range items {
		if it != s {
			out = append(out, it)
		}
	}
	return out
}
