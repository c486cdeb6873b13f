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

// recentActivityLimit is how many entries HistoryStats reports as recent.
const recentActivityLimit = 5

func historyKey(userID, videoID string) string {
	return userID + "|" + videoID
}

func historyKeys(h *models.HistoryEntry) []string {
	return []string{historyKey(h.UserID, h.VideoID)}
}

// AddToHistory records a view of videoID by userID. Repeat views update the
// existing entry: viewCount is incremented and watchedAt refreshed.
func (db *DB) AddToHistory(ctx context.Context, userID, videoID string) (*models.HistoryEntry, error) {
	if _, err := db.GetVideo(ctx, videoID); err != nil {
		return nil, err
	}
	key := historyKey(userID, videoID)

	for attempt := 0; attempt < 2; attempt++ {
		id, err := db.store.Lookup(ctx, collHistory, key)
		if err == nil {
			var h models.HistoryEntry
			err = db.store.Mutate(ctx, collHistory, id, &h, func() error {
				now := db.now()
				h.ViewCount++
				h.WatchedAt = now
				h.UpdatedAt = now
				return nil
			}, nil)
			if err != nil {
				return nil, storeErr("update history", notFound(err, "history entry"))
			}
			return &h, nil
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, storeErr("lookup history", err)
		}

		now := db.now()
		h := &models.HistoryEntry{
			ID:        newID(),
			UserID:    userID,
			VideoID:   videoID,
			ViewCount: 1,
			WatchedAt: now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = db.store.Insert(ctx, collHistory, h.ID, h, key)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, docstore.ErrConflict) {
			return nil, storeErr("add history", err)
		}
		// Lost a race with a concurrent insert; retry as an update.
	}
	return nil, apperr.Conflict("history entry changed concurrently")
}

// UpdateWatchProgress records the playback position, creating the entry if needed.
func (db *DB) UpdateWatchProgress(ctx context.Context, userID, videoID string, position, duration float64) (*models.HistoryEntry, error) {
	if position < 0 || duration < 0 {
		return nil, apperr.Validation("position and duration must not be negative")
	}
	id, err := db.store.Lookup(ctx, collHistory, historyKey(userID, videoID))
	if errors.Is(err, docstore.ErrNotFound) {
		created, aerr := db.AddToHistory(ctx, userID, videoID)
		if aerr != nil {
			return nil, aerr
		}
		id = created.ID
	} else if err != nil {
		return nil, storeErr("lookup history", err)
	}

	var h models.HistoryEntry
	err = db.store.Mutate(ctx, collHistory, id, &h, func() error {
		h.UpdateProgress(position, duration, db.now())
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("update progress", notFound(err, "history entry"))
	}
	return &h, nil
}

// History lists a user's history, most recently watched first. Entries whose
// video has been deleted are skipped in the items but still counted in the total.
func (db *DB) History(ctx context.Context, userID string, req models.PageRequest) (models.Page[models.HistoryView], error) {
	req = pageBounds(req)
	entries, total, err := docstore.List(ctx, db.store, collHistory, docstore.Query[models.HistoryEntry]{
		Filter: func(h *models.HistoryEntry) bool { return h.UserID == userID },
		Less:   func(a, b *models.HistoryEntry) bool { return a.WatchedAt.After(b.WatchedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.HistoryView]{}, storeErr("list history", err)
	}
	views, err := db.historyViews(ctx, entries, true)
	if err != nil {
		return models.Page[models.HistoryView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

func (db *DB) historyViews(ctx context.Context, entries []models.HistoryEntry, skipMissing bool) ([]models.HistoryView, error) {
	out := make([]models.HistoryView, 0, len(entries))
	for i := range entries {
		view := models.HistoryView{HistoryEntry: entries[i]}
		v, err := db.GetVideo(ctx, entries[i].VideoID)
		switch {
		case err == nil:
			vv, verr := db.VideoView(ctx, v)
			if verr != nil {
				return nil, verr
			}
			view.Video = &vv
		case apperr.Is(err, apperr.KindNotFound):
			if skipMissing {
				continue
			}
		default:
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// RemoveFromHistory deletes a user's entry for videoID.
func (db *DB) RemoveFromHistory(ctx context.Context, userID, videoID string) (*models.HistoryEntry, error) {
	key := historyKey(userID, videoID)
	id, err := db.store.Lookup(ctx, collHistory, key)
	if err != nil {
		return nil, storeErr("lookup history", notFound(err, "history entry"))
	}
	var h models.HistoryEntry
	if err := db.store.Get(ctx, collHistory, id, &h); err != nil {
		return nil, storeErr("get history", notFound(err, "history entry"))
	}
	if err := db.store.Delete(ctx, collHistory, id, key); err != nil {
		return nil, storeErr("delete history", err)
	}
	return &h, nil
}

// ClearHistory deletes all of a user's entries and returns how many were removed.
func (db *DB) ClearHistory(ctx context.Context, userID string) (int, error) {
	deleted, err := docstore.DeleteWhere(ctx, db.store, collHistory,
		func(h *models.HistoryEntry) bool { return h.UserID == userID }, historyKeys)
	if err != nil {
		return len(deleted), storeErr("clear history", err)
	}
	return len(deleted), nil
}

// HistoryStats summarises a user's watch history.
func (db *DB) HistoryStats(ctx context.Context, userID string) (*models.HistoryStats, error) {
	entries, _, err := docstore.List(ctx, db.store, collHistory, docstore.Query[models.HistoryEntry]{
		Filter: func(h *models.HistoryEntry) bool { return h.UserID == userID },
		Less:   func(a, b *models.HistoryEntry) bool { return a.WatchedAt.After(b.WatchedAt) },
	})
	if err != nil {
		return nil, storeErr("history stats", err)
	}

	stats := &models.HistoryStats{TotalVideos: len(entries)}
	for i := range entries {
		stats.TotalWatchTime += entries[i].WatchDuration
		if entries[i].Completed {
			stats.CompletedVideos++
		}
	}
	if stats.TotalVideos > 0 {
		stats.AverageWatchTime = stats.TotalWatchTime / float64(stats.TotalVideos)
	}

	recent := entries
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	stats.RecentActivity, err = db.historyViews(ctx, recent, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListAllHistory lists every history entry, most recent first, for administration.
func (db *DB) ListAllHistory(ctx context.Context, req models.PageRequest) (models.Page[models.HistoryEntry], error) {
	req = pageBounds(req)
	entries, total, err := docstore.List(ctx, db.store, collHistory, docstore.Query[models.HistoryEntry]{
		Less:   func(a, b *models.HistoryEntry) bool { return a.WatchedAt.After(b.WatchedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.HistoryEntry]{}, storeErr("list history", err)
	}
	return models.NewPage(entries, total, req), nil
}

// DeleteHistoryEntry removes any history entry by id.
func (db *DB) DeleteHistoryEntry(ctx context.Context, id string) error {
	var h models.HistoryEntry
	if err := db.store.Get(ctx, collHistory, id, &h); err != nil {
		return storeErr("get history", notFound(err, "history entry"))
	}
	return storeErr("delete history", db.store.Delete(ctx, collHistory, id, historyKeys(&h)...))
}
