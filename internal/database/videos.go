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

// Video sort fields accepted by ListVideos
const (
	SortCreatedAt = "createdAt"
	SortViews     = "views"
	SortDuration  = "duration"
	SortTitle     = "title"
)

// ChannelOrder selects one of the channel video listings.
type ChannelOrder string

const (
	ChannelPopular ChannelOrder = "popular"
	ChannelLatest  ChannelOrder = "latest"
	ChannelOldest  ChannelOrder = "oldest"
)

// VideoQuery filters and orders the video listing.
type VideoQuery struct {
	// Query matches title or description, case-insensitively.
	Query   string
	OwnerID string
	SortBy  string
	// SortType is "asc" or "desc" (default).
	SortType string
	// IncludeUnpublished also lists drafts. Used for owners and admins.
	IncludeUnpublished bool
	models.PageRequest
}

func videoLess(sortBy, sortType string) func(a, b *models.Video) bool {
	asc := strings.EqualFold(sortType, "asc")
	var less func(a, b *models.Video) bool
	switch sortBy {
	case SortViews:
		less = func(a, b *models.Video) bool { return a.Views < b.Views }
	case SortDuration:
		less = func(a, b *models.Video) bool { return a.Duration < b.Duration }
	case SortTitle:
		less = func(a, b *models.Video) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		less = func(a, b *models.Video) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	if asc {
		return less
	}
	return func(a, b *models.Video) bool { return less(b, a) }
}

// CreateVideo stores a new video.
func (db *DB) CreateVideo(ctx context.Context, v *models.Video) error {
	if v.ID == "" {
		v.ID = newID()
	}
	now := db.now()
	v.CreatedAt = now
	v.UpdatedAt = now
	return storeErr("create video", db.store.Insert(ctx, collVideos, v.ID, v))
}

// GetVideo returns a video by id.
func (db *DB) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	if err := db.store.Get(ctx, collVideos, id, &v); err != nil {
		return nil, storeErr("get video", notFound(err, "video"))
	}
	return &v, nil
}

// UpdateVideo applies fn to the stored video and persists it.
func (db *DB) UpdateVideo(ctx context.Context, id string, fn func(v *models.Video) error) (*models.Video, error) {
	var v models.Video
	err := db.store.Mutate(ctx, collVideos, id, &v, func() error {
		if err := fn(&v); err != nil {
			return err
		}
		v.UpdatedAt = db.now()
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("update video", notFound(err, "video"))
	}
	return &v, nil
}

// IncrementViews adds one view to a video.
func (db *DB) IncrementViews(ctx context.Context, id string) (*models.Video, error) {
	var v models.Video
	err := db.store.Mutate(ctx, collVideos, id, &v, func() error {
		v.Views++
		return nil
	}, nil)
	if err != nil {
		return nil, storeErr("increment views", notFound(err, "video"))
	}
	return &v, nil
}

// DeleteVideo removes a video together with the likes, comments and history
// entries attached to it, and pulls it from every playlist. The deleted video
// is returned so its assets can be released.
func (db *DB) DeleteVideo(ctx context.Context, id string) (*models.Video, error) {
	v, err := db.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.store.Delete(ctx, collVideos, id); err != nil {
		return nil, storeErr("delete video", err)
	}

	target := models.VideoRef(id)
	if err := db.deleteLikesFor(ctx, target); err != nil {
		return v, err
	}
	if err := db.deleteCommentsFor(ctx, target); err != nil {
		return v, err
	}
	if _, err := docstore.DeleteWhere(ctx, db.store, collHistory,
		func(h *models.HistoryEntry) bool { return h.VideoID == id }, historyKeys); err != nil {
		return v, storeErr("delete video history", err)
	}
	if err := db.pullFromPlaylists(ctx, id); err != nil {
		return v, err
	}
	return v, nil
}

// ListVideos returns one page of videos matching q, decorated with owner and like count.
func (db *DB) ListVideos(ctx context.Context, q VideoQuery) (models.Page[models.VideoView], error) {
	req := pageBounds(q.PageRequest)
	query := strings.TrimSpace(q.Query)

	videos, total, err := docstore.List(ctx, db.store, collVideos, docstore.Query[models.Video]{
		Filter: func(v *models.Video) bool {
			if !q.IncludeUnpublished && !v.IsPublished {
				return false
			}
			if q.OwnerID != "" && v.OwnerID != q.OwnerID {
				return false
			}
			if query != "" && !containsFold(v.Title, query) && !containsFold(v.Description, query) {
				return false
			}
			return true
		},
		Less:   videoLess(q.SortBy, q.SortType),
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.VideoView]{}, storeErr("list videos", err)
	}

	views, err := db.videoViews(ctx, videos)
	if err != nil {
		return models.Page[models.VideoView]{}, err
	}
	return models.NewPage(views, total, req), nil
}

// TrendingVideos lists published videos by views, most viewed first.
func (db *DB) TrendingVideos(ctx context.Context, req models.PageRequest) (models.Page[models.VideoView], error) {
	return db.ListVideos(ctx, VideoQuery{SortBy: SortViews, SortType: "desc", PageRequest: req})
}

// ChannelVideos lists a channel's published videos in the given order.
func (db *DB) ChannelVideos(ctx context.Context, ownerID string, order ChannelOrder, req models.PageRequest) (models.Page[models.VideoView], error) {
	if _, err := db.GetUser(ctx, ownerID); err != nil {
		return models.Page[models.VideoView]{}, err
	}
	q := VideoQuery{OwnerID: ownerID, PageRequest: req}
	switch order {
	case ChannelPopular:
		q.SortBy, q.SortType = SortViews, "desc"
	case ChannelOldest:
		q.SortBy, q.SortType = SortCreatedAt, "asc"
	case ChannelLatest, "":
		q.SortBy, q.SortType = SortCreatedAt, "desc"
	default:
		return models.Page[models.VideoView]{}, apperr.Validationf("unknown channel order %q", order)
	}
	return db.ListVideos(ctx, q)
}

// VideoView returns a single decorated video.
func (db *DB) VideoView(ctx context.Context, v *models.Video) (models.VideoView, error) {
	views, err := db.videoViews(ctx, []models.Video{*v})
	if err != nil {
		return models.VideoView{}, err
	}
	return views[0], nil
}

// videoViews resolves owner summaries and like counts for videos.
func (db *DB) videoViews(ctx context.Context, videos []models.Video) ([]models.VideoView, error) {
	ownerIDs := make([]string, 0, len(videos))
	targets := make([]models.Target, 0, len(videos))
	for i := range videos {
		ownerIDs = append(ownerIDs, videos[i].OwnerID)
		targets = append(targets, models.VideoRef(videos[i].ID))
	}
	owners, err := db.userSummaries(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	likes, err := db.likeCounts(ctx, targets)
	if err != nil {
		return nil, err
	}

	out := make([]models.VideoView, len(videos))
	for i := range videos {
		out[i] = videos[i].View(owners[videos[i].OwnerID], likes[models.VideoRef(videos[i].ID).Key()])
	}
	return out, nil
}

// ListAllVideos lists every video, newest first, for administration.
func (db *DB) ListAllVideos(ctx context.Context, req models.PageRequest) (models.Page[models.VideoView], error) {
	return db.ListVideos(ctx, VideoQuery{IncludeUnpublished: true, PageRequest: req})
}
