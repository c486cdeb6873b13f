// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package videos

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/cache"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/validation"
)

// Store is the persistence the service needs. *database.DB satisfies it.
type Store interface {
	CreateVideo(ctx context.Context, v *models.Video) error
	GetVideo(ctx context.Context, id string) (*models.Video, error)
	UpdateVideo(ctx context.Context, id string, fn func(v *models.Video) error) (*models.Video, error)
	DeleteVideo(ctx context.Context, id string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) (*models.Video, error)
	VideoView(ctx context.Context, v *models.Video) (models.VideoView, error)
	AddToHistory(ctx context.Context, userID, videoID string) (*models.HistoryEntry, error)
}

// Assets stores and releases media files. *storage.Router satisfies it.
type Assets interface {
	Upload(ctx context.Context, path, mimetype string) (*models.StoredAsset, error)
	Release(ctx context.Context, asset *models.StoredAsset)
	ThumbnailURL(asset models.StoredAsset) string
}

// Service implements video publishing and lifecycle rules.
type Service struct {
	store  Store
	assets Assets
	views  *cache.Window
}

// Option configures a Service.
type Option func(*Service)

// viewWindowCapacity bounds the viewer/video pairs remembered for dedup.
const viewWindowCapacity = 50000

// WithViewDedup stops a signed in viewer from adding more than one view to
// the same video within window. Zero disables it.
func WithViewDedup(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.views = cache.NewWindow(viewWindowCapacity, window)
		}
	}
}

// NewService creates a video service.
func NewService(store Store, assets Assets, opts ...Option) *Service {
	s := &Service{store: store, assets: assets}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PublishInput is the publish form. Video is required; Thumbnail is optional.
type PublishInput struct {
	Title       string              `json:"title" validate:"required,notblank,max=200"`
	Description string              `json:"description" validate:"required,notblank,max=5000"`
	Video       *models.UploadedFile `json:"-" validate:"-"`
	Thumbnail   *models.UploadedFile `json:"-" validate:"-"`
}

// Publish uploads the video and optional thumbnail and stores the record.
// Without a thumbnail the URL is derived from the stored video by the
// provider that holds it. Assets uploaded before a later failure are released.
func (s *Service) Publish(ctx context.Context, ownerID string, in PublishInput) (models.VideoView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if verr := validation.ValidateStruct(in); verr != nil {
		return models.VideoView{}, verr.ToAppError()
	}
	if in.Video == nil || in.Video.Path == "" {
		return models.VideoView{}, apperr.Validation("Video file is required")
	}
	if !in.Video.IsVideo() {
		return models.VideoView{}, apperr.Validation("Video file must be a video")
	}
	if in.Thumbnail != nil && !in.Thumbnail.IsImage() {
		return models.VideoView{}, apperr.Validation("Thumbnail must be an image")
	}

	videoAsset, err := s.assets.Upload(ctx, in.Video.Path, in.Video.Mimetype)
	if err != nil {
		return models.VideoView{}, err
	}

	var thumb models.StoredAsset
	if in.Thumbnail != nil {
		uploaded, err := s.assets.Upload(ctx, in.Thumbnail.Path, in.Thumbnail.Mimetype)
		if err != nil {
			s.assets.Release(ctx, videoAsset)
			return models.VideoView{}, err
		}
		thumb = *uploaded
	} else {
		thumb = derivedThumbnail(videoAsset, s.assets.ThumbnailURL(*videoAsset))
	}

	v := &models.Video{
		OwnerID:     ownerID,
		VideoFile:   *videoAsset,
		Thumbnail:   thumb,
		Title:       in.Title,
		Description: in.Description,
		Duration:    videoAsset.DurationSeconds,
		IsPublished: true,
	}
	if err := s.store.CreateVideo(ctx, v); err != nil {
		s.assets.Release(ctx, videoAsset)
		s.assets.Release(ctx, &thumb)
		return models.VideoView{}, err
	}

	logging.Ctx(ctx).Info().
		Str("video_id", v.ID).
		Str("provider", string(videoAsset.StorageProvider)).
		Float64("duration", v.Duration).
		Msg("Video published")
	return s.store.VideoView(ctx, v)
}

// derivedThumbnail references a frame of the video. It has no public id of
// its own, so releasing it is a no-op.
func derivedThumbnail(video *models.StoredAsset, url string) models.StoredAsset {
	return models.StoredAsset{
		URL:             url,
		StorageProvider: video.StorageProvider,
		ResourceKind:    models.ResourceImage,
	}
}

// Get returns a video. Drafts are visible only to their owner and admins.
func (s *Service) Get(ctx context.Context, id string, viewer *models.User) (models.VideoView, error) {
	v, err := s.visible(ctx, id, viewer)
	if err != nil {
		return models.VideoView{}, err
	}
	return s.store.VideoView(ctx, v)
}

func (s *Service) visible(ctx context.Context, id string, viewer *models.User) (*models.Video, error) {
	v, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPublished && !canManage(v, viewer) {
		return nil, apperr.NotFound("video")
	}
	return v, nil
}

// RecordView counts a view and, for signed in viewers, records it in their
// watch history. A history failure does not fail the view. With view dedup
// enabled a repeat by the same viewer inside the window only refreshes
// history.
func (s *Service) RecordView(ctx context.Context, id string, viewer *models.User) (models.VideoView, error) {
	v, err := s.visible(ctx, id, viewer)
	if err != nil {
		return models.VideoView{}, err
	}
	if !s.repeatView(viewer, id) {
		if v, err = s.store.IncrementViews(ctx, id); err != nil {
			return models.VideoView{}, err
		}
	}
	if viewer != nil {
		if _, err := s.store.AddToHistory(ctx, viewer.ID, id); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("video_id", id).Msg("Failed to record watch history")
		}
	}
	return s.store.VideoView(ctx, v)
}

func (s *Service) repeatView(viewer *models.User, videoID string) bool {
	if s.views == nil || viewer == nil {
		return false
	}
	return s.views.Seen(viewer.ID + ":" + videoID)
}

// UpdateInput changes a video's details. Empty fields are left unchanged.
type UpdateInput struct {
	Title       string              `json:"title" validate:"omitempty,notblank,max=200"`
	Description string              `json:"description" validate:"omitempty,notblank,max=5000"`
	Thumbnail   *models.UploadedFile `json:"-" validate:"-"`
}

// Update changes title, description and thumbnail of a video the actor owns.
// A new thumbnail is uploaded before the record changes; the old one is
// released only after the record is saved.
func (s *Service) Update(ctx context.Context, id string, actor *models.User, in UpdateInput) (models.VideoView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if verr := validation.ValidateStruct(in); verr != nil {
		return models.VideoView{}, verr.ToAppError()
	}
	if in.Title == "" && in.Description == "" && in.Thumbnail == nil {
		return models.VideoView{}, apperr.Validation("Nothing to update: provide title, description or thumbnail")
	}
	if in.Thumbnail != nil && !in.Thumbnail.IsImage() {
		return models.VideoView{}, apperr.Validation("Thumbnail must be an image")
	}

	current, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return models.VideoView{}, err
	}
	if !isOwner(current, actor) {
		return models.VideoView{}, errNotOwner()
	}

	var uploaded *models.StoredAsset
	if in.Thumbnail != nil {
		uploaded, err = s.assets.Upload(ctx, in.Thumbnail.Path, in.Thumbnail.Mimetype)
		if err != nil {
			return models.VideoView{}, err
		}
	}

	var previous models.StoredAsset
	v, err := s.store.UpdateVideo(ctx, id, func(v *models.Video) error {
		if !isOwner(v, actor) {
			return errNotOwner()
		}
		if in.Title != "" {
			v.Title = in.Title
		}
		if in.Description != "" {
			v.Description = in.Description
		}
		if uploaded != nil {
			previous = v.Thumbnail
			v.Thumbnail = *uploaded
		}
		return nil
	})
	if err != nil {
		s.assets.Release(ctx, uploaded)
		return models.VideoView{}, err
	}
	if uploaded != nil {
		s.assets.Release(ctx, &previous)
	}
	return s.store.VideoView(ctx, v)
}

// TogglePublish flips the published flag of a video the actor owns.
func (s *Service) TogglePublish(ctx context.Context, id string, actor *models.User) (models.VideoView, error) {
	v, err := s.store.UpdateVideo(ctx, id, func(v *models.Video) error {
		if !isOwner(v, actor) {
			return errNotOwner()
		}
		v.IsPublished = !v.IsPublished
		return nil
	})
	if err != nil {
		return models.VideoView{}, err
	}
	logging.Ctx(ctx).Info().Str("video_id", id).Bool("published", v.IsPublished).Msg("Video publish status changed")
	return s.store.VideoView(ctx, v)
}

// Delete removes a video the actor owns, or any video for admins, and then
// releases its stored files by their recorded provider.
func (s *Service) Delete(ctx context.Context, id string, actor *models.User) (*models.Video, error) {
	current, err := s.store.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(current, actor) {
		return nil, errNotOwner()
	}
	v, err := s.store.DeleteVideo(ctx, id)
	if v != nil {
		s.releaseFiles(ctx, v)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) releaseFiles(ctx context.Context, v *models.Video) {
	s.assets.Release(ctx, &v.VideoFile)
	s.assets.Release(ctx, &v.Thumbnail)
}

func isOwner(v *models.Video, actor *models.User) bool {
	return actor != nil && v.OwnerID == actor.ID
}

func canManage(v *models.Video, actor *models.User) bool {
	return isOwner(v, actor) || (actor != nil && actor.IsAdmin())
}

func errNotOwner() error {
	return apperr.Forbidden(apperr.CodeForbidden, "you are not the owner of this video")
}
