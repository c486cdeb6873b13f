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

// ChannelStats aggregates subscribers, uploads, views and video likes for a channel.
// Unpublished videos count towards the totals.
func (db *DB) ChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	if _, err := db.GetUser(ctx, channelID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("channel")
		}
		return nil, err
	}

	subscribers, err := db.SubscriberCount(ctx, channelID)
	if err != nil {
		return nil, err
	}
	videos, err := docstore.All(ctx, db.store, collVideos, func(v *models.Video) bool { return v.OwnerID == channelID })
	if err != nil {
		return nil, storeErr("channel videos", err)
	}

	stats := &models.ChannelStats{SubscriberCount: subscribers, VideoCount: len(videos)}
	targets := make([]models.Target, len(videos))
	for i := range videos {
		stats.ViewCount += videos[i].Views
		targets[i] = models.VideoRef(videos[i].ID)
	}
	likes, err := db.likeCounts(ctx, targets)
	if err != nil {
		return nil, err
	}
	for _, n := range likes {
		stats.LikeCount += n
	}
	return stats, nil
}

// ChannelProfile returns the public channel page of username as seen by
// viewerID. viewerID may be empty for anonymous viewers.
func (db *DB) ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	u, err := db.GetUserByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("channel")
		}
		return nil, err
	}

	subscribers, err := db.SubscriberCount(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := db.SubscribedCount(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	subscribed, err := db.IsSubscribed(ctx, viewerID, u.ID)
	if err != nil {
		return nil, err
	}

	return &models.ChannelProfile{
		UserSummary:               u.Summary(),
		Email:                     u.Email,
		CoverImage:                u.CoverImage.URLOrEmpty(),
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              subscribed,
	}, nil
}
