// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package models

import "time"

// Video is a published (or draft) upload.
type Video struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner"`
	VideoFile   StoredAsset `json:"videoFile"`
	Thumbnail   StoredAsset `json:"thumbnail"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// VideoView is a video decorated with its owner and like count.
type VideoView struct {
	ID          string      `json:"id"`
	VideoFile   string      `json:"videoFile"`
	Thumbnail   string      `json:"thumbnail"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
	Views       int64       `json:"views"`
	IsPublished bool        `json:"isPublished"`
	Owner       UserSummary `json:"owner"`
	LikesCount  int         `json:"likesCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// View builds the response form of v.
func (v *Video) View(owner UserSummary, likes int) VideoView {
	return VideoView{
		ID:          v.ID,
		VideoFile:   v.VideoFile.URL,
		Thumbnail:   v.Thumbnail.URL,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		IsPublished: v.IsPublished,
		Owner:       owner,
		LikesCount:  likes,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// Comment is attached to a video or a tweet.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner"`
	Parent    Target    `json:"parent"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentView is a comment decorated with its owner and like count.
type CommentView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Parent     Target      `json:"parent"`
	Owner      UserSummary `json:"owner"`
	LikesCount int         `json:"likesCount"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Like records that a user liked one target. (UserID, Target) is unique.
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"likedBy"`
	Target    Target    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// Playlist is an ordered, duplicate-free list of videos owned by a user.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contains reports whether videoID is in the playlist.
func (p *Playlist) Contains(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// PlaylistSummary is a playlist in a listing.
type PlaylistSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoCount  int       `json:"videoCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistDetail is a playlist with its resolved videos.
type PlaylistDetail struct {
	PlaylistSummary
	Owner  UserSummary `json:"owner"`
	Videos []VideoView `json:"videos"`
}

// Subscription records that Subscriber follows Channel. The pair is unique.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Tweet is a short text post.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TweetView is a tweet decorated with its owner and like count.
type TweetView struct {
	ID         string      `json:"id"`
	Content    string      `json:"content"`
	Owner      UserSummary `json:"owner"`
	LikesCount int         `json:"likesCount"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// CompletionRatio is the fraction of a video that must be watched for it to count as completed.
const CompletionRatio = 0.8

// HistoryEntry is one user's watch record for one video. (UserID, VideoID) is unique.
type HistoryEntry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user"`
	VideoID       string    `json:"video"`
	ViewCount     int       `json:"viewCount"`
	WatchedAt     time.Time `json:"watchedAt"`
	WatchDuration float64   `json:"watchDuration"`
	LastPosition  float64   `json:"lastPosition"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UpdateProgress records a playback position. Completion is sticky.
func (h *HistoryEntry) UpdateProgress(position, duration float64, now time.Time) {
	h.LastPosition = position
	h.WatchDuration = duration
	h.WatchedAt = now
	h.UpdatedAt = now
	if duration > 0 && position/duration > CompletionRatio {
		h.Completed = true
	}
}

// HistoryView is a history entry with its video resolved. Video is nil when
// the video has since been deleted.
type HistoryView struct {
	HistoryEntry
	Video *VideoView `json:"videoDetails,omitempty"`
}

// HistoryStats summarises a user's watch history.
type HistoryStats struct {
	TotalVideos      int           `json:"totalVideos"`
	TotalWatchTime   float64       `json:"totalWatchTime"`
	CompletedVideos  int           `json:"completedVideos"`
	AverageWatchTime float64       `json:"averageWatchTime"`
	RecentActivity   []HistoryView `json:"recentActivity"`
}

// ChannelStats is the creator dashboard summary.
type ChannelStats struct {
	SubscriberCount int   `json:"subscriberCount"`
	VideoCount      int   `json:"videoCount"`
	ViewCount       int64 `json:"viewCount"`
	LikeCount       int   `json:"likeCount"`
}

// SubscriberView is a subscription with the other party resolved.
type SubscriberView struct {
	User         UserSummary `json:"user"`
	SubscribedAt time.Time   `json:"subscribedAt"`
}
