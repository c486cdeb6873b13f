// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package models

import "time"

// Role is the coarse authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the persisted account record, including credentials.
//
// Invariants:
//   - RefreshToken holds at most one value; issuing a new pair overwrites it.
//   - Verification and PasswordReset are single use and cleared when consumed.
type User struct {
	ID         string       `json:"id"`
	Username   string       `json:"username"`
	Email      string       `json:"email"`
	Fullname   string       `json:"fullname"`
	Avatar     *StoredAsset `json:"avatar,omitempty"`
	CoverImage *StoredAsset `json:"coverImage,omitempty"`
	Role       Role         `json:"role"`

	PasswordHash    string `json:"passwordHash"`
	RefreshToken    string `json:"refreshToken,omitempty"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	OAuthSubject    string `json:"oauthSubject,omitempty"`

	Verification  *VerificationGrant `json:"verification,omitempty"`
	PasswordReset *ResetGrant        `json:"passwordReset,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VerificationGrant backs both email verification channels: a 6 digit code
// and an opaque link token. They share one expiry and are cleared together.
type VerificationGrant struct {
	Code          string    `json:"code"`
	LinkTokenHash string    `json:"linkTokenHash,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired reports whether the grant is past its expiry at now.
func (g *VerificationGrant) Expired(now time.Time) bool {
	return g == nil || !now.Before(g.ExpiresAt)
}

// ResetGrant is an outstanding password reset. Only the token hash is stored.
type ResetGrant struct {
	TokenHash string    `json:"tokenHash"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the grant is past its expiry at now.
func (g *ResetGrant) Expired(now time.Time) bool {
	return g == nil || !now.Before(g.ExpiresAt)
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PublicUser is the projection of User safe to return to clients.
type PublicUser struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Fullname        string    `json:"fullname"`
	Avatar          string    `json:"avatar"`
	CoverImage      string    `json:"coverImage,omitempty"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Public returns the client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Fullname:        u.Fullname,
		Avatar:          u.Avatar.URLOrEmpty(),
		CoverImage:      u.CoverImage.URLOrEmpty(),
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserSummary is the owner block embedded in videos, comments and tweets.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// Summary returns the owner block for u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Fullname: u.Fullname, Avatar: u.Avatar.URLOrEmpty()}
}

// ChannelProfile is a user's public channel page.
type ChannelProfile struct {
	UserSummary
	Email                     string `json:"email"`
	CoverImage                string `json:"coverImage,omitempty"`
	SubscribersCount          int    `json:"subscribersCount"`
	ChannelsSubscribedToCount int    `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}
