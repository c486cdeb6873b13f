// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package models

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// TargetKind discriminates what a Target points at.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// ErrInvalidTarget is returned when decoding a target with an unknown kind or empty id.
var ErrInvalidTarget = errors.New("invalid target reference")

// Target references exactly one video, comment or tweet. The fields are
// unexported so a Target can only come from VideoRef, CommentRef, TweetRef or
// a validated decode; the zero value references nothing.
type Target struct {
	kind TargetKind
	id   string
}

// VideoRef returns a Target pointing at a video.
func VideoRef(id string) Target { return Target{kind: TargetVideo, id: id} }

// CommentRef returns a Target pointing at a comment.
func CommentRef(id string) Target { return Target{kind: TargetComment, id: id} }

// TweetRef returns a Target pointing at a tweet.
func TweetRef(id string) Target { return Target{kind: TargetTweet, id: id} }

// ParseTarget builds a Target from an untrusted kind string.
func ParseTarget(kind, id string) (Target, error) {
	t := Target{kind: TargetKind(kind), id: id}
	if !t.valid() {
		return Target{}, fmt.Errorf("%w: kind=%q", ErrInvalidTarget, kind)
	}
	return t, nil
}

// Kind returns the discriminator.
func (t Target) Kind() TargetKind { return t.kind }

// ID returns the referenced record id.
func (t Target) ID() string { return t.id }

// IsZero reports whether t references nothing.
func (t Target) IsZero() bool { return t.kind == "" && t.id == "" }

// Key is a stable string form used for unique indexes, e.g. "video:abc".
func (t Target) Key() string { return string(t.kind) + ":" + t.id }

// CanHaveComments reports whether comments may be attached to the target.
func (t Target) CanHaveComments() bool {
	return t.kind == TargetVideo || t.kind == TargetTweet
}

func (t Target) String() string { return t.Key() }

func (t Target) valid() bool {
	if t.id == "" {
		return false
	}
	switch t.kind {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	}
	return false
}

type targetJSON struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// MarshalJSON encodes the target as {"kind": ..., "id": ...}.
func (t Target) MarshalJSON() ([]byte, error) {
	return json.Marshal(targetJSON{Kind: t.kind, ID: t.id})
}

// UnmarshalJSON decodes and validates a target.
func (t *Target) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTarget(string(raw.Kind), raw.ID)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
