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

func subscriptionKey(subscriberID, channelID string) string {
	return subscriberID + "|" + channelID
}

func subscriptionKeys(s *models.Subscription) []string {
	return []string{subscriptionKey(s.SubscriberID, s.ChannelID)}
}

// ToggleSubscription subscribes subscriberID to channelID, or unsubscribes if
// already subscribed. It reports whether the subscription exists afterwards.
func (db *DB) ToggleSubscription(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, apperr.Validation("you cannot subscribe to your own channel")
	}
	if _, err := db.GetUser(ctx, channelID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return false, apperr.NotFound("channel")
		}
		return false, err
	}

	key := subscriptionKey(subscriberID, channelID)
	id, err := db.store.Lookup(ctx, collSubscriptions, key)
	switch {
	case err == nil:
		if err := db.store.Delete(ctx, collSubscriptions, id, key); err != nil {
			return false, storeErr("unsubscribe", err)
		}
		return false, nil
	case !errors.Is(err, docstore.ErrNotFound):
		return false, storeErr("lookup subscription", err)
	}

	sub := &models.Subscription{ID: newID(), SubscriberID: subscriberID, ChannelID: channelID, CreatedAt: db.now()}
	err = db.store.Insert(ctx, collSubscriptions, sub.ID, sub, key)
	if errors.Is(err, docstore.ErrConflict) {
		return true, nil
	}
	if err != nil {
		return false, storeErr("subscribe", err)
	}
	return true, nil
}

// IsSubscribed reports whether subscriberID follows channelID.
func (db *DB) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == "" {
		return false, nil
	}
	_, err := db.store.Lookup(ctx, collSubscriptions, subscriptionKey(subscriberID, channelID))
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("lookup subscription", err)
	}
	return true, nil
}

// SubscriberCount returns how many users follow channelID.
func (db *DB) SubscriberCount(ctx context.Context, channelID string) (int, error) {
	n, err := docstore.Count(ctx, db.store, collSubscriptions, func(s *models.Subscription) bool { return s.ChannelID == channelID })
	return n, storeErr("count subscribers", err)
}

// SubscribedCount returns how many channels subscriberID follows.
func (db *DB) SubscribedCount(ctx context.Context, subscriberID string) (int, error) {
	n, err := docstore.Count(ctx, db.store, collSubscriptions, func(s *models.Subscription) bool { return s.SubscriberID == subscriberID })
	return n, storeErr("count subscriptions", err)
}

// ChannelSubscribers lists the users following channelID, newest first.
func (db *DB) ChannelSubscribers(ctx context.Context, channelID string) ([]models.SubscriberView, error) {
	if _, err := db.GetUser(ctx, channelID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("channel")
		}
		return nil, err
	}
	return db.subscriptionViews(ctx,
		func(s *models.Subscription) bool { return s.ChannelID == channelID },
		func(s *models.Subscription) string { return s.SubscriberID })
}

// SubscribedChannels lists the channels subscriberID follows, newest first.
func (db *DB) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscriberView, error) {
	if _, err := db.GetUser(ctx, subscriberID); err != nil {
		return nil, err
	}
	return db.subscriptionViews(ctx,
		func(s *models.Subscription) bool { return s.SubscriberID == subscriberID },
		func(s *models.Subscription) string { return s.ChannelID })
}

func (db *DB) subscriptionViews(ctx context.Context, filter func(*models.Subscription) bool, other func(*models.Subscription) string) ([]models.SubscriberView, error) {
	subs, _, err := docstore.List(ctx, db.store, collSubscriptions, docstore.Query[models.Subscription]{
		Filter: filter,
		Less:   func(a, b *models.Subscription) bool { return a.CreatedAt.After(b.CreatedAt) },
	})
	if err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	ids := make([]string, len(subs))
	for i := range subs {
		ids[i] = other(&subs[i])
	}
	users, err := db.userSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.SubscriberView, len(subs))
	for i := range subs {
		out[i] = models.SubscriberView{User: users[ids[i]], SubscribedAt: subs[i].CreatedAt}
	}
	return out, nil
}

// ListSubscriptions lists every subscription, newest first, for administration.
func (db *DB) ListSubscriptions(ctx context.Context, req models.PageRequest) (models.Page[models.Subscription], error) {
	req = pageBounds(req)
	subs, total, err := docstore.List(ctx, db.store, collSubscriptions, docstore.Query[models.Subscription]{
		Less:   func(a, b *models.Subscription) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.Subscription]{}, storeErr("list subscriptions", err)
	}
	return models.NewPage(subs, total, req), nil
}

// DeleteSubscription removes a subscription by id.
func (db *DB) DeleteSubscription(ctx context.Context, id string) error {
	var s models.Subscription
	if err := db.store.Get(ctx, collSubscriptions, id, &s); err != nil {
		return storeErr("get subscription", notFound(err, "subscription"))
	}
	return storeErr("delete subscription", db.store.Delete(ctx, collSubscriptions, id, subscriptionKeys(&s)...))
}
