// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package services

import (
	"context"
	"time"

	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
)

// GarbageCollector is satisfied by *docstore.BadgerStore.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

// Store GC defaults.
const (
	DefaultGCInterval     = 10 * time.Minute
	DefaultGCDiscardRatio = 0.5
)

// StoreGCService periodically reclaims value log space of the embedded
// document store. Likes, views and history rewrite small documents often,
// so the value log grows quickly without it.
type StoreGCService struct {
	store    GarbageCollector
	interval time.Duration
	ratio    float64
	name     string
}

// NewStoreGCService creates the service. Non-positive values use the defaults.
func NewStoreGCService(store GarbageCollector, interval time.Duration, ratio float64) *StoreGCService {
	if interval <= 0 {
		interval = DefaultGCInterval
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultGCDiscardRatio
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		ratio:    ratio,
		name:     "store-gc",
	}
}

// Serve implements suture.Service. GC errors are logged and the loop keeps
// running; only cancellation ends it.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.ratio); err != nil {
				metrics.RecordGCRun("failure")
				logging.Error().Err(err).Msg("Document store GC failed")
				continue
			}
			metrics.RecordGCRun("success")
			logging.Debug().Dur("duration", time.Since(start)).Msg("Document store GC finished")
		}
	}
}

// String implements fmt.Stringer.
func (s *StoreGCService) String() string {
	return s.name
}
