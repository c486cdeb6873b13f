// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
	"github.com/tomtom215/vidshare/internal/models"
)

// Router uploads to the first provider that succeeds and routes deletes to
// the provider recorded on the asset.
type Router struct {
	providers []Provider
	byName    map[models.StorageProvider]Provider
	prober    DurationProber
}

// NewRouter builds a router trying providers in the given order. A nil
// prober disables duration probing.
func NewRouter(prober DurationProber, providers ...Provider) *Router {
	if prober == nil {
		prober = noProbe{}
	}
	r := &Router{
		providers: providers,
		byName:    make(map[models.StorageProvider]Provider, len(providers)),
		prober:    prober,
	}
	for _, p := range providers {
		r.byName[p.Name()] = p
	}
	return r
}

// NewRouterFromConfig builds the providers named in cfg.Order. Unconfigured
// providers are skipped with a warning.
func NewRouterFromConfig(ctx context.Context, cfg config.StorageConfig) (*Router, error) {
	var providers []Provider
	for _, name := range cfg.Order {
		switch name {
		case config.ProviderMediaHost:
			if !cfg.MediaHost.Configured() {
				logging.Warn().Str("provider", name).Msg("Storage provider not configured, skipping")
				continue
			}
			providers = append(providers, NewMediaHostProvider(cfg.MediaHost))
		case config.ProviderS3:
			if !cfg.S3.Configured() {
				logging.Warn().Str("provider", name).Msg("Storage provider not configured, skipping")
				continue
			}
			p, err := NewS3Provider(ctx, cfg.S3)
			if err != nil {
				return nil, fmt.Errorf("s3 provider: %w", err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown storage provider %q", name)
		}
	}
	if len(providers) == 0 {
		logging.Warn().Msg("No storage provider configured, uploads will fail")
	}
	return NewRouter(NewFFProbe(cfg.FFProbePath), providers...), nil
}

// Providers returns the provider names in try order.
func (r *Router) Providers() []models.StorageProvider {
	names := make([]models.StorageProvider, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Upload stores the local file at path. Each provider gets a single attempt;
// the returned asset is tagged with whichever provider accepted it. For videos
// whose provider did not report a duration, the local file is probed.
func (r *Router) Upload(ctx context.Context, path, mimetype string) (*models.StoredAsset, error) {
	if path == "" {
		return nil, apperr.Validation("file is required")
	}
	var errs []error
	for i, p := range r.providers {
		name := string(p.Name())
		start := time.Now()
		asset, err := p.Upload(ctx, path, mimetype)
		metrics.RecordUpload(name, time.Since(start), err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("provider", name).Msg("Upload failed, trying next provider")
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if i > 0 {
			metrics.RecordFallback(name)
			logging.Ctx(ctx).Warn().Str("provider", name).Msg("Upload served by fallback provider")
		}
		asset.StorageProvider = p.Name()
		if asset.ResourceKind == models.ResourceVideo && asset.DurationSeconds <= 0 {
			asset.DurationSeconds = r.prober.Probe(ctx, path)
		}
		return &asset, nil
	}
	if len(errs) == 0 {
		errs = append(errs, ErrNotConfigured)
	}
	return nil, apperr.Upstream("file upload failed", errors.Join(errs...))
}

// Delete removes a resource from the provider that stored it. Failures are
// logged and counted but never returned: callers delete assets after the
// owning record is already gone.
func (r *Router) Delete(ctx context.Context, publicID string, provider models.StorageProvider, kind models.ResourceKind) {
	if publicID == "" || provider == models.ProviderExternal {
		return
	}
	p, ok := r.byName[provider]
	if !ok {
		metrics.RecordDeleteFailure(string(provider))
		logging.Ctx(ctx).Warn().Str("provider", string(provider)).Str("public_id", publicID).Msg("No provider for stored asset, leaving orphan")
		return
	}
	if err := p.Delete(ctx, publicID, kind); err != nil {
		metrics.RecordDeleteFailure(string(provider))
		logging.Ctx(ctx).Warn().Err(err).Str("provider", string(provider)).Str("public_id", publicID).Msg("Asset delete failed")
	}
}

// Release deletes a stored asset if it is deletable. Nil is allowed.
func (r *Router) Release(ctx context.Context, asset *models.StoredAsset) {
	if !asset.Deletable() {
		return
	}
	r.Delete(ctx, asset.PublicID, asset.StorageProvider, asset.ResourceKind)
}

// ThumbnailURL derives a thumbnail for a video asset using the provider that
// stored it.
func (r *Router) ThumbnailURL(asset models.StoredAsset) string {
	if p, ok := r.byName[asset.StorageProvider]; ok {
		return p.ThumbnailURL(asset)
	}
	return asset.URL
}
