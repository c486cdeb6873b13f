// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"crypto/sha1" //nolint:gosec // the media host API mandates SHA-1 request signatures
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
	"github.com/tomtom215/vidshare/internal/models"
)

const defaultMediaHostBaseURL = "https://api.cloudinary.com"

// MediaHostProvider stores files on a Cloudinary compatible media host using
// signed upload and destroy calls. Calls go through a circuit breaker so a
// failing host is skipped quickly while the router falls back.
type MediaHostProvider struct {
	cfg    config.MediaHostConfig
	client *http.Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	now    func() time.Time
}

// uploadResponse is the subset of the upload API reply we use.
type uploadResponse struct {
	PublicID     string  `json:"public_id"`
	SecureURL    string  `json:"secure_url"`
	URL          string  `json:"url"`
	ResourceType string  `json:"resource_type"`
	Duration     float64 `json:"duration"`
}

type destroyResponse struct {
	Result string `json:"result"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewMediaHostProvider creates the primary provider.
func NewMediaHostProvider(cfg config.MediaHostConfig) *MediaHostProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultMediaHostBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &MediaHostProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cb:     newBreaker("media-host"),
		now:    time.Now,
	}
}

// newBreaker builds a circuit breaker that opens after five consecutive
// failures and probes again after a minute.
func newBreaker(name string) *gobreaker.CircuitBreaker[interface{}] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// execute runs fn through the breaker and keeps the breaker metrics current.
func (p *MediaHostProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	name := p.cb.Name()
	result, err := p.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(float64(p.cb.Counts().ConsecutiveFailures))
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	return result, nil
}

// Name implements Provider.
func (p *MediaHostProvider) Name() models.StorageProvider {
	return models.ProviderPrimary
}

// Upload implements Provider.
func (p *MediaHostProvider) Upload(ctx context.Context, filePath, mimetype string) (models.StoredAsset, error) {
	if !p.cfg.Configured() {
		return models.StoredAsset{}, ErrNotConfigured
	}
	result, err := p.execute(func() (interface{}, error) {
		return p.upload(ctx, filePath, mimetype)
	})
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("media host upload: %w", err)
	}
	resp, ok := result.(*uploadResponse)
	if !ok {
		return models.StoredAsset{}, fmt.Errorf("media host upload: unexpected result type %T", result)
	}

	kind := models.ResourceKind(resp.ResourceType)
	if kind == "" {
		kind = models.ResourceKindFor(mimetype)
	}
	assetURL := resp.SecureURL
	if assetURL == "" {
		assetURL = resp.URL
	}
	return models.StoredAsset{
		URL:             assetURL,
		PublicID:        resp.PublicID,
		StorageProvider: p.Name(),
		ResourceKind:    kind,
		DurationSeconds: resp.Duration,
	}, nil
}

func (p *MediaHostProvider) upload(ctx context.Context, filePath, mimetype string) (*uploadResponse, error) {
	f, err := os.Open(filePath) //nolint:gosec // path comes from our own upload directory
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	params := map[string]string{
		"folder":    joinFolder(p.cfg.Folder, folderFor(mimetype)),
		"timestamp": strconv.FormatInt(p.now().Unix(), 10),
	}

	// The form is written into a pipe while the request reads it, so the
	// file is never held in memory.
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pw.CloseWithError(writeUploadForm(mw, p.signedParams(params), baseName(filePath), f))
	}()
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("auto", "upload"), pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := p.do(req, &out); err != nil {
		return nil, err
	}
	if out.PublicID == "" {
		return nil, errors.New("response has no public_id")
	}
	return &out, nil
}

// writeUploadForm writes the signed fields and then the file part.
func writeUploadForm(mw *multipart.Writer, fields map[string]string, name string, file io.Reader) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	return mw.Close()
}

// Delete implements Provider.
func (p *MediaHostProvider) Delete(ctx context.Context, publicID string, kind models.ResourceKind) error {
	if !p.cfg.Configured() {
		return ErrNotConfigured
	}
	if kind == "" {
		kind = models.ResourceImage
	}
	_, err := p.execute(func() (interface{}, error) {
		form := url.Values{}
		for k, v := range p.signedParams(map[string]string{
			"public_id": publicID,
			"timestamp": strconv.FormatInt(p.now().Unix(), 10),
		}) {
			form.Set(k, v)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(string(kind), "destroy"), strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var out destroyResponse
		if err := p.do(req, &out); err != nil {
			return nil, err
		}
		if out.Result != "ok" && out.Result != "not found" {
			return nil, fmt.Errorf("destroy result %q", out.Result)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("media host delete %s: %w", publicID, err)
	}
	return nil
}

// ThumbnailURL returns the first frame of a video as a JPEG using the host's
// on-the-fly transformation: .../upload/so_0/<publicId>.jpg
func (p *MediaHostProvider) ThumbnailURL(asset models.StoredAsset) string {
	idx := strings.Index(asset.URL, "/upload/")
	if idx < 0 || asset.PublicID == "" {
		return asset.URL
	}
	return asset.URL[:idx] + "/upload/so_0/" + asset.PublicID + ".jpg"
}

func (p *MediaHostProvider) endpoint(resource, action string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path.Join("/v1_1", p.cfg.CloudName, resource, action)
}

// signedParams adds api_key and signature to params. The signature is the
// SHA-1 of the sorted key=value pairs joined by '&' followed by the secret.
func (p *MediaHostProvider) signedParams(params map[string]string) map[string]string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + p.cfg.APISecret)) //nolint:gosec // mandated by the API
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	out["api_key"] = p.cfg.APIKey
	out["signature"] = hex.EncodeToString(sum[:])
	return out
}

func (p *MediaHostProvider) do(req *http.Request, out interface{}) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
