// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/models"
)

// ObjectAPI is the part of the S3 client the provider uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Provider stores files in an S3 bucket (or any S3 compatible store) under
// <folder>/<unix millis>-<basename>. The object key is the asset public id.
type S3Provider struct {
	cfg    config.S3Config
	client ObjectAPI
	now    func() time.Time
}

// NewS3Provider builds the secondary provider. Static credentials are used
// when configured, otherwise the default AWS credential chain applies.
func NewS3Provider(ctx context.Context, cfg config.S3Config) (*S3Provider, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3ProviderWithClient(cfg, client), nil
}

// NewS3ProviderWithClient wires a provider to an existing client.
func NewS3ProviderWithClient(cfg config.S3Config, client ObjectAPI) *S3Provider {
	return &S3Provider{cfg: cfg, client: client, now: time.Now}
}

// Name implements Provider.
func (p *S3Provider) Name() models.StorageProvider {
	return models.ProviderSecondary
}

// Upload implements Provider.
func (p *S3Provider) Upload(ctx context.Context, path, mimetype string) (models.StoredAsset, error) {
	if !p.cfg.Configured() {
		return models.StoredAsset{}, ErrNotConfigured
	}
	f, err := os.Open(path) //nolint:gosec // path comes from our own upload directory
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := folderFor(mimetype) + "/" + strconv.FormatInt(p.now().UnixMilli(), 10) + "-" + baseName(path)
	in := &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if mimetype != "" {
		in.ContentType = aws.String(mimetype)
	}
	if p.cfg.PublicBaseURL == "" {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := p.client.PutObject(ctx, in); err != nil {
		return models.StoredAsset{}, fmt.Errorf("s3 put %s: %w", key, err)
	}

	return models.StoredAsset{
		URL:             p.objectURL(key),
		PublicID:        key,
		StorageProvider: p.Name(),
		ResourceKind:    models.ResourceKindFor(mimetype),
	}, nil
}

// Delete implements Provider. The resource kind is irrelevant for S3.
func (p *S3Provider) Delete(ctx context.Context, publicID string, _ models.ResourceKind) error {
	if !p.cfg.Configured() {
		return ErrNotConfigured
	}
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", publicID, err)
	}
	return nil
}

// ThumbnailURL implements Provider. S3 has no frame extraction, so the video
// URL itself is used.
func (p *S3Provider) ThumbnailURL(asset models.StoredAsset) string {
	return asset.URL
}

func (p *S3Provider) objectURL(key string) string {
	if p.cfg.PublicBaseURL != "" {
		return strings.TrimRight(p.cfg.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, key)
}
