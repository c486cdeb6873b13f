// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

//go:build integration

package storage

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/testinfra"
)

func TestS3Provider_MinIO(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	minio, err := testinfra.NewMinioContainer(ctx)
	if err != nil {
		t.Skipf("minio unavailable: %v", err)
	}
	t.Cleanup(func() { _ = minio.Terminate(context.Background()) })

	cfg := config.S3Config{
		Region:          "us-east-1",
		Bucket:          "vidshare-test",
		Endpoint:        minio.Endpoint,
		AccessKeyID:     testinfra.MinioAccessKey,
		SecretAccessKey: testinfra.MinioSecretKey,
		PublicBaseURL:   minio.Endpoint + "/vidshare-test",
		UsePathStyle:    true,
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		t.Fatalf("aws config: %v", err)
	}
	admin := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})
	if _, err := admin.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}

	p, err := NewS3Provider(ctx, cfg)
	if err != nil {
		t.Fatalf("NewS3Provider: %v", err)
	}
	r := NewRouter(nil, p)

	asset, err := r.Upload(ctx, tempFile(t, "movie.mp4"), "video/mp4")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if asset.StorageProvider != models.ProviderSecondary {
		t.Errorf("provider = %q", asset.StorageProvider)
	}

	obj, err := admin.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(cfg.Bucket), Key: aws.String(asset.PublicID)})
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	body, _ := io.ReadAll(obj.Body)
	_ = obj.Body.Close()
	if string(body) != "data" {
		t.Errorf("object body = %q", body)
	}

	r.Release(ctx, asset)
	if _, err := admin.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(cfg.Bucket), Key: aws.String(asset.PublicID)}); err == nil {
		t.Error("object still exists after Release")
	}
}
