// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMinioImage is the S3-compatible server used for integration tests.
	DefaultMinioImage = "minio/minio:latest"
	minioPort         = "9000"

	MinioAccessKey = "minioadmin"
	MinioSecretKey = "minioadmin"
)

// MinioContainer is a running MinIO server.
type MinioContainer struct {
	testcontainers.Container
	Endpoint string
}

// NewMinioContainer starts MinIO and waits for its health endpoint.
func NewMinioContainer(ctx context.Context) (*MinioContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMinioImage,
		ExposedPorts: []string{minioPort + "/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinioAccessKey,
			"MINIO_ROOT_PASSWORD": MinioSecretKey,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(minioPort+"/tcp"),
			wait.ForHTTP("/minio/health/live").WithPort(minioPort+"/tcp"),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start minio container: %w", err)
	}

	addr, err := hostAddr(ctx, container, minioPort)
	if err != nil {
		return nil, err
	}

	return &MinioContainer{
		Container: container,
		Endpoint:  "http://" + addr,
	}, nil
}
