// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package testinfra starts throwaway containers for integration tests.
//
// It wraps testcontainers-go with the two backing services Vidshare can
// run against besides its embedded defaults: MongoDB for the document
// store and MinIO as an S3-compatible media bucket.
//
//	func TestMongoStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    store, err := docstore.OpenMongo(ctx, mongo.URI, "vidshare_test", 10*time.Second)
//	    // ...
//	}
//
// All files carry the integration build tag:
//
//	go test -tags integration ./internal/docstore/... ./internal/storage/...
//
// Tests skip when Docker is unavailable. The first run pulls images.
package testinfra
