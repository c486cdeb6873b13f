// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package services provides suture.Service wrappers for long-running
components of the server.

Each wrapper implements the suture v4 interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and String for identification in supervisor logs.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - http.ErrServerClosed is treated as a clean stop

Store GC (StoreGCService):
  - Runs badger value log GC on a ticker
  - GC failures are logged and never restart the service

Runner (RunnerService):
  - Adapts Run(ctx) loops such as the notify email queue
  - A loop that returns before cancellation is reported as a failure

# Placement

	tree.AddDataService(services.NewStoreGCService(badgerStore, 0, 0))
	tree.AddMessagingService(services.NewRunnerService("email-queue", queue))
	tree.AddAPIService(services.NewHTTPServerService(server, 30*time.Second))
*/
package services
