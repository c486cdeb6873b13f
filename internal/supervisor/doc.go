// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package supervisor runs the long-lived services of the server under a suture
v4 supervisor tree.

The tree has three layers so a failing background worker never takes the
API down with it:

	RootSupervisor ("vidshare")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService (badger backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── RunnerService "email-queue"
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff once FailureThreshold
is exceeded. Supervisor events are logged through sutureslog, bridged to
zerolog by logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Supervisor.ShutdownTimeout))
	err = tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
