// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

// Package authz guards the admin surface with a Casbin RBAC policy.
//
//	Request -> auth.RequireAuth -> authz.Authorize -> Handler
//
// Subjects are user roles ("user", "admin"), objects are request paths
// matched with keyMatch, and actions are read, write or delete derived
// from the HTTP method. Deny rules win over allow rules:
//
//	p, admin, /api/v1/*, *, allow
//	p, user, /api/v1/*, read, allow
//	p, user, /api/v1/admin/*, *, deny
//
// The embedded model.conf and policy.csv are used unless CASBIN_MODEL_PATH or
// CASBIN_POLICY_PATH point at replacements.
package authz
