// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package storage moves uploaded media to remote providers.

Two providers exist:

  - MediaHostProvider: a Cloudinary compatible host. Uploads go to
    <folder>/videos, <folder>/images or <folder>/others with resource type
    "auto". Thumbnails are derived from the first video frame.
  - S3Provider: any S3 compatible bucket. Objects are keyed
    <videos|images|others>/<unix millis>-<basename>.

Router tries providers in configured order, one attempt each, and tags the
resulting StoredAsset with the provider that accepted it. Deletes are routed
by that tag and never fail the caller; failures are logged and counted in
storage_delete_failures_total.

Video durations come from the provider when reported, otherwise from ffprobe
on the local file. An unknown duration is 0.
*/
package storage
