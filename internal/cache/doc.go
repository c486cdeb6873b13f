// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package cache provides small in-memory structures for request-path
deduplication.

# Window

Window remembers keys for a fixed duration with bounded memory. It backs
view counting: a signed in viewer who reloads a video inside the window
refreshes their watch history but does not add another view.

	views := cache.NewWindow(50000, 30*time.Second)
	if !views.Seen(userID + ":" + videoID) {
	    // count the view
	}

Lookups, inserts and evictions are O(1) using a map plus a doubly-linked
list ordered by last sighting. All methods are safe for concurrent use.
*/
package cache
