// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package docstore provides the document persistence layer.

Two backends implement Store:

  - BadgerStore: embedded BadgerDB (default). Documents live under
    doc/<collection>/<id>, unique keys under uniq/<collection>/<key>.
    Every write runs in a single transaction.
  - MongoStore: MongoDB. Documents are stored as {_id, doc} envelopes and
    unique keys as documents in the _unique collection, so a duplicate key
    insert surfaces as ErrConflict.

Filtering, ordering and pagination are done in Go by the generic helpers
(All, List, Count, First, DeleteWhere). The record stores in
internal/database build their queries and joins on top of them.
*/
package docstore
