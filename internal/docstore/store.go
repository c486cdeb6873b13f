// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/tomtom215/vidshare/internal/config"
)

// Driver names accepted by Open.
const (
	DriverBadger = "badger"
	DriverMongo  = "mongo"
)

var (
	// ErrNotFound is returned when a document or unique key does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when a unique key is already held by another
	// document, or when an optimistic update lost a race too many times.
	ErrConflict = errors.New("document conflict")
)

// maxMutateAttempts bounds optimistic retries in Mutate.
const maxMutateAttempts = 8

// KeyFunc reports the unique keys a document currently owns.
type KeyFunc func() []string

// diffKeys returns the keys in after but not before, and in before but not after.
func diffKeys(before, after []string) (add, drop []string) {
	seen := make(map[string]bool, len(before))
	for _, k := range before {
		seen[k] = true
	}
	for _, k := range after {
		if seen[k] {
			delete(seen, k)
			continue
		}
		add = append(add, k)
	}
	for _, k := range before {
		if seen[k] {
			drop = append(drop, k)
		}
	}
	return add, drop
}

// resetDoc zeroes the value doc points to so a retried decode starts clean.
func resetDoc(doc interface{}) {
	v := reflect.ValueOf(doc)
	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
	}
}

// Store is a minimal document store. Documents are JSON encoded values keyed
// by (collection, id). Unique keys are strings owned by at most one document
// per collection and are used both for uniqueness and point lookups.
type Store interface {
	// Get decodes the document into out.
	Get(ctx context.Context, coll, id string, out interface{}) error

	// Insert stores a new document and claims its unique keys atomically.
	// Returns ErrConflict if id or any key is taken.
	Insert(ctx context.Context, coll, id string, doc interface{}, keys ...string) error

	// Replace overwrites an existing document.
	Replace(ctx context.Context, coll, id string, doc interface{}) error

	// Update overwrites an existing document, claiming add and releasing drop.
	Update(ctx context.Context, coll, id string, doc interface{}, add, drop []string) error

	// Mutate loads the document into doc, calls fn, and writes doc back. The
	// write only succeeds if the document did not change in between; fn may
	// run more than once. An error from fn aborts without writing. When keys
	// is non-nil it is called before and after fn and the unique keys are
	// moved to match.
	Mutate(ctx context.Context, coll, id string, doc interface{}, fn func() error, keys KeyFunc) error

	// Delete removes the document and releases keys. Missing documents are not an error.
	Delete(ctx context.Context, coll, id string, keys ...string) error

	// Lookup resolves a unique key to its owning document id.
	Lookup(ctx context.Context, coll, key string) (string, error)

	// Scan calls fn for every document in coll. Returning an error stops the scan.
	Scan(ctx context.Context, coll string, fn func(id string, raw []byte) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Open creates the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case DriverBadger, "":
		if cfg.InMemory {
			return OpenBadgerInMemory()
		}
		return OpenBadger(cfg.Path)
	case DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
