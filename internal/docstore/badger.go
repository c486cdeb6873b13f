// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package docstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vidshare/internal/logging"
)

// Key prefixes for BadgerDB storage
const (
	docKeyPrefix    = "doc/"
	uniqueKeyPrefix = "uniq/"
)

// BadgerStore implements Store on an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a BadgerDB at path.
func OpenBadger(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("badger path cannot be empty")
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB internal logs
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().Str("path", path).Msg("Document store opened")
	return &BadgerStore{db: db}, nil
}

// OpenBadgerInMemory opens a BadgerDB that lives only in memory.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory BadgerDB: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func docKey(coll, id string) []byte {
	return []byte(docKeyPrefix + coll + "/" + id)
}

func uniqueKey(coll, key string) []byte {
	return []byte(uniqueKeyPrefix + coll + "/" + key)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func claimKeys(txn *badger.Txn, coll, id string, keys []string) error {
	for _, k := range keys {
		uk := uniqueKey(coll, k)
		item, err := txn.Get(uk)
		if err == nil {
			owner, verr := item.ValueCopy(nil)
			if verr != nil {
				return verr
			}
			if string(owner) != id {
				return fmt.Errorf("%w: %s/%s", ErrConflict, coll, k)
			}
			continue
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(uk, []byte(id)); err != nil {
			return fmt.Errorf("set unique key: %w", err)
		}
	}
	return nil
}

func releaseKeys(txn *badger.Txn, coll, id string, keys []string) error {
	for _, k := range keys {
		uk := uniqueKey(coll, k)
		item, err := txn.Get(uk)
		if errors.Is(err, badger.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		owner, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		// Only the owner releases a key.
		if string(owner) != id {
			continue
		}
		if err := txn.Delete(uk); err != nil {
			return fmt.Errorf("delete unique key: %w", err)
		}
	}
	return nil
}

// update runs fn in a read-write transaction and maps badger's txn conflict.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: concurrent transaction", ErrConflict)
	}
	return err
}

// Get decodes a document into out.
func (s *BadgerStore) Get(ctx context.Context, coll, id string, out interface{}) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(coll, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", coll, id, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// Insert stores a new document and claims its unique keys in one transaction.
func (s *BadgerStore) Insert(ctx context.Context, coll, id string, doc interface{}, keys ...string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", coll, err)
	}

	return s.update(func(txn *badger.Txn) error {
		dk := docKey(coll, id)
		found, err := exists(txn, dk)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s/%s exists", ErrConflict, coll, id)
		}
		if err := claimKeys(txn, coll, id, keys); err != nil {
			return err
		}
		return txn.Set(dk, data)
	})
}

// Replace overwrites an existing document.
func (s *BadgerStore) Replace(ctx context.Context, coll, id string, doc interface{}) error {
	return s.Update(ctx, coll, id, doc, nil, nil)
}

// Update overwrites an existing document and moves its unique keys.
func (s *BadgerStore) Update(ctx context.Context, coll, id string, doc interface{}, add, drop []string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", coll, err)
	}

	return s.update(func(txn *badger.Txn) error {
		dk := docKey(coll, id)
		found, err := exists(txn, dk)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if err := releaseKeys(txn, coll, id, drop); err != nil {
			return err
		}
		if err := claimKeys(txn, coll, id, add); err != nil {
			return err
		}
		return txn.Set(dk, data)
	})
}

// Mutate applies fn to the stored document inside a transaction, retrying
// when badger reports a conflicting concurrent write.
func (s *BadgerStore) Mutate(ctx context.Context, coll, id string, doc interface{}, fn func() error, keys KeyFunc) error {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			dk := docKey(coll, id)
			item, err := txn.Get(dk)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			resetDoc(doc)
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, doc)
			}); err != nil {
				return err
			}
			var before []string
			if keys != nil {
				before = keys()
			}
			if err := fn(); err != nil {
				return err
			}
			if keys != nil {
				add, drop := diffKeys(before, keys())
				if err := releaseKeys(txn, coll, id, drop); err != nil {
					return err
				}
				if err := claimKeys(txn, coll, id, add); err != nil {
					return err
				}
			}
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", coll, err)
			}
			return txn.Set(dk, data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w: %s/%s changed concurrently", ErrConflict, coll, id)
}

// Delete removes a document and releases its unique keys.
func (s *BadgerStore) Delete(ctx context.Context, coll, id string, keys ...string) error {
	return s.update(func(txn *badger.Txn) error {
		if err := releaseKeys(txn, coll, id, keys); err != nil {
			return err
		}
		if err := txn.Delete(docKey(coll, id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete %s/%s: %w", coll, id, err)
		}
		return nil
	})
}

// Lookup resolves a unique key to a document id.
func (s *BadgerStore) Lookup(ctx context.Context, coll, key string) (string, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(uniqueKey(coll, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = string(val)
		return nil
	})
	return id, err
}

// Scan iterates all documents of a collection in key order.
func (s *BadgerStore) Scan(ctx context.Context, coll string, fn func(id string, raw []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(docKeyPrefix + coll + "/")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			id := string(bytes.TrimPrefix(item.Key(), prefix))
			err := item.Value(func(val []byte) error {
				return fn(id, val)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// RunGC reclaims value log space until badger reports nothing left to rewrite.
func (s *BadgerStore) RunGC(ratio float64) error {
	if s.db.Opts().InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
