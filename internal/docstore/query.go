// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// errStopScan ends a scan early without reporting an error.
var errStopScan = errors.New("stop scan")

// Query selects, orders and slices the documents of a collection.
// A nil Filter matches everything; a nil Less keeps scan order.
// Limit <= 0 means no limit.
type Query[T any] struct {
	Filter func(*T) bool
	Less   func(a, b *T) bool
	Offset int
	Limit  int
}

// All returns every document in coll matching filter.
func All[T any](ctx context.Context, s Store, coll string, filter func(*T) bool) ([]T, error) {
	var out []T
	err := s.Scan(ctx, coll, func(id string, raw []byte) error {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode %s/%s: %w", coll, id, err)
		}
		if filter == nil || filter(&item) {
			out = append(out, item)
		}
		return nil
	})
	return out, err
}

// List runs q against coll and returns the requested slice plus the total
// number of matching documents.
func List[T any](ctx context.Context, s Store, coll string, q Query[T]) ([]T, int, error) {
	items, err := All(ctx, s, coll, q.Filter)
	if err != nil {
		return nil, 0, err
	}
	if q.Less != nil {
		sort.SliceStable(items, func(i, j int) bool { return q.Less(&items[i], &items[j]) })
	}
	total := len(items)

	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && q.Limit < end-start {
		end = start + q.Limit
	}
	return items[start:end], total, nil
}

// Count returns the number of documents matching filter.
func Count[T any](ctx context.Context, s Store, coll string, filter func(*T) bool) (int, error) {
	n := 0
	err := s.Scan(ctx, coll, func(id string, raw []byte) error {
		if filter == nil {
			n++
			return nil
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode %s/%s: %w", coll, id, err)
		}
		if filter(&item) {
			n++
		}
		return nil
	})
	return n, err
}

// First returns the first document matching filter, or ErrNotFound.
func First[T any](ctx context.Context, s Store, coll string, filter func(*T) bool) (*T, error) {
	var found *T
	err := s.Scan(ctx, coll, func(id string, raw []byte) error {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode %s/%s: %w", coll, id, err)
		}
		if filter == nil || filter(&item) {
			found = &item
			return errStopScan
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// DeleteWhere removes every document matching filter. keys returns the unique
// keys owned by a document so they are released with it. It returns the
// deleted documents.
func DeleteWhere[T any](ctx context.Context, s Store, coll string, filter func(*T) bool, keys func(*T) []string) ([]T, error) {
	type match struct {
		id   string
		item T
	}
	var matches []match
	err := s.Scan(ctx, coll, func(id string, raw []byte) error {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("decode %s/%s: %w", coll, id, err)
		}
		if filter(&item) {
			matches = append(matches, match{id: id, item: item})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	deleted := make([]T, 0, len(matches))
	for i := range matches {
		var k []string
		if keys != nil {
			k = keys(&matches[i].item)
		}
		if err := s.Delete(ctx, coll, matches[i].id, k...); err != nil {
			return deleted, err
		}
		deleted = append(deleted, matches[i].item)
	}
	return deleted, nil
}
