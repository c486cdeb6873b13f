// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tomtom215/vidshare/internal/config"
)

type testDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenBadgerInMemory()
	if err != nil {
		t.Fatalf("OpenBadgerInMemory: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Insert(ctx, "things", "a", testDoc{ID: "a", Name: "alpha"}, "name:alpha"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var got testDoc
	if err := s.Get(ctx, "things", "a", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "alpha" {
		t.Errorf("Name = %q, want alpha", got.Name)
	}

	id, err := s.Lookup(ctx, "things", "name:alpha")
	if err != nil || id != "a" {
		t.Errorf("Lookup = %q, %v", id, err)
	}

	got.Name = "beta"
	if err := s.Update(ctx, "things", "a", got, []string{"name:beta"}, []string{"name:alpha"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := s.Lookup(ctx, "things", "name:alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old key still resolves: %v", err)
	}
	if id, _ := s.Lookup(ctx, "things", "name:beta"); id != "a" {
		t.Errorf("new key resolves to %q", id)
	}

	if err := s.Delete(ctx, "things", "a", "name:beta"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Get(ctx, "things", "a", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if _, err := s.Lookup(ctx, "things", "name:beta"); !errors.Is(err, ErrNotFound) {
		t.Errorf("key survives delete: %v", err)
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "things", "a"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestBadgerStore_UniqueConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Insert(ctx, "users", "u1", testDoc{ID: "u1"}, "email:a@x.io", "username:a"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := s.Insert(ctx, "users", "u2", testDoc{ID: "u2"}, "email:b@x.io", "username:a")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Insert dup err = %v, want ErrConflict", err)
	}
	// The failed insert claimed nothing.
	if _, err := s.Lookup(ctx, "users", "email:b@x.io"); !errors.Is(err, ErrNotFound) {
		t.Errorf("partial claim leaked: %v", err)
	}
	if err := s.Insert(ctx, "users", "u1", testDoc{ID: "u1"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate id err = %v", err)
	}
	if err := s.Replace(ctx, "users", "missing", testDoc{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Replace missing err = %v", err)
	}
}

func TestBadgerStore_ConcurrentUniqueInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("like-%d", i)
			if err := s.Insert(ctx, "likes", id, testDoc{ID: id}, "u1|video:v1"); err == nil {
				wins.Add(1)
			} else if !errors.Is(err, ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("winners = %d, want exactly 1", wins.Load())
	}
	n, err := Count[testDoc](ctx, s, "likes", nil)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestBadgerStore_Mutate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Insert(ctx, "videos", "v1", testDoc{ID: "v1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var d testDoc
			if err := s.Mutate(ctx, "videos", "v1", &d, func() error {
				d.Count++
				return nil
			}, nil); err != nil && !errors.Is(err, ErrConflict) {
				t.Errorf("Mutate: %v", err)
			}
		}()
	}
	wg.Wait()

	var d testDoc
	if err := s.Get(ctx, "videos", "v1", &d); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Count < 1 || d.Count > 20 {
		t.Errorf("Count = %d", d.Count)
	}

	abort := errors.New("abort")
	if err := s.Mutate(ctx, "videos", "v1", &d, func() error { return abort }, nil); !errors.Is(err, abort) {
		t.Errorf("Mutate abort err = %v", err)
	}
	if err := s.Mutate(ctx, "videos", "nope", &d, func() error { return nil }, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Mutate missing err = %v", err)
	}
}

func TestBadgerStore_MutateMovesKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Insert(ctx, "users", "u1", testDoc{ID: "u1", Name: "a"}, "name:a"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, "users", "u2", testDoc{ID: "u2", Name: "b"}, "name:b"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var d testDoc
	keys := func() []string { return []string{"name:" + d.Name} }

	err := s.Mutate(ctx, "users", "u1", &d, func() error {
		d.Name = "b"
		return nil
	}, keys)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("Mutate onto taken key err = %v, want ErrConflict", err)
	}
	if err := s.Mutate(ctx, "users", "u1", &d, func() error {
		d.Name = "c"
		return nil
	}, keys); err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if id, _ := s.Lookup(ctx, "users", "name:c"); id != "u1" {
		t.Errorf("name:c resolves to %q", id)
	}
	if _, err := s.Lookup(ctx, "users", "name:a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("name:a still claimed: %v", err)
	}
}

func TestDiffKeys(t *testing.T) {
	t.Parallel()
	add, drop := diffKeys([]string{"a", "b"}, []string{"b", "c"})
	if len(add) != 1 || add[0] != "c" || len(drop) != 1 || drop[0] != "a" {
		t.Errorf("diffKeys = %v, %v", add, drop)
	}
}

func TestQueryHelpers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("d%d", i)
		if err := s.Insert(ctx, "docs", id, testDoc{ID: id, Count: i}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	// A document in another collection must not leak into scans.
	if err := s.Insert(ctx, "docsx", "z", testDoc{ID: "z", Count: 100}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	items, total, err := List(ctx, s, "docs", Query[testDoc]{
		Filter: func(d *testDoc) bool { return d.Count%2 == 1 },
		Less:   func(a, b *testDoc) bool { return a.Count > b.Count },
		Offset: 1,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
	if len(items) != 2 || items[0].Count != 5 || items[1].Count != 3 {
		t.Errorf("items = %+v", items)
	}

	items, total, _ = List(ctx, s, "docs", Query[testDoc]{Offset: 50, Limit: 10})
	if len(items) != 0 || total != 7 {
		t.Errorf("past-end page = %d items, total %d", len(items), total)
	}

	first, err := First(ctx, s, "docs", func(d *testDoc) bool { return d.Count == 4 })
	if err != nil || first.ID != "d4" {
		t.Errorf("First = %+v, %v", first, err)
	}
	if _, err := First(ctx, s, "docs", func(d *testDoc) bool { return d.Count == 99 }); !errors.Is(err, ErrNotFound) {
		t.Errorf("First miss err = %v", err)
	}

	deleted, err := DeleteWhere(ctx, s, "docs", func(d *testDoc) bool { return d.Count > 5 }, nil)
	if err != nil || len(deleted) != 2 {
		t.Errorf("DeleteWhere = %d, %v", len(deleted), err)
	}
	if n, _ := Count[testDoc](ctx, s, "docs", nil); n != 5 {
		t.Errorf("Count after DeleteWhere = %d", n)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	if _, err := Open(ctx, config.DatabaseConfig{Driver: "postgres"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
