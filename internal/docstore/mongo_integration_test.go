// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

//go:build integration

package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/vidshare/internal/testinfra"
)

func TestMongoStore_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container)

	s, err := OpenMongo(ctx, container.URI, "vidshare_test", 10*time.Second)
	if err != nil {
		t.Fatalf("OpenMongo: %v", err)
	}
	defer s.Close()

	if err := s.Insert(ctx, "users", "u1", testDoc{ID: "u1", Name: "alice", Count: 1}, "username:alice"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, "users", "u2", testDoc{ID: "u2", Name: "alice"}, "username:alice"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate key err = %v", err)
	}

	var got testDoc
	if err := s.Get(ctx, "users", "u1", &got); err != nil || got.Name != "alice" || got.Count != 1 {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := s.Mutate(ctx, "users", "u1", &got, func() error {
		got.Count += 10
		return nil
	}, nil); err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	got.Name = "alicia"
	if err := s.Update(ctx, "users", "u1", got, []string{"username:alicia"}, []string{"username:alice"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if id, err := s.Lookup(ctx, "users", "username:alicia"); err != nil || id != "u1" {
		t.Errorf("Lookup = %q, %v", id, err)
	}

	items, total, err := List(ctx, s, "users", Query[testDoc]{})
	if err != nil || total != 1 || items[0].Count != 11 {
		t.Errorf("List = %+v, %d, %v", items, total, err)
	}

	if err := s.Delete(ctx, "users", "u1", "username:alicia"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Get(ctx, "users", "u1", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}
