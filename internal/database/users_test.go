// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/models"
)

func TestDB_CreateUser_Uniqueness(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "alice")

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"same username different case", "ALICE", "other@example.com"},
		{"same email different case", "bob", "Alice@Example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateUser(ctx, &models.User{Username: tt.username, Email: tt.email, PasswordHash: "x"})
			checkKind(t, err, apperr.KindConflict)
		})
	}
}

func TestDB_GetUserByIdentifier(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "carol")

	for _, ident := range []string{"carol", "Carol", "carol@example.com", "CAROL@example.com"} {
		got, err := db.GetUserByIdentifier(ctx, ident)
		checkNoError(t, err)
		if got.ID != u.ID {
			t.Errorf("GetUserByIdentifier(%q) = %s, want %s", ident, got.ID, u.ID)
		}
	}

	_, err := db.GetUserByIdentifier(ctx, "nobody")
	checkKind(t, err, apperr.KindNotFound)
}

func TestDB_UpdateUser_MovesUniqueKeys(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "dave")
	mustCreateUser(t, db, "erin")

	_, err := db.UpdateUser(ctx, u.ID, func(u *models.User) error {
		u.Email = "Dave.New@example.com"
		u.PasswordReset = &models.ResetGrant{TokenHash: "reset-hash", ExpiresAt: time.Now().Add(time.Hour)}
		return nil
	})
	checkNoError(t, err)

	if _, err := db.GetUserByEmail(ctx, "dave@example.com"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("old email still resolves: %v", err)
	}
	got, err := db.GetUserByEmail(ctx, "dave.new@example.com")
	checkNoError(t, err)
	if got.ID != u.ID {
		t.Errorf("new email resolves to %s", got.ID)
	}
	got, err = db.GetUserByResetToken(ctx, "reset-hash")
	checkNoError(t, err)
	if got.ID != u.ID {
		t.Errorf("reset token resolves to %s", got.ID)
	}

	// Clearing the grant releases its key.
	_, err = db.UpdateUser(ctx, u.ID, func(u *models.User) error {
		u.PasswordReset = nil
		return nil
	})
	checkNoError(t, err)
	_, err = db.GetUserByResetToken(ctx, "reset-hash")
	checkKind(t, err, apperr.KindNotFound)

	// Taking someone else's email is a conflict and leaves the record unchanged.
	_, err = db.UpdateUser(ctx, u.ID, func(u *models.User) error {
		u.Email = "erin@example.com"
		return nil
	})
	checkKind(t, err, apperr.KindConflict)
	got, err = db.GetUser(ctx, u.ID)
	checkNoError(t, err)
	if got.Email != "dave.new@example.com" {
		t.Errorf("email = %q after failed update", got.Email)
	}
}

func TestDB_SetRefreshToken(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "frank")

	checkNoError(t, db.SetRefreshToken(ctx, u.ID, "first"))
	checkNoError(t, db.SetRefreshToken(ctx, u.ID, "second"))
	got, err := db.GetUser(ctx, u.ID)
	checkNoError(t, err)
	if got.RefreshToken != "second" {
		t.Errorf("RefreshToken = %q, want second", got.RefreshToken)
	}

	checkNoError(t, db.SetRefreshToken(ctx, u.ID, ""))
	got, _ = db.GetUser(ctx, u.ID)
	if got.RefreshToken != "" {
		t.Errorf("RefreshToken not cleared: %q", got.RefreshToken)
	}
}

func TestDB_DeleteUser_FreesUsername(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, db, "gina")

	deleted, err := db.DeleteUser(ctx, u.ID)
	checkNoError(t, err)
	if deleted.ID != u.ID {
		t.Errorf("deleted id = %s", deleted.ID)
	}
	mustCreateUser(t, db, "gina")

	_, err = db.DeleteUser(ctx, u.ID)
	checkKind(t, err, apperr.KindNotFound)
}

func TestDB_HasAdmin(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	mustCreateUser(t, db, "plain")
	has, err := db.HasAdmin(ctx)
	checkNoError(t, err)
	if has {
		t.Fatal("HasAdmin = true with no admin")
	}

	checkNoError(t, db.CreateUser(ctx, &models.User{Username: "root", Email: "root@example.com", Role: models.RoleAdmin}))
	has, err = db.HasAdmin(ctx)
	checkNoError(t, err)
	if !has {
		t.Fatal("HasAdmin = false after creating admin")
	}
}

func TestDB_ListUsers_HidesSecrets(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	for _, name := range []string{"u1", "u2", "u3"} {
		mustCreateUser(t, db, name)
	}

	page, err := db.ListUsers(ctx, models.PageRequest{Page: 1, Limit: 2})
	checkNoError(t, err)
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("page = total %d, pages %d, items %d", page.Total, page.TotalPages, len(page.Items))
	}
	if page.Items[0].Username != "u3" {
		t.Errorf("first user = %s, want newest u3", page.Items[0].Username)
	}
}
