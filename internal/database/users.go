// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package database

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/docstore"
	"github.com/tomtom215/vidshare/internal/models"
)

// errUserExists is the conflict returned for a taken username or email.
func errUserExists() error {
	return apperr.Conflict("user with this email or username already exists")
}

// Unique key builders for the users collection
func usernameKey(username string) string { return "username:" + strings.ToLower(username) }
func emailKey(email string) string       { return "email:" + strings.ToLower(email) }
func linkTokenKey(hash string) string    { return "link:" + hash }
func resetTokenKey(hash string) string   { return "reset:" + hash }
func oauthKey(subject string) string     { return "oauth:" + subject }

// userKeys lists every unique key the user currently owns.
func userKeys(u *models.User) []string {
	keys := []string{usernameKey(u.Username), emailKey(u.Email)}
	if u.Verification != nil && u.Verification.LinkTokenHash != "" {
		keys = append(keys, linkTokenKey(u.Verification.LinkTokenHash))
	}
	if u.PasswordReset != nil && u.PasswordReset.TokenHash != "" {
		keys = append(keys, resetTokenKey(u.PasswordReset.TokenHash))
	}
	if u.OAuthSubject != "" {
		keys = append(keys, oauthKey(u.OAuthSubject))
	}
	return keys
}

func normalizeUser(u *models.User) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}
}

func conflictOrErr(err error) error {
	if errors.Is(err, docstore.ErrConflict) {
		return errUserExists()
	}
	return err
}

// CreateUser stores a new user. Username and email are lower-cased and must be unique.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	normalizeUser(u)
	now := db.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	if err := db.store.Insert(ctx, collUsers, u.ID, u, userKeys(u)...); err != nil {
		return storeErr("create user", conflictOrErr(err))
	}
	return nil
}

// GetUser returns a user by id.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := db.store.Get(ctx, collUsers, id, &u); err != nil {
		return nil, storeErr("get user", notFound(err, "user"))
	}
	return &u, nil
}

func (db *DB) getUserByKey(ctx context.Context, key string) (*models.User, error) {
	id, err := db.store.Lookup(ctx, collUsers, key)
	if err != nil {
		return nil, storeErr("lookup user", notFound(err, "user"))
	}
	return db.GetUser(ctx, id)
}

// GetUserByUsername returns a user by (case-insensitive) username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUserByKey(ctx, usernameKey(strings.TrimSpace(username)))
}

// GetUserByEmail returns a user by (case-insensitive) email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUserByKey(ctx, emailKey(strings.TrimSpace(email)))
}

// GetUserByIdentifier treats identifiers containing "@" as emails, anything else as usernames.
func (db *DB) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if strings.Contains(identifier, "@") {
		return db.GetUserByEmail(ctx, identifier)
	}
	return db.GetUserByUsername(ctx, identifier)
}

// GetUserByLinkToken returns the user holding a verification link token hash.
func (db *DB) GetUserByLinkToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return db.getUserByKey(ctx, linkTokenKey(tokenHash))
}

// GetUserByResetToken returns the user holding a password reset token hash.
func (db *DB) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return db.getUserByKey(ctx, resetTokenKey(tokenHash))
}

// GetUserByOAuthSubject returns the user linked to an OAuth subject.
func (db *DB) GetUserByOAuthSubject(ctx context.Context, subject string) (*models.User, error) {
	return db.getUserByKey(ctx, oauthKey(subject))
}

// UpdateUser applies fn to the stored user and persists the result. Unique
// keys follow any change fn makes to username, email or token hashes. An
// error returned by fn aborts the update and is returned unchanged.
func (db *DB) UpdateUser(ctx context.Context, id string, fn func(u *models.User) error) (*models.User, error) {
	var u models.User
	err := db.store.Mutate(ctx, collUsers, id, &u, func() error {
		if err := fn(&u); err != nil {
			return err
		}
		normalizeUser(&u)
		u.UpdatedAt = db.now()
		return nil
	}, func() []string { return userKeys(&u) })
	if err != nil {
		return nil, storeErr("update user", conflictOrErr(notFound(err, "user")))
	}
	return &u, nil
}

// SetRefreshToken overwrites the stored refresh token. An empty token revokes it.
func (db *DB) SetRefreshToken(ctx context.Context, id, token string) error {
	_, err := db.UpdateUser(ctx, id, func(u *models.User) error {
		u.RefreshToken = token
		return nil
	})
	return err
}

// DeleteUser removes a user and returns the deleted record so its assets can be released.
func (db *DB) DeleteUser(ctx context.Context, id string) (*models.User, error) {
	u, err := db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := db.store.Delete(ctx, collUsers, id, userKeys(u)...); err != nil {
		return nil, storeErr("delete user", err)
	}
	return u, nil
}

// ListUsers returns users newest first.
func (db *DB) ListUsers(ctx context.Context, req models.PageRequest) (models.Page[models.PublicUser], error) {
	req = pageBounds(req)
	users, total, err := docstore.List(ctx, db.store, collUsers, docstore.Query[models.User]{
		Less:   func(a, b *models.User) bool { return a.CreatedAt.After(b.CreatedAt) },
		Offset: req.Offset(),
		Limit:  req.Limit,
	})
	if err != nil {
		return models.Page[models.PublicUser]{}, storeErr("list users", err)
	}
	out := make([]models.PublicUser, len(users))
	for i := range users {
		out[i] = users[i].Public()
	}
	return models.NewPage(out, total, req), nil
}

// HasAdmin reports whether any admin account exists.
func (db *DB) HasAdmin(ctx context.Context) (bool, error) {
	_, err := docstore.First(ctx, db.store, collUsers, func(u *models.User) bool { return u.IsAdmin() })
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("find admin", err)
	}
	return true, nil
}

// userSummaries resolves owner blocks for a set of user ids. Missing users
// get an id-only summary.
func (db *DB) userSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		u, err := db.GetUser(ctx, id)
		if apperr.Is(err, apperr.KindNotFound) {
			out[id] = models.UserSummary{ID: id}
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = u.Summary()
	}
	return out, nil
}
