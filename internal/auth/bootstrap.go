// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/config"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/models"
)

// EnsureAdmin creates the root admin account on first start. It does nothing
// when bootstrap credentials are not configured or an admin already exists.
// An existing non-admin account with the bootstrap email is promoted.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapEmail))
	if email == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	exists, err := s.users.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if exists {
		logging.Debug().Msg("Admin account present, skipping bootstrap")
		return nil
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		_, err = s.users.UpdateUser(ctx, existing.ID, func(u *models.User) error {
			u.Role = models.RoleAdmin
			markVerified(u)
			return nil
		})
		if err == nil {
			logging.Info().Str("user_id", existing.ID).Msg("Promoted existing account to admin")
		}
		return err
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	username := strings.ToLower(strings.TrimSpace(cfg.BootstrapUsername))
	if username == "" {
		username = "admin"
	}
	hash, err := s.passwords.Hash(cfg.BootstrapPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	u := &models.User{
		Username:        username,
		Email:           email,
		Fullname:        "Administrator",
		Role:            models.RoleAdmin,
		PasswordHash:    hash,
		IsEmailVerified: true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return err
	}
	logging.Info().Str("user_id", u.ID).Str("email", logging.MaskEmail(email)).Msg("Created bootstrap admin account")
	return nil
}
