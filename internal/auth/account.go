// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package auth

import (
	"context"
	"strings"

	"github.com/tomtom215/vidshare/internal/apperr"
	"github.com/tomtom215/vidshare/internal/logging"
	"github.com/tomtom215/vidshare/internal/metrics"
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/validation"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Fullname string `json:"fullname" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,bcryptlen"`

	Avatar     *models.UploadedFile `json:"-" validate:"-"`
	CoverImage *models.UploadedFile `json:"-" validate:"-"`
}

func (in *RegisterInput) normalize() {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
}

// Register creates an unverified account, sends the verification email and
// returns a session. A failed verification email does not fail registration;
// the user can ask for a new code.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.normalize()
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr.ToAppError()
	}
	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	avatar, err := s.uploadOptional(ctx, in.Avatar)
	if err != nil {
		return nil, err
	}
	cover, err := s.uploadOptional(ctx, in.CoverImage)
	if err != nil {
		s.assets.Release(ctx, avatar)
		return nil, err
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Fullname:     in.Fullname,
		Avatar:       avatar,
		CoverImage:   cover,
		Role:         models.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		s.assets.Release(ctx, avatar)
		s.assets.Release(ctx, cover)
		return nil, err
	}
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "register", UserID: u.ID, Identifier: u.Email, Success: true})

	if err := s.issueVerification(ctx, u); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("Verification email not sent after registration")
	}
	return s.issue(ctx, u)
}

// ensureAvailable rejects a taken email or username before any upload happens.
// CreateUser enforces the same rule atomically.
func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	for _, lookup := range []func() (*models.User, error){
		func() (*models.User, error) { return s.users.GetUserByEmail(ctx, email) },
		func() (*models.User, error) { return s.users.GetUserByUsername(ctx, username) },
	} {
		_, err := lookup()
		if err == nil {
			return apperr.Conflict("user with this email or username already exists")
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) uploadOptional(ctx context.Context, f *models.UploadedFile) (*models.StoredAsset, error) {
	if f == nil || f.Path == "" {
		return nil, nil
	}
	return s.assets.Upload(ctx, f.Path, f.Mimetype)
}

// LoginInput is the login form. Identifier is an email or a username.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required,notblank,max=254"`
	Password   string `json:"password" validate:"required,bcryptlen"`
}

// Login checks credentials and issues a session. Unknown users and wrong
// passwords yield the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Identifier = strings.ToLower(strings.TrimSpace(in.Identifier))
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr.ToAppError()
	}
	invalid := apperr.Auth(apperr.CodeInvalidCreds, "Invalid credentials")

	u, err := s.users.GetUserByIdentifier(ctx, in.Identifier)
	if apperr.Is(err, apperr.KindNotFound) {
		s.passwords.burn(in.Password)
		s.recordLogin(ctx, in.Identifier, "", false, "unknown user")
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !s.passwords.Verify(u.PasswordHash, in.Password) {
		s.recordLogin(ctx, in.Identifier, u.ID, false, "bad password")
		return nil, invalid
	}
	if !u.IsEmailVerified {
		s.recordLogin(ctx, in.Identifier, u.ID, false, "email not verified")
		return nil, apperr.Forbidden(apperr.CodeEmailNotVerified, "Please verify your email before logging in")
	}

	session, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, in.Identifier, u.ID, true, "")
	return session, nil
}

func (s *Service) recordLogin(ctx context.Context, identifier, userID string, success bool, reason string) {
	logging.LogAuthEvent(ctx, logging.AuthEvent{
		Event:      "login",
		UserID:     userID,
		Identifier: identifier,
		Success:    success,
		Reason:     reason,
	})
	metrics.RecordAuthEvent("login", success)
}

// ChangePasswordInput changes the password of the current user.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required,bcryptlen"`
	NewPassword string `json:"newPassword" validate:"required,min=8,bcryptlen"`
}

// ChangePassword replaces the password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if verr := validation.ValidateStruct(in); verr != nil {
		return verr.ToAppError()
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.Verify(u.PasswordHash, in.OldPassword) {
		logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "change_password", UserID: userID, Reason: "bad password"})
		return apperr.Auth(apperr.CodeInvalidCreds, "Invalid old password")
	}
	hash, err := s.passwords.Hash(in.NewPassword)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	_, err = s.users.UpdateUser(ctx, userID, func(u *models.User) error {
		u.PasswordHash = hash
		return nil
	})
	if err == nil {
		logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "change_password", UserID: userID, Success: true})
	}
	return err
}

// UpdateAccountInput updates profile details. Empty fields are left unchanged.
type UpdateAccountInput struct {
	Fullname string `json:"fullname" validate:"omitempty,notblank,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
}

// UpdateAccount changes fullname and email. A new email must be unused and
// puts the account back into the unverified state, with a fresh verification
// email sent to the new address.
func (s *Service) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (*models.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Fullname == "" && in.Email == "" {
		return nil, apperr.Validation("fullname or email is required")
	}
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr.ToAppError()
	}
	var emailChanged bool
	u, err := s.users.UpdateUser(ctx, userID, func(u *models.User) error {
		emailChanged = false
		if in.Fullname != "" {
			u.Fullname = in.Fullname
		}
		if in.Email != "" && in.Email != u.Email {
			u.Email = in.Email
			u.IsEmailVerified = false
			u.Verification = nil
			emailChanged = true
		}
		return nil
	})
	if err != nil || !emailChanged {
		return u, err
	}
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "change_email", UserID: u.ID, Identifier: u.Email, Success: true})
	if err := s.issueVerification(ctx, u); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("Verification email for new address not sent")
	}
	return s.users.GetUser(ctx, userID)
}

// UpdateAvatar replaces the avatar image.
func (s *Service) UpdateAvatar(ctx context.Context, userID string, f *models.UploadedFile) (*models.User, error) {
	return s.replaceImage(ctx, userID, f, "avatar", func(u *models.User) **models.StoredAsset { return &u.Avatar })
}

// UpdateCoverImage replaces the cover image.
func (s *Service) UpdateCoverImage(ctx context.Context, userID string, f *models.UploadedFile) (*models.User, error) {
	return s.replaceImage(ctx, userID, f, "cover image", func(u *models.User) **models.StoredAsset { return &u.CoverImage })
}

// replaceImage uploads the new asset, persists it, and only then releases the
// previous one. A failed upload leaves the stored asset untouched.
func (s *Service) replaceImage(ctx context.Context, userID string, f *models.UploadedFile, label string, field func(*models.User) **models.StoredAsset) (*models.User, error) {
	if f == nil || f.Path == "" {
		return nil, apperr.Validationf("%s file is missing", label)
	}
	if !f.IsImage() {
		return nil, apperr.Validationf("%s must be an image", label)
	}
	asset, err := s.assets.Upload(ctx, f.Path, f.Mimetype)
	if err != nil {
		return nil, err
	}

	var previous *models.StoredAsset
	u, err := s.users.UpdateUser(ctx, userID, func(u *models.User) error {
		slot := field(u)
		previous = *slot
		*slot = asset
		return nil
	})
	if err != nil {
		s.assets.Release(ctx, asset)
		return nil, err
	}
	s.assets.Release(ctx, previous)
	return u, nil
}

// ForgotPasswordInput requests a reset link.
type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword emails a reset link when the address belongs to an account.
// The result never reveals whether it does.
func (s *Service) ForgotPassword(ctx context.Context, in ForgotPasswordInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if verr := validation.ValidateStruct(in); verr != nil {
		return verr.ToAppError()
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			logging.Ctx(ctx).Error().Err(err).Msg("Password reset lookup failed")
		}
		logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "forgot_password", Identifier: in.Email, Reason: "unknown email"})
		return nil
	}

	token, err := generateToken(32)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Password reset token generation failed")
		return nil
	}
	expires := s.now().Add(s.resetTTL)
	_, err = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
		u.PasswordReset = &models.ResetGrant{TokenHash: hashToken(token), ExpiresAt: expires}
		return nil
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("user_id", u.ID).Msg("Password reset token not stored")
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, u.Email, u.Fullname, token); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("Password reset email not sent")
		return nil
	}
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "forgot_password", UserID: u.ID, Identifier: u.Email, Success: true})
	return nil
}

// ResetPasswordInput sets a new password using an emailed token.
type ResetPasswordInput struct {
	Token    string `json:"-" validate:"required"`
	Password string `json:"password" validate:"required,min=8,bcryptlen"`
}

// ResetPassword consumes a reset token. All sessions are revoked.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	if verr := validation.ValidateStruct(in); verr != nil {
		return verr.ToAppError()
	}
	invalid := apperr.Validation("Password reset token is invalid or has expired")

	u, err := s.users.GetUserByResetToken(ctx, hashToken(in.Token))
	if apperr.Is(err, apperr.KindNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}

	now := s.now()
	if u.PasswordReset.Expired(now) {
		_, _ = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
			u.PasswordReset = nil
			return nil
		})
		return invalid
	}
	_, err = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
		if u.PasswordReset == nil || u.PasswordReset.TokenHash != hashToken(in.Token) {
			return invalid
		}
		u.PasswordHash = hash
		u.PasswordReset = nil
		u.RefreshToken = ""
		return nil
	})
	if err != nil {
		return err
	}
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "password_reset", UserID: u.ID, Success: true})
	return nil
}
