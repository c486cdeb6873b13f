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
	"github.com/tomtom215/vidshare/internal/models"
	"github.com/tomtom215/vidshare/internal/validation"
)

// LinkOutcome is the result of following a verification link. It names the
// frontend page the user is redirected to.
type LinkOutcome string

const (
	LinkSuccess         LinkOutcome = "success"
	LinkAlreadyVerified LinkOutcome = "already-verified"
	LinkExpired         LinkOutcome = "expired"
	LinkInvalid         LinkOutcome = "invalid"
)

// EmailInput carries a single email address.
type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeInput submits a verification code.
type VerifyCodeInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,sixdigits"`
}

// issueVerification replaces any outstanding code and link token and emails
// both to the user.
func (s *Service) issueVerification(ctx context.Context, u *models.User) error {
	code, err := generateCode()
	if err != nil {
		return apperr.Internal("failed to generate verification code", err)
	}
	link, err := generateToken(32)
	if err != nil {
		return apperr.Internal("failed to generate verification link", err)
	}
	grant := &models.VerificationGrant{
		Code:          code,
		LinkTokenHash: hashToken(link),
		ExpiresAt:     s.now().Add(s.verificationTTL),
	}
	if _, err := s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
		u.Verification = grant
		return nil
	}); err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, u.Email, u.Fullname, code, link)
}

// SendVerification emails a new code to an unverified account. Unknown
// emails are NotFound; verified accounts are left alone.
func (s *Service) SendVerification(ctx context.Context, in EmailInput) (alreadyVerified bool, err error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if verr := validation.ValidateStruct(in); verr != nil {
		return false, verr.ToAppError()
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return false, err
	}
	if u.IsEmailVerified {
		return true, nil
	}
	return false, s.issueVerification(ctx, u)
}

// ResendVerification behaves like SendVerification but reports success for
// unknown emails, so it cannot be used to probe for accounts. Lookup and
// delivery failures are logged, never returned.
func (s *Service) ResendVerification(ctx context.Context, in EmailInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if verr := validation.ValidateStruct(in); verr != nil {
		return verr.ToAppError()
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			logging.Ctx(ctx).Error().Err(err).Msg("Verification resend lookup failed")
		}
		return nil
	}
	if u.IsEmailVerified {
		return nil
	}
	if err := s.issueVerification(ctx, u); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("Verification email not resent")
	}
	return nil
}

// VerifyCode marks the account verified when code matches the outstanding
// grant. Verifying an already verified account succeeds without change.
func (s *Service) VerifyCode(ctx context.Context, in VerifyCodeInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Code = strings.TrimSpace(in.Code)
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr.ToAppError()
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u.IsEmailVerified {
		return u, nil
	}

	now := s.now()
	var expired bool
	u, err = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
		expired = false
		if u.IsEmailVerified {
			return nil
		}
		if u.Verification == nil || u.Verification.Code != in.Code {
			return apperr.Validation("Invalid verification code")
		}
		if u.Verification.Expired(now) {
			expired = true
			u.Verification = nil
			return nil
		}
		markVerified(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, apperr.Validation("Verification code has expired")
	}
	s.afterVerified(ctx, u)
	return u, nil
}

// VerifyLink consumes a verification link token. It never returns an
// apperr for bad tokens; the outcome selects the redirect target instead.
func (s *Service) VerifyLink(ctx context.Context, token string) (LinkOutcome, error) {
	if strings.TrimSpace(token) == "" {
		return LinkInvalid, nil
	}
	hash := hashToken(token)
	u, err := s.users.GetUserByLinkToken(ctx, hash)
	if apperr.Is(err, apperr.KindNotFound) {
		return LinkInvalid, nil
	}
	if err != nil {
		return LinkInvalid, err
	}
	if u.IsEmailVerified {
		return LinkAlreadyVerified, nil
	}

	now := s.now()
	var outcome LinkOutcome
	u, err = s.users.UpdateUser(ctx, u.ID, func(u *models.User) error {
		outcome = LinkSuccess
		switch {
		case u.IsEmailVerified:
			outcome = LinkAlreadyVerified
		case u.Verification == nil || u.Verification.LinkTokenHash != hash:
			outcome = LinkInvalid
		case u.Verification.Expired(now):
			outcome = LinkExpired
			u.Verification = nil
		default:
			markVerified(u)
		}
		return nil
	})
	if err != nil {
		return LinkInvalid, err
	}
	if outcome == LinkSuccess {
		s.afterVerified(ctx, u)
	}
	return outcome, nil
}

// markVerified sets the terminal state and clears both verification artifacts.
func markVerified(u *models.User) {
	u.IsEmailVerified = true
	u.Verification = nil
}

func (s *Service) afterVerified(ctx context.Context, u *models.User) {
	logging.LogAuthEvent(ctx, logging.AuthEvent{Event: "verify_email", UserID: u.ID, Identifier: u.Email, Success: true})
	s.mailer.EnqueueWelcome(ctx, u.Email, u.Fullname)
}
