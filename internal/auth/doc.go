// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

/*
Package auth implements accounts, sessions and email verification.

# Tokens

TokenIssuer signs two HS256 JWTs with separate secrets:

  - access tokens (short lived) carry the user id, username, email and role
  - refresh tokens (about 7 days) carry only the user id

Every refresh token is written to the user record, replacing the previous
one, so at most one refresh token is valid per user. Refresh compares the
presented token with the stored one and rotates both on success; replaying
a rotated token fails with TOKEN_EXPIRED. Logout clears the stored value.

Concurrent refreshes with the same token are last-write-wins: both may
succeed, and only the pair written last remains usable.

# Verification

Registration creates an unverified account and emails a 6 digit code and
a link token, both expiring together (15 minutes at most). Either channel
marks the account verified and clears both artifacts, then queues a
welcome email. Login is refused with EMAIL_NOT_VERIFIED until then.

Only hashes of link and password reset tokens are stored.

# HTTP integration

Middleware.RequireAuth reads the access token from the accessToken cookie
or an Authorization: Bearer header and places the user in the request
context:

	r.With(authMW.RequireAuth).Get("/users/current-user", h.CurrentUser)

	func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	    u, _ := auth.UserFromContext(r.Context())
	    ...
	}

OAuthFlow adds sign-in through an OpenID Connect provider using the zitadel
relying party client.
*/
package auth
