package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries metadata for expiry and revocation.
// The plain token value is never stored; only its SHA-256 hash. Rows are
// never deleted while the owning account exists: revocation is a flag flip,
// and expired rows are kept for forensics.
//
// Fields:
//
//	ID       : primary key identifier.
//	UserID   : owner of the token.
//	TokenHash: SHA-256 hex digest of the token value.
//	ExpiresAt: expiration timestamp of the token.
//	RevokedAt: when the token was revoked (null if still active).
//	CreatedAt: timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// Valid reports whether the token is usable at instant now: not revoked and
// not past its expiry.
func (t RefreshToken) Valid(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	return now.Before(t.ExpiresAt)
}

// EmailVerificationToken models a row in the `email_verification_tokens`
// table. A token is single-use: once Consumed is set it can never verify an
// account again. Requesting a new token deletes the requester's unconsumed
// ones, so at most one live token per account exists by construction.
//
// Fields:
//
//	ID       : primary key identifier.
//	UserID   : account the token verifies.
//	Token    : opaque random token value (stored as issued, looked up exactly).
//	ExpiresAt: expiration timestamp.
//	Consumed : set once the token has verified the account.
//	CreatedAt: timestamp of creation.
type EmailVerificationToken struct {
	ID        uint64    // email_verification_tokens.id
	UserID    uint64    // email_verification_tokens.user_id
	Token     string    // email_verification_tokens.token
	ExpiresAt time.Time // email_verification_tokens.expires_at
	Consumed  bool      // email_verification_tokens.consumed
	CreatedAt time.Time // email_verification_tokens.created_at
}
