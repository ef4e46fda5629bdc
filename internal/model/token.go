package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries metadata for expiry and revocation.
// The plain token is not stored; only its SHA-256 hash.
//
// A token is usable only while RevokedAt is null and ExpiresAt is in the
// future. Rotation, logout and password reset all revoke by setting
// RevokedAt rather than deleting, which keeps an audit trail.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    string     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// PasswordResetToken models an entry in the `password_reset_tokens` table.
// Reset tokens are single-use: UsedAt is set the moment a reset succeeds, and
// a used or expired row never validates again.
type PasswordResetToken struct {
	ID        uint64     // password_reset_tokens.id
	UserID    string     // password_reset_tokens.user_id
	TokenHash string     // password_reset_tokens.token_hash
	ExpiresAt time.Time  // password_reset_tokens.expires_at
	UsedAt    *time.Time // password_reset_tokens.used_at (nullable)
}
