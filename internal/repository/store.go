package repository

import (
	"context"
	"time"

	"github.com/protonicfit/auth-api/internal/model"
)

// UserStore is the capability interface for the `users` table.
type UserStore interface {
	// Create inserts a user with a hashed password and returns the stored
	// record. Returns ErrEmailExists on a duplicate email.
	Create(ctx context.Context, email, passwordHash string) (model.User, error)
	// GetByEmail fetches a user by normalized email. Returns ErrNotFound
	// when no row matches.
	GetByEmail(ctx context.Context, email string) (model.User, error)
	// GetByID fetches a user by id. Returns ErrNotFound when no row matches.
	GetByID(ctx context.Context, id string) (model.User, error)
	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, id string) error
	// UpdatePassword replaces the stored hash and bumps updated_at.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ProfileStore is the capability interface for the `user_profiles` table.
type ProfileStore interface {
	Create(ctx context.Context, userID, name string) error
	// GetByUserID returns ErrNotFound when the user never supplied a name.
	GetByUserID(ctx context.Context, userID string) (model.Profile, error)
}

// StatsStore is the capability interface for the `user_stats` table. The
// auth core creates the zero-valued row at registration and reads it back
// for responses; it never increments the counters.
type StatsStore interface {
	Create(ctx context.Context, userID string) error
	GetByUserID(ctx context.Context, userID string) (model.Stats, error)
}

// RefreshTokenStore persists and validates refresh tokens by hash.
type RefreshTokenStore interface {
	// Store inserts a refresh token hash row.
	Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// Validate returns the owning user ID if a non-revoked, non-expired row
	// exists for the hash; otherwise ErrNotFound.
	Validate(ctx context.Context, tokenHash string) (string, error)
	// Revoke marks a token as revoked. Revoking a missing or already-revoked
	// token is not an error.
	Revoke(ctx context.Context, tokenHash string) error
	// RevokeAllForUser revokes every active token owned by the user.
	RevokeAllForUser(ctx context.Context, userID string) error
}

// ResetTokenStore persists single-use password-reset tokens by hash.
type ResetTokenStore interface {
	Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// Consume atomically marks an unused, unexpired row as used and returns
	// its owner. A second Consume with the same hash returns ErrNotFound.
	Consume(ctx context.Context, tokenHash string) (string, error)
}

// Store bundles the capability interfaces behind one injection point. The
// MySQL and in-memory implementations both satisfy it; which one backs a
// process is a configuration choice, not a code path.
type Store struct {
	Users         UserStore
	Profiles      ProfileStore
	Stats         StatsStore
	RefreshTokens RefreshTokenStore
	ResetTokens   ResetTokenStore
}
