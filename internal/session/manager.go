// Package session owns the refresh-token lifecycle: issuance, validation,
// and revocation. A refresh token lives in two places at once, as a signed
// JWT held by the client and as a hashed row in the credential store, and
// both must agree before the token is honored. The store row is the
// authoritative side for revocation.
package session

import (
	"context"
	"time"

	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/utils"
)

// Manager issues and tracks refresh tokens for one signing secret and TTL.
type Manager struct {
	tokens repository.RefreshTokenStore
	secret string
	ttl    time.Duration
}

func NewManager(tokens repository.RefreshTokenStore, secret string, ttl time.Duration) *Manager {
	return &Manager{tokens: tokens, secret: secret, ttl: ttl}
}

// Issue signs a new refresh token for the user and persists its hash with
// the expiration instant carried in the token's own claims.
func (m *Manager) Issue(ctx context.Context, userID, email string) (utils.Token, error) {
	tok, err := utils.SignToken(m.secret, userID, email, utils.PurposeRefresh, m.ttl)
	if err != nil {
		return utils.Token{}, err
	}
	if err := m.tokens.Store(ctx, userID, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return utils.Token{}, err
	}
	return tok, nil
}

// Validate checks the store side of a presented token: a row must exist for
// its hash and be neither revoked nor expired. Returns the owning user ID or
// repository.ErrNotFound. Cryptographic verification is a separate step via
// Verify; callers needing both run them independently.
func (m *Manager) Validate(ctx context.Context, raw string) (string, error) {
	return m.tokens.Validate(ctx, utils.HashToken(raw))
}

// Verify checks the cryptographic side: signature, expiry, and the refresh
// purpose tag.
func (m *Manager) Verify(raw string) (*utils.Claims, error) {
	return utils.VerifyToken(raw, m.secret, utils.PurposeRefresh)
}

// Revoke marks the presented token revoked. Revoking an unknown or
// already-revoked token is a no-op, so callers may treat Revoke as
// idempotent.
func (m *Manager) Revoke(ctx context.Context, raw string) error {
	return m.tokens.Revoke(ctx, utils.HashToken(raw))
}

// RevokeAllForUser invalidates every outstanding refresh token the user
// owns. Used on password reset to force re-login everywhere.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID string) error {
	return m.tokens.RevokeAllForUser(ctx, userID)
}
