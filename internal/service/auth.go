// Package service implements the request-level auth operations: register,
// login, refresh, logout, forgot/reset password, and current-user lookup.
// It composes the password hasher, token codec, session manager and
// credential store, and returns typed errors for the handler layer to map.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/protonicfit/auth-api/internal/config"
	"github.com/protonicfit/auth-api/internal/model"
	"github.com/protonicfit/auth-api/internal/repository"
	"github.com/protonicfit/auth-api/internal/session"
	"github.com/protonicfit/auth-api/internal/utils"
)

// ResetMailer delivers password-reset messages. The queue-backed
// implementation lives in internal/queue; tests substitute a fake.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, rawToken string, expiresAt time.Time) error
}

// AuthService bundles the collaborators for the auth operations.
type AuthService struct {
	store    *repository.Store
	sessions *session.Manager
	mailer   ResetMailer
	cfg      config.Config
}

func NewAuthService(store *repository.Store, sessions *session.Manager, mailer ResetMailer, cfg config.Config) *AuthService {
	return &AuthService{store: store, sessions: sessions, mailer: mailer, cfg: cfg}
}

// AuthResult is what Register and Login hand back: the user's public record,
// the optional profile, the counters row, and a fresh token pair.
type AuthResult struct {
	User    model.User
	Profile *model.Profile
	Stats   *model.Stats
	Access  utils.Token
	Refresh utils.Token
}

// TokenPair is the Refresh result.
type TokenPair struct {
	Access  utils.Token
	Refresh utils.Token
}

// Register creates a user plus its profile (when a name is given) and
// zero-valued stats row, then signs the user in immediately. Returns
// repository.ErrEmailExists when the email is taken; the store's unique
// constraint backs the pre-check against races.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	// Fast-path duplicate check. Not the correctness boundary: Create maps
	// the constraint violation to the same error if two registrations race.
	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	if name != "" {
		if err := s.store.Profiles.Create(ctx, user.ID, name); err != nil {
			return nil, err
		}
	}
	if err := s.store.Stats.Create(ctx, user.ID); err != nil {
		return nil, err
	}

	profile, stats, err := s.loadProfileStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	access, refresh, err := s.issuePair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Profile: profile, Stats: stats, Access: access, Refresh: refresh}, nil
}

// Login verifies credentials and issues a fresh token pair. A missing user
// and a wrong password yield the identical ErrInvalidCredentials;
// ErrAccountDisabled is distinct because by then identity is confirmed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := s.store.Users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	profile, stats, err := s.loadProfileStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	access, refresh, err := s.issuePair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Profile: profile, Stats: stats, Access: access, Refresh: refresh}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the subject claims it carried. Refresh tokens are
// single-use; replaying a rotated-out token fails.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	// Store check first: the row must exist, unrevoked and unexpired.
	if _, err := s.sessions.Validate(ctx, rawRefresh); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	claims, err := s.sessions.Verify(rawRefresh)
	if err != nil {
		// A stored row whose token no longer verifies is suspect; burn it.
		_ = s.sessions.Revoke(ctx, rawRefresh)
		return nil, ErrInvalidRefreshToken
	}

	if err := s.sessions.Revoke(ctx, rawRefresh); err != nil {
		return nil, err
	}
	access, refresh, err := s.issuePair(ctx, claims.Subject, claims.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout revokes the presented refresh token. Revoking an unknown or
// already-revoked token is a no-op, so calling Logout twice is fine.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	return s.sessions.Revoke(ctx, rawRefresh)
}

// ForgotPassword issues a short-lived reset token and hands it to the
// mailer. It succeeds whether or not the email matches a user, and delivery
// failures are logged rather than surfaced, so the response never reveals
// which emails are registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	tok, err := utils.SignToken(s.cfg.ResetSecret, user.ID, user.Email, utils.PurposeReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	if err := s.store.ResetTokens.Store(ctx, user.ID, utils.HashToken(tok.Raw), tok.Exp); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, tok.Raw, tok.Exp); err != nil {
		log.Printf("auth: password reset delivery failed for user %s: %v", user.ID, err)
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new password hash, and
// revokes every outstanding refresh token the user owns: a reset implies
// possible prior compromise, so all sessions are forced to re-login.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	claims, err := utils.VerifyToken(rawToken, s.cfg.ResetSecret, utils.PurposeReset)
	if err != nil {
		return ErrInvalidResetToken
	}
	// Store-level single-use guard on top of the JWT expiry.
	userID, err := s.store.ResetTokens.Consume(ctx, utils.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if userID != claims.Subject {
		return ErrInvalidResetToken
	}

	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.sessions.RevokeAllForUser(ctx, userID)
}

// GetCurrentUser resolves a bearer access token to the user it names.
func (s *AuthService) GetCurrentUser(ctx context.Context, rawAccess string) (model.User, error) {
	claims, err := utils.VerifyToken(rawAccess, s.cfg.AccessSecret, utils.PurposeAccess)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	user, err := s.store.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// --- helpers below ---

func (s *AuthService) issuePair(ctx context.Context, userID, email string) (utils.Token, utils.Token, error) {
	access, err := utils.SignToken(s.cfg.AccessSecret, userID, email, utils.PurposeAccess, s.cfg.AccessTTL)
	if err != nil {
		return utils.Token{}, utils.Token{}, err
	}
	refresh, err := s.sessions.Issue(ctx, userID, email)
	if err != nil {
		return utils.Token{}, utils.Token{}, err
	}
	return access, refresh, nil
}

func (s *AuthService) loadProfileStats(ctx context.Context, userID string) (*model.Profile, *model.Stats, error) {
	var profile *model.Profile
	p, err := s.store.Profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		profile = &p
	case !errors.Is(err, repository.ErrNotFound):
		return nil, nil, err
	}
	var stats *model.Stats
	st, err := s.store.Stats.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		stats = &st
	case !errors.Is(err, repository.ErrNotFound):
		return nil, nil, err
	}
	return profile, stats, nil
}
