package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/protonicfit/auth-api/internal/model"
)

// ResetTokenRepo is the MySQL-backed ResetTokenStore.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Store inserts a password-reset token hash row.
func (r *ResetTokenRepo) Store(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	return err
}

// Consume marks an unused, unexpired token as used and returns its owner.
// The conditional UPDATE is the single-use guard: two concurrent resets with
// the same token race on the same row and only one update wins.
func (r *ResetTokenRepo) Consume(ctx context.Context, tokenHash string) (string, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used_at=NOW() WHERE token_hash=? AND used_at IS NULL AND expires_at > NOW()",
		tokenHash)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	var t model.PasswordResetToken
	err = r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at FROM password_reset_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return t.UserID, nil
}
