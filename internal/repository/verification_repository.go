package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/talenthub/competency-api/internal/model"
)

// VerificationRepo persists email verification tokens.
type VerificationRepo struct{ DB *sql.DB }

func NewVerificationRepo(db *sql.DB) *VerificationRepo { return &VerificationRepo{DB: db} }

// Create inserts a verification token row.
func (r *VerificationRepo) Create(ctx context.Context, userID uint64, token string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO email_verification_tokens (user_id, token, expires_at) VALUES (?,?,?)",
		userID, token, exp)
	return err
}

// DeleteUnconsumed removes the user's unconsumed tokens. Called before
// issuing a new one so at most one live token per account exists. Best
// effort cleanup: two concurrent requests can each leave a token, which is
// benign since every token is validated independently.
func (r *VerificationRepo) DeleteUnconsumed(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM email_verification_tokens WHERE user_id=? AND consumed=0", userID)
	return err
}

// GetByToken loads a verification token by its exact value.
func (r *VerificationRepo) GetByToken(ctx context.Context, token string) (model.EmailVerificationToken, error) {
	var t model.EmailVerificationToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, consumed, created_at FROM email_verification_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Consumed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EmailVerificationToken{}, ErrNotFound
	}
	return t, err
}

// Consume marks the token consumed and the owning account verified in one
// transaction. The conditional UPDATE guards against a concurrent consume:
// only one caller flips the flag, the other gets ErrTokenConsumed.
func (r *VerificationRepo) Consume(ctx context.Context, tokenID, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE email_verification_tokens SET consumed=1 WHERE id=? AND consumed=0", tokenID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenConsumed
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET is_verified=1 WHERE id=?", userID); err != nil {
		return err
	}
	return tx.Commit()
}
