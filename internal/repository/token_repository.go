package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		userID, tokenHash, exp.UTC(), now.UTC())
	return mapError(err)
}

// ValidateRefresh returns userID if a non-revoked, non-expired token exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var (
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		return 0, mapError(err)
	}
	if revokedAt.Valid || now.After(expiresAt) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByHash marks a token as revoked. ErrNotFound when it was not active.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE token_hash=? AND revoked_at IS NULL",
		now.UTC(), tokenHash)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error {
	return revokeAll(ctx, r.DB, userID, now)
}

// RevokeAllForUserTx is RevokeAllForUser inside an open transaction.
func (r *TokenRepo) RevokeAllForUserTx(ctx context.Context, tx *sql.Tx, userID uint64, now time.Time) error {
	return revokeAll(ctx, tx, userID, now)
}

func revokeAll(ctx context.Context, q querier, userID uint64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=? WHERE user_id=? AND revoked_at IS NULL",
		now.UTC(), userID)
	return mapError(err)
}

// ResetTokenRepo persists password reset tokens.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create stores a fresh unused token.
func (r *ResetTokenRepo) Create(ctx context.Context, userID uint64, token string, expiresAt, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token, expires_at, used, created_at) VALUES (?,?,?,?,?)",
		userID, token, expiresAt.UTC(), false, now.UTC())
	return mapError(err)
}

// InvalidateUnused marks every unused token of the user as used.
func (r *ResetTokenRepo) InvalidateUnused(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=? WHERE user_id=? AND used=?",
		true, userID, false)
	return mapError(err)
}

// GetByToken looks a token up by its opaque value.
func (r *ResetTokenRepo) GetByToken(ctx context.Context, token string) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, used, created_at FROM password_reset_tokens WHERE token=? LIMIT 1",
		token).Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	return t, mapError(err)
}

// MarkUsedTx flips the used flag. It returns ErrNotFound when the token was
// already used, so two concurrent resets cannot both succeed.
func (r *ResetTokenRepo) MarkUsedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE password_reset_tokens SET used=? WHERE id=? AND used=?", true, id, false)
	if err != nil {
		return mapError(err)
	}
	return expectOne(res)
}
