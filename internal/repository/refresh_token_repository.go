package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskhive/internal/model"
)

// RefreshTokenRepo persists refresh-token session rows, keyed by the
// signed token string. A present row is a live session; every way a
// session can end deletes the row.
type RefreshTokenRepo struct{ DB *sql.DB }

func NewRefreshTokenRepo(db *sql.DB) *RefreshTokenRepo { return &RefreshTokenRepo{DB: db} }

// Create inserts a session row for a freshly issued refresh token.
func (r *RefreshTokenRepo) Create(ctx context.Context, t *model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, expires_at, created_at) VALUES (?,?,?,?)",
		t.Token, t.UserID, t.ExpiresAt, t.CreatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// FindByToken fetches the session row for a presented token string.
func (r *RefreshTokenRepo) FindByToken(ctx context.Context, tok string) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT token, user_id, expires_at, created_at FROM refresh_tokens WHERE token=? LIMIT 1",
		tok).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the session row if it exists and reports whether a
// row was removed. Concurrent rotations race on this delete: exactly
// one caller sees true, every other caller sees false.
func (r *RefreshTokenRepo) Delete(ctx context.Context, tok string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", tok)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllByUser removes every session belonging to userID.
func (r *RefreshTokenRepo) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}

// DeleteExpired removes sessions whose expiry is at or before now and
// returns how many rows went away. Safe to run concurrently with
// in-flight refreshes: both sides use delete-if-exists semantics.
func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
