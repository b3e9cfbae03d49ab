package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type ResetTokenRepository struct {
	db *sqlx.DB
}

func NewResetTokenRepo(db *sqlx.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, email, token string, expiresAt time.Time) (*domain.PasswordResetToken, error) {
	const query = `
        INSERT INTO password_reset_tokens (email, token, expires_at)
        VALUES ($1, $2, $3)
        RETURNING id, email, token, expires_at, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, email, token, expiresAt)
	var reset domain.PasswordResetToken
	if err := row.StructScan(&reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *ResetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	const query = `
        SELECT id, email, token, expires_at, created_at
        FROM password_reset_tokens
        WHERE token = $1
    `
	var reset domain.PasswordResetToken
	if err := r.db.GetContext(ctx, &reset, query, token); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *ResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `DELETE FROM password_reset_tokens WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

func (r *ResetTokenRepository) DeleteByID(ctx context.Context, id int64) error {
	const query = `DELETE FROM password_reset_tokens WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *ResetTokenRepository) DeleteIfExpired(ctx context.Context, token string, now time.Time) (bool, error) {
	const query = `DELETE FROM password_reset_tokens WHERE token = $1 AND expires_at < $2`
	res, err := r.db.ExecContext(ctx, query, token, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
