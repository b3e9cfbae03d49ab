package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type OTPRepository struct {
	db *sqlx.DB
}

func NewOTPRepo(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.OTPToken, error) {
	const query = `
        INSERT INTO otp_tokens (email, code, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (email) DO UPDATE
        SET code = EXCLUDED.code,
            expires_at = EXCLUDED.expires_at,
            created_at = NOW()
        RETURNING email, code, expires_at, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, email, code, expiresAt)
	var otp domain.OTPToken
	if err := row.StructScan(&otp); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) FindByEmail(ctx context.Context, email string) (*domain.OTPToken, error) {
	const query = `
        SELECT email, code, expires_at, created_at
        FROM otp_tokens
        WHERE email = $1
    `
	var otp domain.OTPToken
	if err := r.db.GetContext(ctx, &otp, query, email); err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	const query = `DELETE FROM otp_tokens WHERE email = $1`
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

func (r *OTPRepository) DeleteIfExpired(ctx context.Context, email string, now time.Time) (bool, error) {
	const query = `DELETE FROM otp_tokens WHERE email = $1 AND expires_at < $2`
	res, err := r.db.ExecContext(ctx, query, email, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
