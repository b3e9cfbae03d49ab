package ports

import (
	"context"
	"time"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type OTPRepository interface {
	// Upsert replaces the code and expiry for the email when a row already
	// exists. Email is the table's primary key, so reissuing never creates
	// a duplicate.
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) (*domain.OTPToken, error)
	FindByEmail(ctx context.Context, email string) (*domain.OTPToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteIfExpired(ctx context.Context, email string, now time.Time) (bool, error)
}
