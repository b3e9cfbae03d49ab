package ports

import (
	"context"
	"time"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type ResetTokenRepository interface {
	// Create inserts a fresh token row. Callers delete prior rows for the
	// email first so at most one valid token exists per address.
	Create(ctx context.Context, email, token string, expiresAt time.Time) (*domain.PasswordResetToken, error)
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteByID(ctx context.Context, id int64) error
	// DeleteIfExpired removes the row only when it is past its expiry, in a
	// single conditional statement, so concurrent validators cannot race on
	// the check-then-delete pair.
	DeleteIfExpired(ctx context.Context, token string, now time.Time) (bool, error)
}
