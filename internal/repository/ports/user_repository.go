package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type UserRepository interface {
	CreateEmailUser(ctx context.Context, email string, passwordHash, passwordSalt []byte) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email string, fullName *string, avatarURL *string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, username, department, bio *string, graduationYear *int, interests []string, profileCompleted bool) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	ListClassmates(ctx context.Context, viewerID uuid.UUID, filter domain.ClassmateFilter) ([]domain.User, error)
	CountClassmates(ctx context.Context, viewerID uuid.UUID, filter domain.ClassmateFilter) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
