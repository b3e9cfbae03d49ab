package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type GroupRepository interface {
	Create(ctx context.Context, name string, description *string, tags []string, isDefault bool, createdBy *uuid.UUID) (*domain.Group, error)
	// EnsureDefault inserts the named default group if it is missing and
	// returns the row either way.
	EnsureDefault(ctx context.Context, name string) (*domain.Group, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	List(ctx context.Context, limit, offset int) ([]domain.Group, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Group, error)
	// AddMember is idempotent: joining a group twice leaves one membership.
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}
