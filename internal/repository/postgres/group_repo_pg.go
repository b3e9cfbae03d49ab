package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

const groupColumns = `g.id, g.name, g.description, g.tags, g.is_default, g.created_by, g.created_at,
        (SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count`

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepo(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, name string, description *string, tags []string, isDefault bool, createdBy *uuid.UUID) (*domain.Group, error) {
	const query = `
        INSERT INTO groups (name, description, tags, is_default, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, name, description, tags, is_default, created_by, created_at, 0 AS member_count
    `
	row := r.db.QueryRowxContext(ctx, query, name, description, pq.StringArray(tags), isDefault, createdBy)
	var group domain.Group
	if err := row.StructScan(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) EnsureDefault(ctx context.Context, name string) (*domain.Group, error) {
	const query = `
        INSERT INTO groups (name, is_default)
        VALUES ($1, TRUE)
        ON CONFLICT (name) DO UPDATE SET is_default = TRUE
        RETURNING id, name, description, tags, is_default, created_by, created_at, 0 AS member_count
    `
	row := r.db.QueryRowxContext(ctx, query, name)
	var group domain.Group
	if err := row.StructScan(&group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`
	var group domain.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) List(ctx context.Context, limit, offset int) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g ORDER BY g.name LIMIT $1 OFFSET $2`
	groups := []domain.Group{}
	if err := r.db.SelectContext(ctx, &groups, query, limit, offset); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Group, error) {
	query := `
        SELECT ` + groupColumns + `
        FROM groups g
        JOIN group_members m ON m.group_id = g.id
        WHERE m.user_id = $1
        ORDER BY g.name
    `
	groups := []domain.Group{}
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	const query = `
        INSERT INTO group_members (group_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (group_id, user_id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, groupID, userID)
	return err
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	const query = `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, groupID, userID)
	return err
}

func (r *GroupRepository) ListMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT user_id FROM group_members WHERE group_id = $1`
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query, groupID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, err
	}
	return exists, nil
}
