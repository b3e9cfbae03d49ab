package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Group struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Tags        pq.StringArray `db:"tags" json:"tags,omitempty"`
	IsDefault   bool           `db:"is_default" json:"is_default"`
	CreatedBy   *uuid.UUID     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	MemberCount int64          `db:"member_count" json:"member_count"`
}

type GroupMember struct {
	GroupID  uuid.UUID `db:"group_id" json:"group_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
