package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type User struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Email            string         `db:"email" json:"email"`
	Username         *string        `db:"username" json:"username,omitempty"`
	FullName         *string        `db:"full_name" json:"full_name,omitempty"`
	AvatarURL        *string        `db:"avatar_url" json:"avatar_url,omitempty"`
	Department       *string        `db:"department" json:"department,omitempty"`
	GraduationYear   *int           `db:"graduation_year" json:"graduation_year,omitempty"`
	Bio              *string        `db:"bio" json:"bio,omitempty"`
	Interests        pq.StringArray `db:"interests" json:"interests,omitempty"`
	PasswordHash     []byte         `db:"password_hash" json:"-"`
	PasswordSalt     []byte         `db:"password_salt" json:"-"`
	EmailVerified    bool           `db:"email_verified" json:"email_verified"`
	ProfileCompleted bool           `db:"profile_completed" json:"profile_completed"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ClassmateFilter narrows the classmate directory listing.
type ClassmateFilter struct {
	Department     string
	GraduationYear *int
	Search         string
	Limit          int
	Offset         int
}
