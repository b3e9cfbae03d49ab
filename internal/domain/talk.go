package domain

import (
	"time"

	"github.com/google/uuid"
)

// TalkTab selects the derived view of the Campus Talks feed.
type TalkTab string

const (
	TalkTabLatest     TalkTab = "latest"
	TalkTabUnanswered TalkTab = "unanswered"
	TalkTabMine       TalkTab = "mine"
	TalkTabTrending   TalkTab = "trending"
)

type TalkPost struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	AuthorID         uuid.UUID  `db:"author_id" json:"author_id"`
	Title            string     `db:"title" json:"title"`
	Body             string     `db:"body" json:"body"`
	Category         *string    `db:"category" json:"category,omitempty"`
	AcceptedReplyID  *uuid.UUID `db:"accepted_reply_id" json:"accepted_reply_id,omitempty"`
	ReplyCount       int64      `db:"reply_count" json:"reply_count"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
	AuthorName       *string    `db:"author_name" json:"author_name,omitempty"`
	AuthorDepartment *string    `db:"author_department" json:"author_department,omitempty"`
}

type TalkReply struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PostID     uuid.UUID `db:"post_id" json:"post_id"`
	AuthorID   uuid.UUID `db:"author_id" json:"author_id"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	AuthorName *string   `db:"author_name" json:"author_name,omitempty"`
}

type TalkFilter struct {
	Tab      TalkTab
	Category string
	ViewerID uuid.UUID
	Limit    int
	Offset   int
}
