package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

// TalkQuery is the storage-level shape a feed tab resolves to. The tab to
// query derivation lives in the service layer.
type TalkQuery struct {
	Category       string
	AuthorID       *uuid.UUID
	OnlyUnanswered bool
	TrendingSince  *time.Time
	Limit          int
	Offset         int
}

type TalkRepository interface {
	CreatePost(ctx context.Context, authorID uuid.UUID, title, body string, category *string) (*domain.TalkPost, error)
	FindPostByID(ctx context.Context, id uuid.UUID) (*domain.TalkPost, error)
	ListPosts(ctx context.Context, q TalkQuery) ([]domain.TalkPost, error)
	CountPosts(ctx context.Context, q TalkQuery) (int64, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	CreateReply(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.TalkReply, error)
	FindReplyByID(ctx context.Context, id uuid.UUID) (*domain.TalkReply, error)
	ListReplies(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.TalkReply, error)
	SetAcceptedReply(ctx context.Context, postID uuid.UUID, replyID *uuid.UUID) error
}
