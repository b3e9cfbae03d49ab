package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrReplyNotFound = errors.New("reply not found")
	ErrNotPostAuthor = errors.New("only the post author may do this")
	ErrReplyMismatch = errors.New("reply does not belong to this post")
	ErrUnknownTab    = errors.New("unknown feed tab")
	ErrEmptyPost     = errors.New("title and body are required")
)

// trendingWindow bounds the reply-count ranking to recent posts.
const trendingWindow = 7 * 24 * time.Hour

type TalkService struct {
	talks ports.TalkRepository
	now   func() time.Time
}

func NewTalkService(talks ports.TalkRepository) *TalkService {
	return &TalkService{talks: talks, now: time.Now}
}

func (s *TalkService) CreatePost(ctx context.Context, authorID uuid.UUID, title, body string, category *string) (*domain.TalkPost, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return nil, ErrEmptyPost
	}
	return s.talks.CreatePost(ctx, authorID, title, body, category)
}

func (s *TalkService) GetPost(ctx context.Context, id uuid.UUID) (*domain.TalkPost, error) {
	post, err := s.talks.FindPostByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

type TalkListResult struct {
	Posts  []domain.TalkPost
	Total  int64
	Limit  int
	Offset int
}

// List derives the storage query from the requested feed tab: latest is the
// plain reverse-chronological feed, unanswered keeps posts with no replies,
// mine narrows to the viewer's posts, trending ranks the recent window by
// reply count.
func (s *TalkService) List(ctx context.Context, filter domain.TalkFilter) (*TalkListResult, error) {
	limit, offset := normalizePagination(filter.Limit, filter.Offset)
	q := ports.TalkQuery{Category: filter.Category, Limit: limit, Offset: offset}

	switch filter.Tab {
	case domain.TalkTabLatest, "":
	case domain.TalkTabUnanswered:
		q.OnlyUnanswered = true
	case domain.TalkTabMine:
		viewer := filter.ViewerID
		q.AuthorID = &viewer
	case domain.TalkTabTrending:
		since := s.now().Add(-trendingWindow)
		q.TrendingSince = &since
	default:
		return nil, ErrUnknownTab
	}

	posts, err := s.talks.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.talks.CountPosts(ctx, q)
	if err != nil {
		return nil, err
	}

	return &TalkListResult{Posts: posts, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *TalkService) DeletePost(ctx context.Context, postID, callerID uuid.UUID) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotPostAuthor
	}
	return s.talks.DeletePost(ctx, postID)
}

func (s *TalkService) Reply(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.TalkReply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyPost
	}
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	return s.talks.CreateReply(ctx, postID, authorID, body)
}

func (s *TalkService) ListReplies(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.TalkReply, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	limit, offset = normalizePagination(limit, offset)
	return s.talks.ListReplies(ctx, postID, limit, offset)
}

// AcceptReply marks a reply as the accepted answer. Only the post author may
// accept, and the reply must belong to the post.
func (s *TalkService) AcceptReply(ctx context.Context, postID, replyID, callerID uuid.UUID) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != callerID {
		return ErrNotPostAuthor
	}

	reply, err := s.talks.FindReplyByID(ctx, replyID)
	if err != nil {
		if isNotFound(err) {
			return ErrReplyNotFound
		}
		return err
	}
	if reply.PostID != postID {
		return ErrReplyMismatch
	}

	return s.talks.SetAcceptedReply(ctx, postID, &replyID)
}
