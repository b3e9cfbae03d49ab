package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

type fakeTalkRepo struct {
	createPostResult *domain.TalkPost
	createPostErr    error

	findPostResult *domain.TalkPost
	findPostErr    error

	listQueries []ports.TalkQuery
	listResult  []domain.TalkPost
	listErr     error

	countResult int64
	countErr    error

	deletedPosts []uuid.UUID
	deleteErr    error

	createReplyResult *domain.TalkReply
	createReplyErr    error

	findReplyResult *domain.TalkReply
	findReplyErr    error

	repliesResult []domain.TalkReply
	repliesErr    error

	accepted []struct {
		postID  uuid.UUID
		replyID *uuid.UUID
	}
	acceptErr error
}

func (f *fakeTalkRepo) CreatePost(ctx context.Context, authorID uuid.UUID, title, body string, category *string) (*domain.TalkPost, error) {
	if f.createPostResult != nil || f.createPostErr != nil {
		return f.createPostResult, f.createPostErr
	}
	return &domain.TalkPost{ID: uuid.New(), AuthorID: authorID, Title: title, Body: body, Category: category}, nil
}

func (f *fakeTalkRepo) FindPostByID(ctx context.Context, id uuid.UUID) (*domain.TalkPost, error) {
	return f.findPostResult, f.findPostErr
}

func (f *fakeTalkRepo) ListPosts(ctx context.Context, q ports.TalkQuery) ([]domain.TalkPost, error) {
	f.listQueries = append(f.listQueries, q)
	return f.listResult, f.listErr
}

func (f *fakeTalkRepo) CountPosts(ctx context.Context, q ports.TalkQuery) (int64, error) {
	return f.countResult, f.countErr
}

func (f *fakeTalkRepo) DeletePost(ctx context.Context, id uuid.UUID) error {
	f.deletedPosts = append(f.deletedPosts, id)
	return f.deleteErr
}

func (f *fakeTalkRepo) CreateReply(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.TalkReply, error) {
	if f.createReplyResult != nil || f.createReplyErr != nil {
		return f.createReplyResult, f.createReplyErr
	}
	return &domain.TalkReply{ID: uuid.New(), PostID: postID, AuthorID: authorID, Body: body}, nil
}

func (f *fakeTalkRepo) FindReplyByID(ctx context.Context, id uuid.UUID) (*domain.TalkReply, error) {
	return f.findReplyResult, f.findReplyErr
}

func (f *fakeTalkRepo) ListReplies(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.TalkReply, error) {
	return f.repliesResult, f.repliesErr
}

func (f *fakeTalkRepo) SetAcceptedReply(ctx context.Context, postID uuid.UUID, replyID *uuid.UUID) error {
	f.accepted = append(f.accepted, struct {
		postID  uuid.UUID
		replyID *uuid.UUID
	}{postID: postID, replyID: replyID})
	return f.acceptErr
}

func newTalkForTests(talks *fakeTalkRepo) (*TalkService, time.Time) {
	svc := NewTalkService(talks)
	fixed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, fixed
}

func TestCreatePostTrimsAndValidates(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{}
	svc, _ := newTalkForTests(talks)

	post, err := svc.CreatePost(ctx, uuid.New(), "  Exam tips?  ", "  Anyone got notes for CS201?  ", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.Title != "Exam tips?" || post.Body != "Anyone got notes for CS201?" {
		t.Fatalf("expected trimmed fields, got %q / %q", post.Title, post.Body)
	}

	if _, err := svc.CreatePost(ctx, uuid.New(), "   ", "body", nil); !errors.Is(err, ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
}

func TestListTabLatest(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{}
	svc, _ := newTalkForTests(talks)

	if _, err := svc.List(ctx, domain.TalkFilter{Tab: domain.TalkTabLatest}); err != nil {
		t.Fatalf("list: %v", err)
	}
	q := talks.listQueries[0]
	if q.OnlyUnanswered || q.AuthorID != nil || q.TrendingSince != nil {
		t.Fatalf("latest should be the plain feed, got %+v", q)
	}
}

func TestListTabUnanswered(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{}
	svc, _ := newTalkForTests(talks)

	if _, err := svc.List(ctx, domain.TalkFilter{Tab: domain.TalkTabUnanswered}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !talks.listQueries[0].OnlyUnanswered {
		t.Fatal("expected OnlyUnanswered set")
	}
}

func TestListTabMine(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{}
	svc, _ := newTalkForTests(talks)
	viewerID := uuid.New()

	if _, err := svc.List(ctx, domain.TalkFilter{Tab: domain.TalkTabMine, ViewerID: viewerID}); err != nil {
		t.Fatalf("list: %v", err)
	}
	q := talks.listQueries[0]
	if q.AuthorID == nil || *q.AuthorID != viewerID {
		t.Fatalf("mine should filter by the viewer, got %+v", q.AuthorID)
	}
}

func TestListTabTrendingWindow(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{}
	svc, fixed := newTalkForTests(talks)

	if _, err := svc.List(ctx, domain.TalkFilter{Tab: domain.TalkTabTrending}); err != nil {
		t.Fatalf("list: %v", err)
	}
	q := talks.listQueries[0]
	if q.TrendingSince == nil {
		t.Fatal("expected TrendingSince set")
	}
	if want := fixed.Add(-trendingWindow); !q.TrendingSince.Equal(want) {
		t.Fatalf("expected window start %s, got %s", want, q.TrendingSince)
	}
}

func TestListUnknownTab(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTalkForTests(&fakeTalkRepo{})

	if _, err := svc.List(ctx, domain.TalkFilter{Tab: "popular"}); !errors.Is(err, ErrUnknownTab) {
		t.Fatalf("expected ErrUnknownTab, got %v", err)
	}
}

func TestDeletePostAuthorOnly(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	postID := uuid.New()
	talks := &fakeTalkRepo{findPostResult: &domain.TalkPost{ID: postID, AuthorID: authorID}}
	svc, _ := newTalkForTests(talks)

	if err := svc.DeletePost(ctx, postID, uuid.New()); !errors.Is(err, ErrNotPostAuthor) {
		t.Fatalf("expected ErrNotPostAuthor, got %v", err)
	}
	if err := svc.DeletePost(ctx, postID, authorID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if len(talks.deletedPosts) != 1 || talks.deletedPosts[0] != postID {
		t.Fatalf("expected one deletion of %s, got %v", postID, talks.deletedPosts)
	}
}

func TestReplyToUnknownPost(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{findPostErr: sql.ErrNoRows}
	svc, _ := newTalkForTests(talks)

	if _, err := svc.Reply(ctx, uuid.New(), uuid.New(), "an answer"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestAcceptReply(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	postID := uuid.New()
	replyID := uuid.New()
	talks := &fakeTalkRepo{
		findPostResult:  &domain.TalkPost{ID: postID, AuthorID: authorID},
		findReplyResult: &domain.TalkReply{ID: replyID, PostID: postID},
	}
	svc, _ := newTalkForTests(talks)

	if err := svc.AcceptReply(ctx, postID, replyID, authorID); err != nil {
		t.Fatalf("accept reply: %v", err)
	}
	if len(talks.accepted) != 1 || *talks.accepted[0].replyID != replyID {
		t.Fatalf("expected accepted reply recorded, got %+v", talks.accepted)
	}
}

func TestAcceptReplyWrongCaller(t *testing.T) {
	ctx := context.Background()
	talks := &fakeTalkRepo{findPostResult: &domain.TalkPost{ID: uuid.New(), AuthorID: uuid.New()}}
	svc, _ := newTalkForTests(talks)

	if err := svc.AcceptReply(ctx, uuid.New(), uuid.New(), uuid.New()); !errors.Is(err, ErrNotPostAuthor) {
		t.Fatalf("expected ErrNotPostAuthor, got %v", err)
	}
}

func TestAcceptReplyFromAnotherPost(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	postID := uuid.New()
	talks := &fakeTalkRepo{
		findPostResult:  &domain.TalkPost{ID: postID, AuthorID: authorID},
		findReplyResult: &domain.TalkReply{ID: uuid.New(), PostID: uuid.New()},
	}
	svc, _ := newTalkForTests(talks)

	if err := svc.AcceptReply(ctx, postID, uuid.New(), authorID); !errors.Is(err, ErrReplyMismatch) {
		t.Fatalf("expected ErrReplyMismatch, got %v", err)
	}
}
