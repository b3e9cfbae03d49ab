package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type fakeMessageRepo struct {
	createConvKind   domain.ConversationKind
	createConvGroup  *uuid.UUID
	createConvResult *domain.Conversation
	createConvErr    error

	findConvResult *domain.Conversation
	findConvErr    error

	directResult *domain.Conversation
	directErr    error

	groupConvResult *domain.Conversation
	groupConvErr    error

	addedMembers []struct {
		conversationID uuid.UUID
		userID         uuid.UUID
	}
	addMemberErr error

	isMemberResult bool
	isMemberErr    error

	memberIDsResult []uuid.UUID
	memberIDsErr    error

	byUserResult []domain.Conversation
	byUserErr    error

	createMsgResult *domain.Message
	createMsgErr    error

	listMsgBefore time.Time
	listMsgLimit  int
	listMsgResult []domain.Message
	listMsgErr    error
}

func (f *fakeMessageRepo) CreateConversation(ctx context.Context, kind domain.ConversationKind, groupID *uuid.UUID) (*domain.Conversation, error) {
	f.createConvKind = kind
	f.createConvGroup = groupID
	if f.createConvResult != nil || f.createConvErr != nil {
		return f.createConvResult, f.createConvErr
	}
	return &domain.Conversation{ID: uuid.New(), Kind: kind, GroupID: groupID}, nil
}

func (f *fakeMessageRepo) FindConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	return f.findConvResult, f.findConvErr
}

func (f *fakeMessageRepo) FindDirectConversation(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error) {
	return f.directResult, f.directErr
}

func (f *fakeMessageRepo) FindGroupConversation(ctx context.Context, groupID uuid.UUID) (*domain.Conversation, error) {
	return f.groupConvResult, f.groupConvErr
}

func (f *fakeMessageRepo) AddMember(ctx context.Context, conversationID, userID uuid.UUID) error {
	f.addedMembers = append(f.addedMembers, struct {
		conversationID uuid.UUID
		userID         uuid.UUID
	}{conversationID: conversationID, userID: userID})
	return f.addMemberErr
}

func (f *fakeMessageRepo) IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	return f.isMemberResult, f.isMemberErr
}

func (f *fakeMessageRepo) ListMemberIDs(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	return f.memberIDsResult, f.memberIDsErr
}

func (f *fakeMessageRepo) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return f.byUserResult, f.byUserErr
}

func (f *fakeMessageRepo) CreateMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error) {
	if f.createMsgResult != nil || f.createMsgErr != nil {
		return f.createMsgResult, f.createMsgErr
	}
	return &domain.Message{ID: uuid.New(), ConversationID: conversationID, SenderID: senderID, Body: body, CreatedAt: time.Now()}, nil
}

func (f *fakeMessageRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]domain.Message, error) {
	f.listMsgBefore = before
	f.listMsgLimit = limit
	return f.listMsgResult, f.listMsgErr
}

func TestGroupCreateWiresConversationAndCreator(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	groupID := uuid.New()
	groups := &fakeGroupRepo{createResult: &domain.Group{ID: groupID, Name: "Chess Club"}}
	messages := &fakeMessageRepo{}

	svc := NewGroupService(groups, messages)

	group, err := svc.Create(ctx, creatorID, " Chess Club ", nil, nil)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if group.MemberCount != 1 {
		t.Fatalf("expected creator counted as member, got %d", group.MemberCount)
	}
	if messages.createConvKind != domain.ConversationGroup {
		t.Fatalf("expected a group conversation, got %q", messages.createConvKind)
	}
	if messages.createConvGroup == nil || *messages.createConvGroup != groupID {
		t.Fatal("conversation should be bound to the group")
	}
	if len(groups.addedMembers) != 1 || groups.addedMembers[0].userID != creatorID {
		t.Fatalf("creator should join the group, got %+v", groups.addedMembers)
	}
	if len(messages.addedMembers) != 1 || messages.addedMembers[0].userID != creatorID {
		t.Fatalf("creator should join the conversation, got %+v", messages.addedMembers)
	}
}

func TestGroupCreateEmptyName(t *testing.T) {
	ctx := context.Background()
	svc := NewGroupService(&fakeGroupRepo{}, &fakeMessageRepo{})

	if _, err := svc.Create(ctx, uuid.New(), "   ", nil, nil); !errors.Is(err, ErrGroupNameEmpty) {
		t.Fatalf("expected ErrGroupNameEmpty, got %v", err)
	}
}

func TestGroupCreateNameTaken(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroupRepo{createErr: &pgconn.PgError{Code: "23505"}}
	svc := NewGroupService(groups, &fakeMessageRepo{})

	if _, err := svc.Create(ctx, uuid.New(), "Chess Club", nil, nil); !errors.Is(err, ErrGroupNameTaken) {
		t.Fatalf("expected ErrGroupNameTaken, got %v", err)
	}
}

func TestGroupJoinAddsConversationMembership(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	userID := uuid.New()
	convID := uuid.New()
	groups := &fakeGroupRepo{findByIDResult: &domain.Group{ID: groupID, Name: "Chess Club"}}
	messages := &fakeMessageRepo{groupConvResult: &domain.Conversation{ID: convID, Kind: domain.ConversationGroup}}

	svc := NewGroupService(groups, messages)

	if err := svc.Join(ctx, groupID, userID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(groups.addedMembers) != 1 {
		t.Fatalf("expected one group membership, got %d", len(groups.addedMembers))
	}
	if len(messages.addedMembers) != 1 || messages.addedMembers[0].conversationID != convID {
		t.Fatalf("expected conversation membership, got %+v", messages.addedMembers)
	}
}

func TestGroupJoinWithoutConversation(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroupRepo{findByIDResult: &domain.Group{ID: uuid.New(), Name: "Chess Club"}}
	messages := &fakeMessageRepo{groupConvErr: sql.ErrNoRows}

	svc := NewGroupService(groups, messages)

	// A group without a conversation is legal; the join still succeeds.
	if err := svc.Join(ctx, uuid.New(), uuid.New()); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestGroupJoinUnknownGroup(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroupRepo{findByIDErr: sql.ErrNoRows}
	svc := NewGroupService(groups, &fakeMessageRepo{})

	if err := svc.Join(ctx, uuid.New(), uuid.New()); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestGroupLeaveDefaultGroupRefused(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroupRepo{findByIDResult: &domain.Group{ID: uuid.New(), Name: "Campus Arena", IsDefault: true}}
	svc := NewGroupService(groups, &fakeMessageRepo{})

	if err := svc.Leave(ctx, uuid.New(), uuid.New()); !errors.Is(err, ErrDefaultGroup) {
		t.Fatalf("expected ErrDefaultGroup, got %v", err)
	}
	if len(groups.removedMembers) != 0 {
		t.Fatal("membership must be untouched")
	}
}

func TestGroupLeaveNotMember(t *testing.T) {
	ctx := context.Background()
	groups := &fakeGroupRepo{findByIDResult: &domain.Group{ID: uuid.New(), Name: "Chess Club"}}
	svc := NewGroupService(groups, &fakeMessageRepo{})

	if err := svc.Leave(ctx, uuid.New(), uuid.New()); !errors.Is(err, ErrNotGroupMember) {
		t.Fatalf("expected ErrNotGroupMember, got %v", err)
	}
}

func TestGroupLeaveSuccess(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.New()
	userID := uuid.New()
	groups := &fakeGroupRepo{
		findByIDResult: &domain.Group{ID: groupID, Name: "Chess Club"},
		isMemberResult: true,
	}
	svc := NewGroupService(groups, &fakeMessageRepo{})

	if err := svc.Leave(ctx, groupID, userID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(groups.removedMembers) != 1 || groups.removedMembers[0].userID != userID {
		t.Fatalf("expected membership removal, got %+v", groups.removedMembers)
	}
}
