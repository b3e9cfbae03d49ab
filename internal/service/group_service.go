package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrGroupNameTaken = errors.New("a group with this name already exists")
	ErrGroupNameEmpty = errors.New("group name is required")
	ErrNotGroupMember = errors.New("not a member of this group")
	ErrDefaultGroup   = errors.New("default groups cannot be left")
)

type GroupService struct {
	groups   ports.GroupRepository
	messages ports.MessageRepository
}

func NewGroupService(groups ports.GroupRepository, messages ports.MessageRepository) *GroupService {
	return &GroupService{groups: groups, messages: messages}
}

// Create makes the group, its backing conversation, and enrolls the creator.
func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, name string, description *string, tags []string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	group, err := s.groups.Create(ctx, name, description, tags, false, &creatorID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrGroupNameTaken
		}
		return nil, err
	}

	conv, err := s.messages.CreateConversation(ctx, domain.ConversationGroup, &group.ID)
	if err != nil {
		return nil, err
	}

	if err := s.groups.AddMember(ctx, group.ID, creatorID); err != nil {
		return nil, err
	}
	if err := s.messages.AddMember(ctx, conv.ID, creatorID); err != nil {
		return nil, err
	}
	group.MemberCount = 1
	return group, nil
}

func (s *GroupService) Get(ctx context.Context, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context, limit, offset int) ([]domain.Group, error) {
	limit, offset = normalizePagination(limit, offset)
	return s.groups.List(ctx, limit, offset)
}

func (s *GroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.Group, error) {
	return s.groups.ListByMember(ctx, userID)
}

// Join is idempotent: joining twice leaves a single membership. The user is
// also added to the group's conversation when one exists.
func (s *GroupService) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	if _, err := s.Get(ctx, groupID); err != nil {
		return err
	}
	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return err
	}

	conv, err := s.messages.FindGroupConversation(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	return s.messages.AddMember(ctx, conv.ID, userID)
}

func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsDefault {
		return ErrDefaultGroup
	}

	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotGroupMember
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}
