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
	ErrConversationNotFound  = errors.New("conversation not found")
	ErrNotConversationMember = errors.New("not a member of this conversation")
	ErrEmptyMessage          = errors.New("message body is required")
	ErrDirectWithSelf        = errors.New("cannot start a conversation with yourself")
)

// MessageNotifier pushes a stored message out to connected clients. Delivery
// is best effort and never blocks or fails the write path.
type MessageNotifier interface {
	MessageCreated(memberIDs []uuid.UUID, message *domain.Message)
}

type MessageService struct {
	messages ports.MessageRepository
	users    ports.UserRepository
	notifier MessageNotifier
}

func NewMessageService(messages ports.MessageRepository, users ports.UserRepository, notifier MessageNotifier) *MessageService {
	return &MessageService{messages: messages, users: users, notifier: notifier}
}

// StartDirect finds or creates the direct conversation between two users.
func (s *MessageService) StartDirect(ctx context.Context, userID, otherID uuid.UUID) (*domain.Conversation, error) {
	if userID == otherID {
		return nil, ErrDirectWithSelf
	}
	if _, err := s.users.FindByID(ctx, otherID); err != nil {
		if isNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	conv, err := s.messages.FindDirectConversation(ctx, userID, otherID)
	if err == nil {
		return conv, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	conv, err = s.messages.CreateConversation(ctx, domain.ConversationDirect, nil)
	if err != nil {
		return nil, err
	}
	if err := s.messages.AddMember(ctx, conv.ID, userID); err != nil {
		return nil, err
	}
	if err := s.messages.AddMember(ctx, conv.ID, otherID); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return s.messages.ListConversationsByUser(ctx, userID)
}

// Send persists the message, then fans it out to the conversation members.
// The fan-out is not awaited; a dropped websocket frame is acceptable since
// the message is already durable.
func (s *MessageService) Send(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	if err := s.requireMember(ctx, conversationID, senderID); err != nil {
		return nil, err
	}

	msg, err := s.messages.CreateMessage(ctx, conversationID, senderID, body)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if members, err := s.messages.ListMemberIDs(ctx, conversationID); err == nil {
			s.notifier.MessageCreated(members, msg)
		}
	}
	return msg, nil
}

func (s *MessageService) History(ctx context.Context, conversationID, userID uuid.UUID, before time.Time, limit int) ([]domain.Message, error) {
	if err := s.requireMember(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if before.IsZero() {
		before = time.Now()
	}
	limit, _ = normalizePagination(limit, 0)
	return s.messages.ListMessages(ctx, conversationID, before, limit)
}

func (s *MessageService) requireMember(ctx context.Context, conversationID, userID uuid.UUID) error {
	if _, err := s.messages.FindConversationByID(ctx, conversationID); err != nil {
		if isNotFound(err) {
			return ErrConversationNotFound
		}
		return err
	}
	member, err := s.messages.IsMember(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotConversationMember
	}
	return nil
}
