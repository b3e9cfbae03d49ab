package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type MessageRepository interface {
	CreateConversation(ctx context.Context, kind domain.ConversationKind, groupID *uuid.UUID) (*domain.Conversation, error)
	FindConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	// FindDirectConversation returns the existing direct conversation
	// between the two users regardless of argument order.
	FindDirectConversation(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error)
	FindGroupConversation(ctx context.Context, groupID uuid.UUID) (*domain.Conversation, error)
	AddMember(ctx context.Context, conversationID, userID uuid.UUID) error
	IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	ListMemberIDs(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)
	ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error)
	// ListMessages pages backwards in time from the before cursor.
	ListMessages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]domain.Message, error)
}
