package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateConversation(ctx context.Context, kind domain.ConversationKind, groupID *uuid.UUID) (*domain.Conversation, error) {
	const query = `
        INSERT INTO conversations (kind, group_id)
        VALUES ($1, $2)
        RETURNING id, kind, group_id, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, kind, groupID)
	var conv domain.Conversation
	if err := row.StructScan(&conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepository) FindConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	const query = `SELECT id, kind, group_id, created_at FROM conversations WHERE id = $1`
	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepository) FindDirectConversation(ctx context.Context, a, b uuid.UUID) (*domain.Conversation, error) {
	const query = `
        SELECT c.id, c.kind, c.group_id, c.created_at
        FROM conversations c
        JOIN conversation_members ma ON ma.conversation_id = c.id AND ma.user_id = $1
        JOIN conversation_members mb ON mb.conversation_id = c.id AND mb.user_id = $2
        WHERE c.kind = 'direct'
        LIMIT 1
    `
	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, a, b); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepository) FindGroupConversation(ctx context.Context, groupID uuid.UUID) (*domain.Conversation, error) {
	const query = `SELECT id, kind, group_id, created_at FROM conversations WHERE group_id = $1`
	var conv domain.Conversation
	if err := r.db.GetContext(ctx, &conv, query, groupID); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *MessageRepository) AddMember(ctx context.Context, conversationID, userID uuid.UUID) error {
	const query = `
        INSERT INTO conversation_members (conversation_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (conversation_id, user_id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, conversationID, userID)
	return err
}

func (r *MessageRepository) IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM conversation_members WHERE conversation_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, conversationID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *MessageRepository) ListMemberIDs(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	const query = `SELECT user_id FROM conversation_members WHERE conversation_id = $1`
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query, conversationID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *MessageRepository) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	const query = `
        SELECT c.id, c.kind, c.group_id, c.created_at
        FROM conversations c
        JOIN conversation_members m ON m.conversation_id = c.id
        WHERE m.user_id = $1
        ORDER BY c.created_at DESC
    `
	convs := []domain.Conversation{}
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *MessageRepository) CreateMessage(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*domain.Message, error) {
	const query = `
        INSERT INTO messages (conversation_id, sender_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, conversation_id, sender_id, body, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, conversationID, senderID, body)
	var msg domain.Message
	if err := row.StructScan(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *MessageRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]domain.Message, error) {
	const query = `
        SELECT id, conversation_id, sender_id, body, created_at
        FROM messages
        WHERE conversation_id = $1 AND created_at < $2
        ORDER BY created_at DESC
        LIMIT $3
    `
	msgs := []domain.Message{}
	if err := r.db.SelectContext(ctx, &msgs, query, conversationID, before, limit); err != nil {
		return nil, err
	}
	return msgs, nil
}
