package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/repository/ports"
)

const talkPostColumns = `p.id, p.author_id, p.title, p.body, p.category, p.accepted_reply_id, p.created_at, p.updated_at,
        u.full_name AS author_name, u.department AS author_department,
        (SELECT COUNT(*) FROM talk_replies tr WHERE tr.post_id = p.id) AS reply_count`

type TalkRepository struct {
	db *sqlx.DB
}

func NewTalkRepo(db *sqlx.DB) *TalkRepository {
	return &TalkRepository{db: db}
}

func (r *TalkRepository) CreatePost(ctx context.Context, authorID uuid.UUID, title, body string, category *string) (*domain.TalkPost, error) {
	const query = `
        INSERT INTO talk_posts (author_id, title, body, category)
        VALUES ($1, $2, $3, $4)
        RETURNING id, author_id, title, body, category, accepted_reply_id, created_at, updated_at,
            NULL::text AS author_name, NULL::text AS author_department, 0::bigint AS reply_count
    `
	row := r.db.QueryRowxContext(ctx, query, authorID, title, body, category)
	var post domain.TalkPost
	if err := row.StructScan(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *TalkRepository) FindPostByID(ctx context.Context, id uuid.UUID) (*domain.TalkPost, error) {
	query := `
        SELECT ` + talkPostColumns + `
        FROM talk_posts p
        JOIN user_account u ON u.id = p.author_id
        WHERE p.id = $1
    `
	var post domain.TalkPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *TalkRepository) ListPosts(ctx context.Context, q ports.TalkQuery) ([]domain.TalkPost, error) {
	where, args := talkWhere(q)

	order := "p.created_at DESC"
	if q.TrendingSince != nil {
		order = "reply_count DESC, p.created_at DESC"
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM talk_posts p
        JOIN user_account u ON u.id = p.author_id
        %s
        ORDER BY %s
        LIMIT $%d OFFSET $%d
    `, talkPostColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	posts := []domain.TalkPost{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *TalkRepository) CountPosts(ctx context.Context, q ports.TalkQuery) (int64, error) {
	where, args := talkWhere(q)
	query := `SELECT COUNT(*) FROM talk_posts p ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func talkWhere(q ports.TalkQuery) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if q.Category != "" {
		args = append(args, q.Category)
		clauses = append(clauses, fmt.Sprintf("p.category = $%d", len(args)))
	}
	if q.AuthorID != nil {
		args = append(args, *q.AuthorID)
		clauses = append(clauses, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if q.OnlyUnanswered {
		clauses = append(clauses, "NOT EXISTS (SELECT 1 FROM talk_replies tr WHERE tr.post_id = p.id)")
	}
	if q.TrendingSince != nil {
		args = append(args, *q.TrendingSince)
		clauses = append(clauses, fmt.Sprintf("p.created_at >= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *TalkRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM talk_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *TalkRepository) CreateReply(ctx context.Context, postID, authorID uuid.UUID, body string) (*domain.TalkReply, error) {
	const query = `
        INSERT INTO talk_replies (post_id, author_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, post_id, author_id, body, created_at, NULL::text AS author_name
    `
	row := r.db.QueryRowxContext(ctx, query, postID, authorID, body)
	var reply domain.TalkReply
	if err := row.StructScan(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *TalkRepository) FindReplyByID(ctx context.Context, id uuid.UUID) (*domain.TalkReply, error) {
	const query = `
        SELECT r.id, r.post_id, r.author_id, r.body, r.created_at, u.full_name AS author_name
        FROM talk_replies r
        JOIN user_account u ON u.id = r.author_id
        WHERE r.id = $1
    `
	var reply domain.TalkReply
	if err := r.db.GetContext(ctx, &reply, query, id); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *TalkRepository) ListReplies(ctx context.Context, postID uuid.UUID, limit, offset int) ([]domain.TalkReply, error) {
	const query = `
        SELECT r.id, r.post_id, r.author_id, r.body, r.created_at, u.full_name AS author_name
        FROM talk_replies r
        JOIN user_account u ON u.id = r.author_id
        WHERE r.post_id = $1
        ORDER BY r.created_at
        LIMIT $2 OFFSET $3
    `
	replies := []domain.TalkReply{}
	if err := r.db.SelectContext(ctx, &replies, query, postID, limit, offset); err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *TalkRepository) SetAcceptedReply(ctx context.Context, postID uuid.UUID, replyID *uuid.UUID) error {
	const query = `
        UPDATE talk_posts
        SET accepted_reply_id = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, postID, replyID)
	return err
}
