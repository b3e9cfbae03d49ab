package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusarena/campus-arena-api/internal/domain"
)

const userColumns = `id, email, username, full_name, avatar_url, department, graduation_year, bio, interests, password_hash, password_salt, email_verified, profile_completed, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	query := `
        INSERT INTO user_account (email, password_hash, password_salt)
        VALUES ($1, $2, $3)
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query, email, passwordHash, passwordSalt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, fullName *string, avatarURL *string) (*domain.User, error) {
	query := `
        INSERT INTO user_account (email, full_name, avatar_url, email_verified)
        VALUES ($1, $2, $3, TRUE)
        ON CONFLICT (email) DO UPDATE
        SET full_name = COALESCE(EXCLUDED.full_name, user_account.full_name),
            avatar_url = COALESCE(EXCLUDED.avatar_url, user_account.avatar_url),
            email_verified = TRUE,
            updated_at = NOW()
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query, email, fullName, avatarURL)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, email string) error {
	const query = `
        UPDATE user_account
        SET email_verified = TRUE,
            updated_at = NOW()
        WHERE email = $1
    `
	_, err := r.db.ExecContext(ctx, query, email)
	return err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, username, department, bio *string, graduationYear *int, interests []string, profileCompleted bool) (*domain.User, error) {
	query := `
        UPDATE user_account
        SET full_name = COALESCE($2, full_name),
            username = COALESCE($3, username),
            department = COALESCE($4, department),
            bio = COALESCE($5, bio),
            graduation_year = COALESCE($6, graduation_year),
            interests = COALESCE($7, interests),
            profile_completed = $8,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + userColumns
	var interestsArg interface{}
	if interests != nil {
		interestsArg = pq.StringArray(interests)
	}
	row := r.db.QueryRowxContext(ctx, query, id, fullName, username, department, bio, graduationYear, interestsArg, profileCompleted)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	const query = `
        UPDATE user_account
        SET avatar_url = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, avatarURL)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            password_salt = $3,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *UserRepository) ListClassmates(ctx context.Context, viewerID uuid.UUID, filter domain.ClassmateFilter) ([]domain.User, error) {
	where, args := classmateWhere(viewerID, filter)
	query := fmt.Sprintf(`SELECT %s FROM user_account %s ORDER BY full_name NULLS LAST, created_at LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) CountClassmates(ctx context.Context, viewerID uuid.UUID, filter domain.ClassmateFilter) (int64, error) {
	where, args := classmateWhere(viewerID, filter)
	query := `SELECT COUNT(*) FROM user_account ` + where
	var total int64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func classmateWhere(viewerID uuid.UUID, filter domain.ClassmateFilter) (string, []interface{}) {
	clauses := []string{"id <> $1", "email_verified = TRUE"}
	args := []interface{}{viewerID}

	if filter.Department != "" {
		args = append(args, filter.Department)
		clauses = append(clauses, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.GraduationYear != nil {
		args = append(args, *filter.GraduationYear)
		clauses = append(clauses, fmt.Sprintf("graduation_year = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR username ILIKE $%d)", n, n))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM user_account WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
