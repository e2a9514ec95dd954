package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for accounts,
// including the single-slot refresh token that represents the active session.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new account record. Username and email uniqueness is
// case-insensitive and enforced by the schema.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, user.ID, user.Username, user.Email, user.FullName, user.Password, user.Avatar, user.CoverImage, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.ErrDuplicateUser
		}
		return wrapStorageErr("insert user", err)
	}

	return nil
}

// FindByID fetches an account by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin fetches an account whose username or email matches the
// identifier, compared case-insensitively.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, identifier string) (models.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE lower(username) = lower($1) OR lower(email) = lower($1)
    `, identifier)
}

// FindByUsername fetches an account by its unique username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, args ...any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var user models.User
	row := conn.QueryRow(ctx, query, args...)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password,
		&user.Avatar, &user.CoverImage, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		return models.User{}, wrapStorageErr("select user", err)
	}

	return user, nil
}

// SetRefreshToken unconditionally overwrites the stored refresh token,
// invalidating any previously issued refresh token for the account.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1
    `, id, token, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("set refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken replaces the stored refresh token only when it still
// equals current. The conditional write is the serialization point for
// concurrent refresh calls: the loser observes zero affected rows and fails
// with ErrInvalidToken.
func (r *PostgresUserRepository) RotateRefreshToken(ctx context.Context, id, current, next string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $3, updated_at = $4
        WHERE id = $1 AND refresh_token = $2
    `, id, current, next, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("rotate refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrInvalidToken
	}

	return nil
}

// ClearRefreshToken removes the stored refresh token. Clearing an account
// that holds no session succeeds, keeping logout idempotent.
func (r *PostgresUserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE id = $1
    `, id, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("clear refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash. No other field is
// touched or re-validated.
func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
    `, id, hash, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// UpdateProfile applies a partial update to display fields. Nil arguments
// leave the corresponding column unchanged.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, fullName, avatar, coverImage *string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET full_name = COALESCE($2, full_name),
            avatar_url = COALESCE($3, avatar_url),
            cover_image_url = COALESCE($4, cover_image_url),
            updated_at = $5
        WHERE id = $1
    `, id, fullName, avatar, coverImage, time.Now().UTC())
	if err != nil {
		return models.User{}, wrapStorageErr("update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return models.User{}, auth.ErrUserNotFound
	}

	return r.FindByID(ctx, id)
}

var _ auth.UserStore = (*PostgresUserRepository)(nil)
