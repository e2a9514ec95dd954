package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

const videoWithOwnerColumns = `
        v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
        v.views, v.published, v.created_at, v.updated_at,
        u.id, u.username, u.full_name, u.avatar_url`

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos
// and the per-account watch history derived from them.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by
// PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL, video.Thumbnail,
		video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return wrapStorageErr("insert video", err)
	}

	return nil
}

// FindByID fetches a video joined with its owner projection.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoWithOwner{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoWithOwnerColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.id = $1
    `, id)

	video, err := scanVideoWithOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoWithOwner{}, ErrNotFound
		}
		return models.VideoWithOwner{}, wrapStorageErr("select video", err)
	}

	return video, nil
}

// List returns published videos joined with their owners, newest first,
// optionally filtered by a title search and an owner, with offset pagination.
func (r *PostgresVideoRepository) List(ctx context.Context, search, ownerID string, limit, offset int) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + videoWithOwnerColumns + `
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.published
    `
	args := []any{}
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND v.title ILIKE $%d", len(args))
	}
	if ownerID != "" {
		args = append(args, ownerID)
		query += fmt.Sprintf(" AND v.owner_id = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY v.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapStorageErr("query videos", err)
	}
	defer rows.Close()

	return scanVideosWithOwner(rows)
}

// Update applies a partial update to title, description, and thumbnail.
func (r *PostgresVideoRepository) Update(ctx context.Context, id string, title, description, thumbnail *string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = COALESCE($2, title),
            description = COALESCE($3, description),
            thumbnail_url = COALESCE($4, thumbnail_url),
            updated_at = $5
        WHERE id = $1
    `, id, title, description, thumbnail, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("update video", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// SetPublished flips the publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos SET published = $2, updated_at = $3 WHERE id = $1
    `, id, published, time.Now().UTC())
	if err != nil {
		return wrapStorageErr("toggle publish status", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video record. Relationship edges targeting the video are
// left behind on purpose; derived reads tolerate the dangling references.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return wrapStorageErr("delete video", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementViews bumps the view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return wrapStorageErr("increment views", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendWatchHistory records that the user watched the video. Re-watching
// refreshes the watched-at timestamp instead of duplicating the entry.
func (r *PostgresVideoRepository) AppendWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return wrapStorageErr("append watch history", err)
	}

	return nil
}

// WatchHistory lists the user's watched videos, most recently watched first,
// each joined with its owner projection.
func (r *PostgresVideoRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoWithOwnerColumns+`, h.watched_at
        FROM watch_history h
        JOIN videos v ON v.id = h.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE h.user_id = $1
        ORDER BY h.watched_at DESC
    `, userID)
	if err != nil {
		return nil, wrapStorageErr("query watch history", err)
	}
	defer rows.Close()

	var entries []models.WatchHistoryEntry
	for rows.Next() {
		var entry models.WatchHistoryEntry
		v := &entry.Video
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.Thumbnail,
			&v.Views, &v.Published, &v.CreatedAt, &v.UpdatedAt,
			&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.Avatar, &entry.WatchedAt); err != nil {
			return nil, wrapStorageErr("scan watch history entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate watch history", err)
	}

	return entries, nil
}

func scanVideoWithOwner(row pgx.Row) (models.VideoWithOwner, error) {
	var v models.VideoWithOwner
	err := row.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.VideoURL, &v.Thumbnail,
		&v.Views, &v.Published, &v.CreatedAt, &v.UpdatedAt,
		&v.Owner.ID, &v.Owner.Username, &v.Owner.FullName, &v.Owner.Avatar)
	return v, err
}

func scanVideosWithOwner(rows pgx.Rows) ([]models.VideoWithOwner, error) {
	var videos []models.VideoWithOwner
	for rows.Next() {
		video, err := scanVideoWithOwner(rows)
		if err != nil {
			return nil, wrapStorageErr("scan video", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate videos", err)
	}
	return videos, nil
}
