package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// PostgresChannelRepository serves the derived channel views: the public
// profile, the dashboard counters, and the channel's own video listing.
type PostgresChannelRepository struct {
	pool db.Pool
}

// NewPostgresChannelRepository constructs a channel repository backed by
// PostgreSQL.
func NewPostgresChannelRepository(pool db.Pool) *PostgresChannelRepository {
	return &PostgresChannelRepository{pool: pool}
}

// Stats computes the dashboard counters for a channel. Each counter is an
// independent read; under concurrent writes the four values may reflect
// slightly different moments. Like totals count only edges whose video still
// exists, so dangling edges never inflate the result.
func (r *PostgresChannelRepository) Stats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.ChannelStats

	row := conn.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(views), 0)
        FROM videos WHERE owner_id = $1
    `, channelID)
	if err := row.Scan(&stats.TotalVideos, &stats.TotalViews); err != nil {
		return models.ChannelStats{}, wrapStorageErr("count videos", err)
	}

	row = conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM engagement_edges
        WHERE target_id = $1 AND kind = 'channel'
    `, channelID)
	if err := row.Scan(&stats.TotalSubscribers); err != nil {
		return models.ChannelStats{}, wrapStorageErr("count subscribers", err)
	}

	row = conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM engagement_edges
        WHERE kind = 'video'
          AND target_id IN (SELECT id FROM videos WHERE owner_id = $1)
    `, channelID)
	if err := row.Scan(&stats.TotalLikes); err != nil {
		return models.ChannelStats{}, wrapStorageErr("count likes", err)
	}

	return stats, nil
}

// Profile fetches the public channel page by username, with subscription
// counts and whether the requester subscribes to the channel. An empty
// requesterID resolves isSubscribed to false.
func (r *PostgresChannelRepository) Profile(ctx context.Context, username, requesterID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var profile models.ChannelProfile
	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, u.cover_image_url, u.created_at,
               (SELECT COUNT(*) FROM engagement_edges WHERE target_id = u.id AND kind = 'channel'),
               (SELECT COUNT(*) FROM engagement_edges WHERE actor_id = u.id AND kind = 'channel'),
               EXISTS (
                   SELECT 1 FROM engagement_edges
                   WHERE actor_id = $2 AND target_id = u.id AND kind = 'channel'
               )
        FROM users u
        WHERE lower(u.username) = lower($1)
    `, username, requesterID)
	if err := row.Scan(&profile.ID, &profile.Username, &profile.FullName, &profile.Avatar,
		&profile.CoverImage, &profile.CreatedAt,
		&profile.SubscriberCount, &profile.SubscribedTo, &profile.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, wrapStorageErr("select channel profile", err)
	}

	return profile, nil
}

// Videos lists every video owned by the channel, newest first, including
// unpublished ones. Visibility filtering is the caller's concern.
func (r *PostgresChannelRepository) Videos(ctx context.Context, channelID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoWithOwnerColumns+`
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE v.owner_id = $1
        ORDER BY v.created_at DESC
    `, channelID)
	if err != nil {
		return nil, wrapStorageErr("query channel videos", err)
	}
	defer rows.Close()

	return scanVideosWithOwner(rows)
}
