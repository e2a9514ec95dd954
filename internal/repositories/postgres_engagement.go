package repositories

import (
	"context"
	"fmt"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/models"
)

// PostgresEngagementRepository persists relationship edges and serves the
// joined listings derived from them.
type PostgresEngagementRepository struct {
	pool db.Pool
}

// NewPostgresEngagementRepository constructs an engagement repository backed
// by PostgreSQL.
func NewPostgresEngagementRepository(pool db.Pool) *PostgresEngagementRepository {
	return &PostgresEngagementRepository{pool: pool}
}

// Insert stores the edge unless its (actor, target, kind) tuple already
// exists. The unique constraint makes this an atomic insert-if-absent:
// concurrent toggles on the same tuple cannot both insert.
func (r *PostgresEngagementRepository) Insert(ctx context.Context, edge engagement.Edge) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO engagement_edges (id, actor_id, target_id, kind, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (actor_id, target_id, kind) DO NOTHING
    `, edge.ID, edge.ActorID, edge.TargetID, string(edge.Kind), edge.CreatedAt)
	if err != nil {
		return false, wrapStorageErr("insert edge", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Delete removes the edge for the tuple, reporting whether one existed.
func (r *PostgresEngagementRepository) Delete(ctx context.Context, actorID, targetID string, kind engagement.TargetKind) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM engagement_edges
        WHERE actor_id = $1 AND target_id = $2 AND kind = $3
    `, actorID, targetID, string(kind))
	if err != nil {
		return false, wrapStorageErr("delete edge", err)
	}

	return tag.RowsAffected() == 1, nil
}

// Subscribers lists the accounts subscribed to a channel, newest edge first,
// projecting only the safe field subset.
func (r *PostgresEngagementRepository) Subscribers(ctx context.Context, channelID string) ([]models.SubscriptionEntry, error) {
	return r.listEntries(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, e.created_at
        FROM engagement_edges e
        JOIN users u ON u.id = e.actor_id
        WHERE e.target_id = $1 AND e.kind = 'channel'
        ORDER BY e.created_at DESC
    `, channelID)
}

// SubscribedTo lists the channels an account subscribes to, newest edge
// first.
func (r *PostgresEngagementRepository) SubscribedTo(ctx context.Context, subscriberID string) ([]models.SubscriptionEntry, error) {
	return r.listEntries(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar_url, e.created_at
        FROM engagement_edges e
        JOIN users u ON u.id = e.target_id
        WHERE e.actor_id = $1 AND e.kind = 'channel'
        ORDER BY e.created_at DESC
    `, subscriberID)
}

func (r *PostgresEngagementRepository) listEntries(ctx context.Context, query, id string) ([]models.SubscriptionEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, id)
	if err != nil {
		return nil, wrapStorageErr("query subscription entries", err)
	}
	defer rows.Close()

	var entries []models.SubscriptionEntry
	for rows.Next() {
		var entry models.SubscriptionEntry
		if err := rows.Scan(&entry.User.ID, &entry.User.Username, &entry.User.FullName, &entry.User.Avatar, &entry.SubscribedAt); err != nil {
			return nil, wrapStorageErr("scan subscription entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapStorageErr("iterate subscription entries", err)
	}

	return entries, nil
}

// LikedVideos collects the videos an account has liked, joined with their
// owners, newest video first. Edges whose target has been deleted drop out
// of the join silently.
func (r *PostgresEngagementRepository) LikedVideos(ctx context.Context, actorID string) ([]models.VideoWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.thumbnail_url,
               v.views, v.published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar_url
        FROM engagement_edges e
        JOIN videos v ON v.id = e.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE e.actor_id = $1 AND e.kind = 'video'
        ORDER BY v.created_at DESC
    `, actorID)
	if err != nil {
		return nil, wrapStorageErr("query liked videos", err)
	}
	defer rows.Close()

	return scanVideosWithOwner(rows)
}

var _ engagement.EdgeStore = (*PostgresEngagementRepository)(nil)
