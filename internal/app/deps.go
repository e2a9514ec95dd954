package app

import (
	"context"
	"strings"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. Media storage is optional in development: with no bucket
// configured, upload endpoints fail per-request instead of blocking startup.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := repositories.NewPostgresUserRepository(pool)
	edges := repositories.NewPostgresEngagementRepository(pool)

	var media handlers.MediaStorage
	if strings.TrimSpace(cfg.ObjectStore.Bucket) != "" {
		store, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		media = store
	}

	return handlers.Dependencies{
		Sessions:  auth.NewManager(users, issuer),
		Users:     users,
		Toggles:   engagement.NewService(edges),
		Edges:     edges,
		Channels:  repositories.NewPostgresChannelRepository(pool),
		Videos:    repositories.NewPostgresVideoRepository(pool),
		Comments:  repositories.NewPostgresCommentRepository(pool),
		Tweets:    repositories.NewPostgresTweetRepository(pool),
		Playlists: repositories.NewPostgresPlaylistRepository(pool),
		Media:     media,
		Verifier:  issuer,
		Limiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}, nil
}
