package handlers

import (
	"context"
	"io"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/models"
)

// SessionManager drives the credential and session lifecycle used by the user
// handlers.
type SessionManager interface {
	Register(ctx context.Context, params auth.RegisterParams) (models.PublicUser, error)
	Login(ctx context.Context, identifier, password string) (models.PublicUser, models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// UserDirectory resolves and updates account records for the profile
// endpoints.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, avatar, coverImage *string) (models.User, error)
}

// ToggleService flips relationship edges.
type ToggleService interface {
	Toggle(ctx context.Context, actorID, targetID string, kind engagement.TargetKind) (engagement.ToggleResult, error)
}

// EngagementStore serves the joined listings derived from relationship edges.
type EngagementStore interface {
	Subscribers(ctx context.Context, channelID string) ([]models.SubscriptionEntry, error)
	SubscribedTo(ctx context.Context, subscriberID string) ([]models.SubscriptionEntry, error)
	LikedVideos(ctx context.Context, actorID string) ([]models.VideoWithOwner, error)
}

// ChannelStore serves the derived channel views.
type ChannelStore interface {
	Stats(ctx context.Context, channelID string) (models.ChannelStats, error)
	Profile(ctx context.Context, username, requesterID string) (models.ChannelProfile, error)
	Videos(ctx context.Context, channelID string) ([]models.VideoWithOwner, error)
}

// VideoStore captures persistence for the video endpoints, including the
// per-account watch history.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.VideoWithOwner, error)
	List(ctx context.Context, search, ownerID string, limit, offset int) ([]models.VideoWithOwner, error)
	Update(ctx context.Context, id string, title, description, thumbnail *string) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for short standalone posts.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id string, name, description *string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// MediaStorage persists uploaded assets and returns their public URLs.
type MediaStorage interface {
	Save(ctx context.Context, name string, body io.Reader) (string, error)
}

// MediaRemover is implemented by media stores that can also remove assets.
// Handlers use it to clean up replaced uploads.
type MediaRemover interface {
	Delete(ctx context.Context, url string) error
}
