package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions  SessionManager
	Users     UserDirectory
	Toggles   ToggleService
	Edges     EngagementStore
	Channels  ChannelStore
	Videos    VideoStore
	Comments  CommentStore
	Tweets    TweetStore
	Playlists PlaylistStore
	Media     MediaStorage
	Verifier  middleware.AccessVerifier
	Limiter   RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Sessions: deps.Sessions, Users: deps.Users, Videos: deps.Videos, Media: deps.Media, Limiter: deps.Limiter}
	subs := SubscriptionHandler{Toggles: deps.Toggles, Edges: deps.Edges}
	likes := LikeHandler{Toggles: deps.Toggles, Edges: deps.Edges}
	channels := ChannelHandler{Channels: deps.Channels}
	dashboard := DashboardHandler{Channels: deps.Channels}
	videos := VideoHandler{Videos: deps.Videos, Media: deps.Media}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	tweets := TweetHandler{Tweets: deps.Tweets}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos}

	authed := middleware.Authenticate(deps.Verifier)
	optional := middleware.OptionalAuthenticate(deps.Verifier)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	public := func(h http.HandlerFunc) http.Handler { return optional(h) }

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/users/register", users.Register)
	mux.HandleFunc("POST /api/v1/users/login", users.Login)
	mux.HandleFunc("POST /api/v1/users/refresh", users.Refresh)
	mux.Handle("POST /api/v1/users/logout", protect(users.Logout))
	mux.Handle("POST /api/v1/users/change-password", protect(users.ChangePassword))
	mux.Handle("GET /api/v1/users/me", protect(users.Me))
	mux.Handle("PATCH /api/v1/users/me", protect(users.UpdateProfile))
	mux.Handle("PATCH /api/v1/users/me/avatar", protect(users.UpdateAvatar))
	mux.Handle("PATCH /api/v1/users/me/cover-image", protect(users.UpdateCoverImage))
	mux.Handle("GET /api/v1/users/me/history", protect(users.WatchHistory))

	mux.Handle("POST /api/v1/subscriptions/{channelId}", protect(subs.Toggle))
	mux.Handle("GET /api/v1/subscriptions/{channelId}/subscribers", public(subs.Subscribers))
	mux.Handle("GET /api/v1/subscriptions/me", protect(subs.Subscribed))

	mux.Handle("POST /api/v1/likes/videos/{id}", protect(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/comments/{id}", protect(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/tweets/{id}", protect(likes.ToggleTweet))
	mux.Handle("GET /api/v1/likes/videos", protect(likes.LikedVideos))

	mux.Handle("GET /api/v1/channels/{username}", public(channels.Profile))
	mux.Handle("GET /api/v1/channels/{username}/videos", public(channels.Videos))
	mux.Handle("GET /api/v1/dashboard/stats", protect(dashboard.Stats))
	mux.Handle("GET /api/v1/dashboard/videos", protect(dashboard.Videos))

	mux.Handle("POST /api/v1/videos", protect(videos.Create))
	mux.Handle("GET /api/v1/videos", public(videos.List))
	mux.Handle("GET /api/v1/videos/{id}", public(videos.Get))
	mux.Handle("PATCH /api/v1/videos/{id}", protect(videos.Update))
	mux.Handle("PATCH /api/v1/videos/{id}/thumbnail", protect(videos.UpdateThumbnail))
	mux.Handle("PATCH /api/v1/videos/{id}/publish", protect(videos.TogglePublish))
	mux.Handle("DELETE /api/v1/videos/{id}", protect(videos.Delete))

	mux.Handle("POST /api/v1/videos/{id}/comments", protect(comments.Create))
	mux.Handle("GET /api/v1/videos/{id}/comments", public(comments.List))
	mux.Handle("PATCH /api/v1/comments/{id}", protect(comments.Update))
	mux.Handle("DELETE /api/v1/comments/{id}", protect(comments.Delete))

	mux.Handle("POST /api/v1/tweets", protect(tweets.Create))
	mux.Handle("GET /api/v1/tweets/user/{userId}", public(tweets.ListForUser))
	mux.Handle("PATCH /api/v1/tweets/{id}", protect(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{id}", protect(tweets.Delete))

	mux.Handle("POST /api/v1/playlists", protect(playlists.Create))
	mux.Handle("GET /api/v1/playlists/{id}", public(playlists.Get))
	mux.Handle("GET /api/v1/playlists/user/{userId}", public(playlists.ListForUser))
	mux.Handle("PATCH /api/v1/playlists/{id}", protect(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{id}", protect(playlists.Delete))
	mux.Handle("POST /api/v1/playlists/{id}/videos/{videoId}", protect(playlists.AddVideo))
	mux.Handle("DELETE /api/v1/playlists/{id}/videos/{videoId}", protect(playlists.RemoveVideo))
}
