package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/engagement"
)

// LikeHandler implements like toggles across target kinds and the liked-video
// listing.
type LikeHandler struct {
	Toggles ToggleService
	Edges   EngagementStore
}

// ToggleVideo handles POST /api/v1/likes/videos/{id}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindVideo)
}

// ToggleComment handles POST /api/v1/likes/comments/{id}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindComment)
}

// ToggleTweet handles POST /api/v1/likes/tweets/{id}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind engagement.TargetKind) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	result, err := h.Toggles.Toggle(ctx, identity.UserID, r.PathValue("id"), kind)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	message := "liked"
	if result == engagement.Deleted {
		message = "unliked"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"liked": result == engagement.Created}, message)
}

// LikedVideos handles GET /api/v1/likes/videos: every video the caller has
// liked, joined with its owner. Likes on deleted videos drop out silently.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	videos, err := h.Edges.LikedVideos(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched")
}
