package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/content"
	"github.com/videotube/backend/internal/models"
)

// TweetHandler implements short-post endpoints.
type TweetHandler struct {
	Tweets TweetStore
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	text := strings.TrimSpace(req.Content)
	if text == "" {
		respondError(ctx, w, fmt.Errorf("%w: content is required", auth.ErrValidation))
		return
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   identity.UserID,
		Content:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet posted")
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweets, err := h.Tweets.ListForOwner(ctx, r.PathValue("userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "tweets fetched")
}

// Update handles PATCH /api/v1/tweets/{id}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	text := strings.TrimSpace(req.Content)
	if text == "" {
		respondError(ctx, w, fmt.Errorf("%w: content is required", auth.ErrValidation))
		return
	}

	if err := h.Tweets.Update(ctx, tweet.ID, text); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet.Content = text
	respondData(ctx, w, http.StatusOK, tweet, "tweet updated")
}

// Delete handles DELETE /api/v1/tweets/{id}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tweet, err := h.ownedTweet(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "tweet deleted")
}

func (h TweetHandler) ownedTweet(r *http.Request) (models.Tweet, error) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return models.Tweet{}, auth.ErrInvalidToken
	}

	tweet, err := h.Tweets.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		return models.Tweet{}, err
	}

	if err := content.RequireOwner(tweet.OwnerID, identity.UserID); err != nil {
		return models.Tweet{}, err
	}

	return tweet, nil
}

type tweetRequest struct {
	Content string `json:"content"`
}
