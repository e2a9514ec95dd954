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

// CommentHandler implements comment endpoints. Mutations are gated on
// comment ownership.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
}

// Create handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	text := strings.TrimSpace(req.Content)
	if text == "" {
		respondError(ctx, w, fmt.Errorf("%w: content is required", auth.ErrValidation))
		return
	}

	videoID := r.PathValue("id")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   identity.UserID,
		VideoID:   videoID,
		Content:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added")
}

// List handles GET /api/v1/videos/{id}/comments with page and limit
// parameters.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 20)
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}

	comments, err := h.Comments.ListForVideo(ctx, r.PathValue("id"), limit, (page-1)*limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "comments fetched")
}

// Update handles PATCH /api/v1/comments/{id}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	text := strings.TrimSpace(req.Content)
	if text == "" {
		respondError(ctx, w, fmt.Errorf("%w: content is required", auth.ErrValidation))
		return
	}

	if err := h.Comments.Update(ctx, comment.ID, text); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment.Content = text
	respondData(ctx, w, http.StatusOK, comment, "comment updated")
}

// Delete handles DELETE /api/v1/comments/{id}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comment, err := h.ownedComment(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted")
}

func (h CommentHandler) ownedComment(r *http.Request) (models.Comment, error) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return models.Comment{}, auth.ErrInvalidToken
	}

	comment, err := h.Comments.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		return models.Comment{}, err
	}

	if err := content.RequireOwner(comment.OwnerID, identity.UserID); err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

type commentRequest struct {
	Content string `json:"content"`
}
