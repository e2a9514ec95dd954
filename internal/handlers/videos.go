package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/content"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// VideoHandler implements the video content endpoints. Mutations are gated on
// ownership; reads increment views and feed the caller's watch history.
type VideoHandler struct {
	Videos VideoStore
	Media  MediaStorage
}

// Create handles POST /api/v1/videos: multipart form data carrying the video
// file, a thumbnail, and text metadata.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form data", auth.ErrValidation))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, fmt.Errorf("%w: title is required", auth.ErrValidation))
		return
	}

	videoURL, err := h.upload(r, "video")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbnailURL, err := h.upload(r, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     identity.UserID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		VideoURL:    videoURL,
		Thumbnail:   thumbnailURL,
		Published:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "ownerId", identity.UserID)
	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// List handles GET /api/v1/videos with optional query, userId, page, and
// limit parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 20)
	page := queryInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}

	videos, err := h.Videos.List(ctx, q.Get("query"), q.Get("userId"), limit, (page-1)*limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "videos fetched")
}

// Get handles GET /api/v1/videos/{id}. A successful read bumps the view
// counter; when the caller is authenticated it also lands in their watch
// history. Neither side effect may fail the read itself.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	id := r.PathValue("id")
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.IncrementViews(ctx, id); err != nil {
		logger.Warn("increment views failed", "videoId", id, "error", err)
	} else {
		video.Views++
	}

	if identity, ok := auth.IdentityFromContext(ctx); ok {
		if err := h.Videos.AppendWatchHistory(ctx, identity.UserID, id); err != nil {
			logger.Warn("append watch history failed", "videoId", id, "userId", identity.UserID, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched")
}

// Update handles PATCH /api/v1/videos/{id}. Only the owner may update; a
// non-owner gets 403 regardless of what they tried to change.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, identity, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	if req.Title == nil && req.Description == nil {
		respondError(ctx, w, fmt.Errorf("%w: no fields to update", auth.ErrValidation))
		return
	}

	if err := h.Videos.Update(ctx, video.ID, req.Title, req.Description, nil); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video updated", "videoId", video.ID, "ownerId", identity.UserID)
	respondData(ctx, w, http.StatusOK, updated, "video updated")
}

// UpdateThumbnail handles PATCH /api/v1/videos/{id}/thumbnail with a
// multipart file.
func (h VideoHandler) UpdateThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, _, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form data", auth.ErrValidation))
		return
	}

	url, err := h.upload(r, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Update(ctx, video.ID, nil, nil, &url); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "thumbnail updated")
}

// TogglePublish handles PATCH /api/v1/videos/{id}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, _, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.SetPublished(ctx, video.ID, !video.Published); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]bool{"published": !video.Published}, "publish status toggled")
}

// Delete handles DELETE /api/v1/videos/{id}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, identity, err := h.ownedVideo(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video deleted", "videoId", video.ID, "ownerId", identity.UserID)
	respondData(ctx, w, http.StatusOK, nil, "video deleted")
}

// ownedVideo loads the target video and enforces that the caller owns it.
func (h VideoHandler) ownedVideo(r *http.Request) (models.VideoWithOwner, auth.Identity, error) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return models.VideoWithOwner{}, auth.Identity{}, auth.ErrInvalidToken
	}

	video, err := h.Videos.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		return models.VideoWithOwner{}, identity, err
	}

	if err := content.RequireOwner(video.OwnerID, identity.UserID); err != nil {
		return models.VideoWithOwner{}, identity, err
	}

	return video, identity, nil
}

func (h VideoHandler) upload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", fmt.Errorf("%w: %s file is required", auth.ErrValidation, field)
		}
		return "", fmt.Errorf("%w: could not read %s upload", auth.ErrValidation, field)
	}
	defer file.Close()

	return saveMedia(r, h.Media, field, file, header)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
