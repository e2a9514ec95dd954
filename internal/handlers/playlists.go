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

// PlaylistHandler implements playlist endpoints. Membership mutations are
// gated on playlist ownership.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, fmt.Errorf("%w: name is required", auth.ErrValidation))
		return
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     identity.UserID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created")
}

// Get handles GET /api/v1/playlists/{id}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue("id"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched")
}

// ListForUser handles GET /api/v1/playlists/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlists, err := h.Playlists.ListForOwner(ctx, r.PathValue("userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched")
}

// Update handles PATCH /api/v1/playlists/{id}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	if req.Name == nil && req.Description == nil {
		respondError(ctx, w, fmt.Errorf("%w: no fields to update", auth.ErrValidation))
		return
	}

	if err := h.Playlists.Update(ctx, playlist.ID, req.Name, req.Description); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "playlist updated")
}

// Delete handles DELETE /api/v1/playlists/{id}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted")
}

// AddVideo handles POST /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video added to playlist")
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.ownedPlaylist(r, "id")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, r.PathValue("videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "video removed from playlist")
}

func (h PlaylistHandler) ownedPlaylist(r *http.Request, param string) (models.Playlist, error) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return models.Playlist{}, auth.ErrInvalidToken
	}

	playlist, err := h.Playlists.FindByID(ctx, r.PathValue(param))
	if err != nil {
		return models.Playlist{}, err
	}

	if err := content.RequireOwner(playlist.OwnerID, identity.UserID); err != nil {
		return models.Playlist{}, err
	}

	return playlist, nil
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
