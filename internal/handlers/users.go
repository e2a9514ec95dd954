package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/mail"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
)

const maxUploadBytes = 32 << 20

// UserHandler implements registration, session, and profile endpoints.
type UserHandler struct {
	Sessions SessionManager
	Users    UserDirectory
	Videos   VideoStore
	Media    MediaStorage
	Limiter  RateLimiter
}

// Register handles POST /api/v1/users/register. The payload is multipart
// form data: text fields plus an avatar file and an optional cover image.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondTooManyRequests(ctx, w)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid registration payload", "error", err)
		respondError(ctx, w, fmt.Errorf("%w: expected multipart form data", auth.ErrValidation))
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			respondError(ctx, w, fmt.Errorf("%w: invalid email address", auth.ErrValidation))
			return
		}
	}

	params := auth.RegisterParams{
		FullName: r.FormValue("fullName"),
		Email:    email,
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	avatarURL, err := h.saveUpload(r, "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	params.AvatarURL = avatarURL

	coverURL, err := h.saveUpload(r, "coverImage")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		respondError(ctx, w, err)
		return
	}
	params.CoverImage = coverURL

	user, err := h.Sessions.Register(ctx, params)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	respondData(ctx, w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login. The identifier may be a username
// or an email address.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "login") {
		respondTooManyRequests(ctx, w)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, loginResponse{User: user, Tokens: tokens}, "logged in successfully")
}

// Refresh handles POST /api/v1/users/refresh. The refresh token is read from
// the session cookie, falling back to the request body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := ""
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if strings.TrimSpace(token) == "" {
		respondError(ctx, w, fmt.Errorf("%w: refresh token is required", auth.ErrValidation))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, tokens, "session refreshed")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	if err := h.Sessions.Logout(ctx, identity.UserID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "logged out successfully")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}

	if err := h.Sessions.ChangePassword(ctx, identity.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// Me handles GET /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	user, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, user.Public(), "current user fetched")
}

// UpdateProfile handles PATCH /api/v1/users/me. Text fields arrive as JSON;
// avatar and cover image changes go through the upload endpoints.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, fmt.Errorf("%w: invalid request body", auth.ErrValidation))
		return
	}
	if req.FullName == nil {
		respondError(ctx, w, fmt.Errorf("%w: no fields to update", auth.ErrValidation))
		return
	}

	user, err := h.Users.UpdateProfile(ctx, identity.UserID, req.FullName, nil, nil)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, user.Public(), "profile updated")
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar with a multipart file.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCoverImage handles PATCH /api/v1/users/me/cover-image with a
// multipart file.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
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

	current, err := h.Users.FindByID(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	url, err := h.saveUpload(r, field)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var avatar, cover *string
	previous := current.CoverImage
	if field == "avatar" {
		avatar = &url
		previous = current.Avatar
	} else {
		cover = &url
	}

	user, err := h.Users.UpdateProfile(ctx, identity.UserID, nil, avatar, cover)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	// The replaced asset is orphaned; removal is best effort.
	if remover, ok := h.Media.(MediaRemover); ok && previous != "" && previous != url {
		if err := remover.Delete(ctx, previous); err != nil {
			logging.FromContext(ctx).Warn("delete replaced upload", "field", field, "url", previous, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, user.Public(), field+" updated")
}

// WatchHistory handles GET /api/v1/users/me/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	history, err := h.Videos.WatchHistory(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, history, "watch history fetched")
}

// saveUpload streams the named multipart file into media storage and returns
// its public URL. A missing required file maps to a validation error;
// callers that treat the field as optional check for http.ErrMissingFile.
func (h UserHandler) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		if field == "avatar" {
			return "", fmt.Errorf("%w: %s file is required", auth.ErrValidation, field)
		}
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%w: could not read %s upload", auth.ErrValidation, field)
	}
	defer file.Close()

	return saveMedia(r, h.Media, field, file, header)
}

func saveMedia(r *http.Request, media MediaStorage, field string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if media == nil {
		return "", errors.New("media storage unavailable")
	}
	name := fmt.Sprintf("%s/%s%s", field, uuid.NewString(), path.Ext(header.Filename))
	url, err := media.Save(r.Context(), name, file)
	if err != nil {
		return "", fmt.Errorf("store %s upload: %w", field, err)
	}
	return url, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User   any `json:"user"`
	Tokens any `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	FullName *string `json:"fullName"`
}
