package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/content"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

// apiResponse is the envelope wrapped around every JSON body the API returns.
type apiResponse struct {
	StatusCode int      `json:"statusCode"`
	Data       any      `json:"data"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "message", payload.Message)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "message", payload.Message)
	}
}

func respondData(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	respondJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Internal detail stays in the logs.
		message = "internal server error"
		logging.FromContext(ctx).Error("unhandled request error", "error", err)
	}
	respondJSON(ctx, w, status, apiResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     []string{message},
	})
}

// statusForError maps domain sentinels onto HTTP statuses. A storage timeout
// surfaces as 503, never as a not-found, and a non-owner mutation surfaces as
// 403, never as a not-found.
func statusForError(err error) int {
	switch {
	case errors.Is(err, auth.ErrValidation),
		errors.Is(err, engagement.ErrInvalidTarget),
		errors.Is(err, engagement.ErrSelfSubscription):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, content.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrDuplicateUser),
		errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, repositories.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondTooManyRequests(ctx context.Context, w http.ResponseWriter) {
	respondJSON(ctx, w, http.StatusTooManyRequests, apiResponse{
		StatusCode: http.StatusTooManyRequests,
		Message:    "too many requests",
		Success:    false,
		Errors:     []string{"too many requests"},
	})
}

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
