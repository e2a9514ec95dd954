package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
)

// AccessVerifier validates bearer access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*auth.AccessClaims, error)
}

// Authenticate rejects requests that carry no valid access token and scopes
// the caller's identity into the request context for downstream handlers.
func Authenticate(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logging.FromContext(r.Context()).Warn("missing access token", "path", r.URL.Path)
				writeUnauthorized(r.Context(), w, "authentication required")
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("invalid access token", "path", r.URL.Path, "error", err)
				writeUnauthorized(r.Context(), w, "invalid or expired access token")
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{
				UserID:   claims.Subject,
				Username: claims.Username,
				Email:    claims.Email,
				FullName: claims.FullName,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthenticate scopes the caller's identity into the context when a
// valid access token is present, and passes the request through anonymously
// otherwise. Public reads use it to personalize their responses.
func OptionalAuthenticate(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := verifier.VerifyAccess(token); err == nil {
					ctx := auth.WithIdentity(r.Context(), auth.Identity{
						UserID:   claims.Subject,
						Username: claims.Username,
						Email:    claims.Email,
						FullName: claims.FullName,
					})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized emits the same failure envelope the handlers use. The
// handlers package imports this one, so the shape is duplicated here rather
// than shared.
func writeUnauthorized(ctx context.Context, w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := struct {
		StatusCode int      `json:"statusCode"`
		Data       any      `json:"data"`
		Message    string   `json:"message"`
		Success    bool     `json:"success"`
		Errors     []string `json:"errors"`
	}{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
		Success:    false,
		Errors:     []string{message},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", http.StatusUnauthorized, "error", err)
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(after)
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
