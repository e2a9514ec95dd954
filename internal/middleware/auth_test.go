package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/videotube/backend/internal/auth"
)

type stubVerifier struct {
	claims *auth.AccessClaims
	err    error
}

func (s stubVerifier) VerifyAccess(string) (*auth.AccessClaims, error) {
	return s.claims, s.err
}

func claimsFor(userID, username string) *auth.AccessClaims {
	return &auth.AccessClaims{
		Username:         username,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
}

type failureEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) failureEnvelope {
	t.Helper()
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}
	var envelope failureEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode failure body: %v", err)
	}
	return envelope
}

func TestAuthenticateMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run without a token")
	})
	handler := Authenticate(stubVerifier{})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
	envelope := decodeFailure(t, rec)
	if envelope.StatusCode != http.StatusUnauthorized || envelope.Success {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if string(envelope.Data) != "null" {
		t.Fatalf("data = %s, want null", envelope.Data)
	}
	if len(envelope.Errors) != 1 || envelope.Errors[0] != envelope.Message {
		t.Fatalf("errors = %v, want [%q]", envelope.Errors, envelope.Message)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	handler := Authenticate(stubVerifier{err: errors.New("signature mismatch")})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next handler must not run with an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
	envelope := decodeFailure(t, rec)
	if envelope.Message != "invalid or expired access token" {
		t.Fatalf("unexpected message %q", envelope.Message)
	}
	if string(envelope.Data) != "null" {
		t.Fatalf("data = %s, want null", envelope.Data)
	}
}

func TestAuthenticatePassesIdentity(t *testing.T) {
	var seen auth.Identity
	handler := Authenticate(stubVerifier{claims: claimsFor("user-1", "ana")})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			t.Fatal("expected identity in context")
		}
		seen = identity
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected %d got %d", http.StatusNoContent, rec.Code)
	}
	if seen.UserID != "user-1" || seen.Username != "ana" {
		t.Fatalf("unexpected identity %+v", seen)
	}
}

func TestOptionalAuthenticate(t *testing.T) {
	run := func(verifier AccessVerifier, req *http.Request) (auth.Identity, bool) {
		var (
			identity auth.Identity
			found    bool
		)
		handler := OptionalAuthenticate(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, found = auth.IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
		}
		return identity, found
	}

	// Anonymous requests pass through without an identity.
	if _, found := run(stubVerifier{}, httptest.NewRequest(http.MethodGet, "/api/v1/channels/ada", nil)); found {
		t.Fatal("anonymous request must carry no identity")
	}

	// A bad token degrades to anonymous rather than rejecting.
	badReq := httptest.NewRequest(http.MethodGet, "/api/v1/channels/ada", nil)
	badReq.Header.Set("Authorization", "Bearer stale")
	if _, found := run(stubVerifier{err: errors.New("expired")}, badReq); found {
		t.Fatal("invalid token must degrade to anonymous")
	}

	goodReq := httptest.NewRequest(http.MethodGet, "/api/v1/channels/ada", nil)
	goodReq.Header.Set("Authorization", "Bearer good-token")
	identity, found := run(stubVerifier{claims: claimsFor("user-1", "ana")}, goodReq)
	if !found || identity.UserID != "user-1" {
		t.Fatalf("expected identity for valid token, got %+v found=%v", identity, found)
	}
}
