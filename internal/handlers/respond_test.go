package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/videotube/backend/internal/auth"
)

func TestRespondErrorEnvelopeShape(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(context.Background(), rec, auth.ErrInvalidToken)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}

	var body struct {
		StatusCode int             `json:"statusCode"`
		Data       json.RawMessage `json:"data"`
		Message    string          `json:"message"`
		Success    bool            `json:"success"`
		Errors     []string        `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode failure body: %v", err)
	}
	if body.StatusCode != http.StatusUnauthorized || body.Success {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	// Failure bodies carry an explicit null, not an omitted field.
	if string(body.Data) != "null" {
		t.Fatalf("data = %s, want null", body.Data)
	}
	if len(body.Errors) != 1 || body.Errors[0] != body.Message {
		t.Fatalf("errors = %v, want [%q]", body.Errors, body.Message)
	}
}
