package auth

import (
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
)

func testUser() models.User {
	return models.User{
		ID:       "user-1",
		Username: "ana",
		Email:    "a@x.com",
		FullName: "Ana Example",
	}
}

func TestTokenIssuerIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	tokens, err := issuer.IssuePair(testUser())
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	access, err := issuer.VerifyAccess(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if access.Subject != "user-1" || access.Username != "ana" || access.Email != "a@x.com" {
		t.Fatalf("unexpected access claims: %+v", access)
	}

	refresh, err := issuer.VerifyRefresh(tokens.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if refresh.Subject != "user-1" {
		t.Fatalf("unexpected refresh subject: %q", refresh.Subject)
	}
}

func TestTokenIssuerRejectsCrossKindTokens(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	tokens, err := issuer.IssuePair(testUser())
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := issuer.VerifyAccess(tokens.RefreshToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken verifying refresh token as access, got %v", err)
	}
	if _, err := issuer.VerifyRefresh(tokens.AccessToken); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken verifying access token as refresh, got %v", err)
	}
}

func TestTokenIssuerVerifyFailures(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	other := NewTokenIssuer("other-access", "other-refresh", time.Minute, time.Hour)

	forged, _, err := other.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"wrongSignature", forged},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := issuer.VerifyAccess(tc.token); err != ErrInvalidToken {
				t.Fatalf("expected ErrInvalidToken got %v", err)
			}
		})
	}
}

func TestTokenIssuerExpiry(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issuedAt }

	token, _, err := issuer.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	issuer.now = func() time.Time { return issuedAt.Add(30 * time.Second) }
	if _, err := issuer.VerifyAccess(token); err != nil {
		t.Fatalf("token should still verify before expiry: %v", err)
	}

	issuer.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := issuer.VerifyAccess(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}
