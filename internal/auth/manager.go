package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// UserStore persists accounts and their single-slot refresh token. The
// rotation method must be a conditional write: the stored token is replaced
// only when it byte-equals the presented one.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	SetRefreshToken(ctx context.Context, id, token string) error
	RotateRefreshToken(ctx context.Context, id, current, next string) error
	ClearRefreshToken(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
}

// RegisterParams carries the validated-at-the-edge registration input. Avatar
// and cover image are object-store URLs produced by the upload collaborator
// and stored verbatim.
type RegisterParams struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	AvatarURL  string
	CoverImage string
}

// Manager orchestrates the credential and session lifecycle: registration,
// login, token rotation, logout, and password changes. It holds no mutable
// state of its own; every session fact lives on the user record.
type Manager struct {
	users  UserStore
	tokens *TokenIssuer

	now func() time.Time
}

// NewManager constructs a Manager over the given store and token issuer.
func NewManager(users UserStore, tokens *TokenIssuer) *Manager {
	if users == nil || tokens == nil {
		panic("auth: manager requires a user store and a token issuer")
	}
	return &Manager{
		users:  users,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account. Username and email are case-normalized;
// duplicates yield ErrDuplicateUser. The returned projection never contains
// the password hash or a refresh token.
func (m *Manager) Register(ctx context.Context, params RegisterParams) (models.PublicUser, error) {
	ctx, span := logging.StartSpan(ctx, "auth.register")
	defer span.End()

	fullName := strings.TrimSpace(params.FullName)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.ToLower(strings.TrimSpace(params.Username))
	avatar := strings.TrimSpace(params.AvatarURL)

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(params.Password) == "" {
		return models.PublicUser{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if avatar == "" {
		return models.PublicUser{}, fmt.Errorf("%w: avatar is required", ErrValidation)
	}

	hash, err := HashPassword(params.Password)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	now := m.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   hash,
		Avatar:     avatar,
		CoverImage: strings.TrimSpace(params.CoverImage),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := m.users.Create(ctx, user); err != nil {
		return models.PublicUser{}, err
	}

	return user.Public(), nil
}

// Login authenticates by username or email plus password. On success it
// issues a fresh token pair and overwrites the stored refresh token,
// invalidating any previously issued refresh token for the account.
func (m *Manager) Login(ctx context.Context, identifier, password string) (models.PublicUser, models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.login")
	defer span.End()

	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return models.PublicUser{}, models.SessionTokens{}, fmt.Errorf("%w: username or email and password are required", ErrValidation)
	}

	user, err := m.users.FindByLogin(ctx, identifier)
	if err != nil {
		return models.PublicUser{}, models.SessionTokens{}, err
	}

	if err := VerifyPassword(user.Password, password); err != nil {
		return models.PublicUser{}, models.SessionTokens{}, err
	}

	tokens, err := m.tokens.IssuePair(user)
	if err != nil {
		return models.PublicUser{}, models.SessionTokens{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := m.users.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.PublicUser{}, models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return user.Public(), tokens, nil
}

// Refresh exchanges a refresh token for a new token pair. The stored token is
// replaced via compare-and-swap: presenting a stale or rotated token fails
// with ErrInvalidToken, which is the replay-detection invariant. Of two
// refresh calls racing with the same token, exactly one wins.
func (m *Manager) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	ctx, span := logging.StartSpan(ctx, "auth.refresh")
	defer span.End()

	presented = strings.TrimSpace(presented)
	claims, err := m.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.users.FindByID(ctx, claims.Subject)
	if err != nil {
		// An unknown subject is indistinguishable from a forged token.
		return models.SessionTokens{}, ErrInvalidToken
	}

	tokens, err := m.tokens.IssuePair(user)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("issue tokens: %w", err)
	}

	if err := m.users.RotateRefreshToken(ctx, user.ID, presented, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, err
	}

	return tokens, nil
}

// Logout clears the stored refresh token. Logging out an account that holds
// no session is not an error.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	ctx, span := logging.StartSpan(ctx, "auth.logout")
	defer span.End()

	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return m.users.ClearRefreshToken(ctx, userID)
}

// ChangePassword replaces the stored hash after verifying the old password.
// Only the password field is re-validated; unrelated account fields are not.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	ctx, span := logging.StartSpan(ctx, "auth.change_password")
	defer span.End()

	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password must not be blank", ErrValidation)
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := VerifyPassword(user.Password, oldPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return m.users.UpdatePassword(ctx, userID, hash)
}
