package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/videotube/backend/internal/models"
)

// NewInMemoryUserStore returns a UserStore backed by an in-memory map.
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]models.User)}
}

// InMemoryUserStore implements UserStore for tests and local development.
// The mutex makes the refresh-token rotation a true compare-and-swap,
// matching the conditional-write semantics of the SQL store.
type InMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

// Create persists a new user, enforcing case-insensitive uniqueness of
// username and email.
func (s *InMemoryUserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicateUser
		}
	}
	s.users[user.ID] = user
	return nil
}

// FindByID retrieves a user by identifier.
func (s *InMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// FindByLogin retrieves a user whose username or email matches the
// identifier, compared case-insensitively.
func (s *InMemoryUserStore) FindByLogin(_ context.Context, identifier string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, identifier) || strings.EqualFold(user.Email, identifier) {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// SetRefreshToken unconditionally overwrites the stored refresh token.
func (s *InMemoryUserStore) SetRefreshToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = token
	s.users[id] = user
	return nil
}

// RotateRefreshToken swaps the stored token for next only when it still
// equals current. A mismatch means the presented token was already rotated
// or revoked.
func (s *InMemoryUserStore) RotateRefreshToken(_ context.Context, id, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if user.RefreshToken == "" || user.RefreshToken != current {
		return ErrInvalidToken
	}
	user.RefreshToken = next
	s.users[id] = user
	return nil
}

// ClearRefreshToken removes any stored refresh token. Clearing an absent
// token is not an error.
func (s *InMemoryUserStore) ClearRefreshToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.RefreshToken = ""
	s.users[id] = user
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *InMemoryUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Password = hash
	s.users[id] = user
	return nil
}

// StoredRefreshToken reports the current refresh token. Useful for tests.
func (s *InMemoryUserStore) StoredRefreshToken(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].RefreshToken
}
