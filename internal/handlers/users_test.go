package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
)

type fakeMedia struct {
	saved   []string
	deleted []string
}

func (m *fakeMedia) Save(_ context.Context, name string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	m.saved = append(m.saved, name)
	return "https://cdn.test/" + name, nil
}

func (m *fakeMedia) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

type fakeDirectory struct {
	*auth.InMemoryUserStore
	updated map[string]models.User
}

func (d *fakeDirectory) UpdateProfile(ctx context.Context, id string, fullName, avatar, coverImage *string) (models.User, error) {
	user, err := d.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if fullName != nil {
		user.FullName = *fullName
	}
	if avatar != nil {
		user.Avatar = *avatar
	}
	if coverImage != nil {
		user.CoverImage = *coverImage
	}
	if d.updated == nil {
		d.updated = make(map[string]models.User)
	}
	d.updated[id] = user
	return user, nil
}

func newTestUserHandler(t *testing.T) (UserHandler, *auth.InMemoryUserStore, *fakeMedia) {
	t.Helper()
	store := auth.NewInMemoryUserStore()
	issuer := auth.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	media := &fakeMedia{}
	handler := UserHandler{
		Sessions: auth.NewManager(store, issuer),
		Users:    &fakeDirectory{InMemoryUserStore: store},
		Media:    media,
	}
	return handler, store, media
}

func multipartRegisterBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create form file %s: %v", field, err)
		}
		if _, err := part.Write([]byte("binary-bytes")); err != nil {
			t.Fatalf("write file %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUserHandlerRegister(t *testing.T) {
	handler, store, media := newTestUserHandler(t)

	body, contentType := multipartRegisterBody(t,
		map[string]string{
			"fullName": "Ada Lovelace",
			"email":    "ada@example.com",
			"username": "Ada",
			"password": "supersafe",
		},
		map[string]string{"avatar": "face.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}

	stored, err := store.FindByLogin(context.Background(), "ada")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if stored.Username != "ada" {
		t.Fatalf("expected lowercased username, got %q", stored.Username)
	}
	if stored.Password == "supersafe" || stored.Password == "" {
		t.Fatal("stored password is not hashed")
	}
	if !strings.HasPrefix(stored.Avatar, "https://cdn.test/avatar/") {
		t.Fatalf("expected stored avatar URL, got %q", stored.Avatar)
	}
	if len(media.saved) != 1 {
		t.Fatalf("expected one uploaded asset, got %d", len(media.saved))
	}
}

func TestUserHandlerRegisterMissingAvatar(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)

	body, contentType := multipartRegisterBody(t,
		map[string]string{
			"fullName": "Ada Lovelace",
			"email":    "ada@example.com",
			"username": "ada",
			"password": "supersafe",
		},
		nil,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func registerTestUser(t *testing.T, handler UserHandler, username, password string) models.PublicUser {
	t.Helper()

	body, contentType := multipartRegisterBody(t,
		map[string]string{
			"fullName": "Test " + username,
			"email":    username + "@example.com",
			"username": username,
			"password": password,
		},
		map[string]string{"avatar": "face.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	handler.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.PublicUser `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Data
}

func loginTestUser(t *testing.T, handler UserHandler, identifier, password string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(loginRequest{Username: identifier, Password: password})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestUserHandlerLogin(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)
	registerTestUser(t, handler, "grace", "password123")

	rec := loginTestUser(t, handler, "grace", "password123")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var hasAccess, hasRefresh bool
	for _, c := range cookies {
		switch c.Name {
		case accessCookieName:
			hasAccess = c.Value != "" && c.HttpOnly
		case refreshCookieName:
			hasRefresh = c.Value != "" && c.HttpOnly
		}
	}
	if !hasAccess || !hasRefresh {
		t.Fatalf("expected httpOnly session cookies, got %+v", cookies)
	}
}

func TestUserHandlerLoginFailures(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)
	registerTestUser(t, handler, "grace", "password123")

	if rec := loginTestUser(t, handler, "grace", "wrong-password"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
	if rec := loginTestUser(t, handler, "nobody", "password123"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown user: expected %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestUserHandlerRefreshRotation(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)
	registerTestUser(t, handler, "grace", "password123")

	loginRec := loginTestUser(t, handler, "grace", "password123")
	var refreshCookie *http.Cookie
	for _, c := range loginRec.Result().Cookies() {
		if c.Name == refreshCookieName {
			refreshCookie = c
		}
	}
	if refreshCookie == nil {
		t.Fatal("login did not set a refresh cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", nil)
	req.AddCookie(refreshCookie)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// Replaying the rotated-out token must fail.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", nil)
	req.AddCookie(refreshCookie)
	rec = httptest.NewRecorder()
	handler.Refresh(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("replay: expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerRefreshFromBody(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)
	registerTestUser(t, handler, "grace", "password123")

	loginRec := loginTestUser(t, handler, "grace", "password123")
	var loginResp struct {
		Data struct {
			Tokens models.SessionTokens `json:"tokens"`
		} `json:"data"`
	}
	if err := json.NewDecoder(loginRec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	payload := fmt.Sprintf(`{"refreshToken":%q}`, loginResp.Data.Tokens.RefreshToken)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestUserHandlerLogoutAndChangePassword(t *testing.T) {
	handler, store, _ := newTestUserHandler(t)
	user := registerTestUser(t, handler, "grace", "password123")
	loginTestUser(t, handler, "grace", "password123")

	identity := auth.Identity{UserID: user.ID, Username: user.Username}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected %d got %d", http.StatusOK, rec.Code)
	}
	if token := store.StoredRefreshToken(user.ID); token != "" {
		t.Fatalf("expected stored refresh token cleared, got %q", token)
	}

	payload := `{"oldPassword":"password123","newPassword":"evensafer1"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password", strings.NewReader(payload))
	req = req.WithContext(auth.WithIdentity(req.Context(), identity))
	rec = httptest.NewRecorder()
	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("change password: expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if rec := loginTestUser(t, handler, "grace", "password123"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: got %d", rec.Code)
	}
	if rec := loginTestUser(t, handler, "grace", "evensafer1"); rec.Code != http.StatusOK {
		t.Fatalf("new password rejected: got %d", rec.Code)
	}
}

func TestUserHandlerUpdateAvatarReplacesAsset(t *testing.T) {
	handler, _, media := newTestUserHandler(t)
	user := registerTestUser(t, handler, "grace", "password123")

	body, contentType := multipartRegisterBody(t, nil, map[string]string{"avatar": "new-face.png"})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: user.ID}))
	rec := httptest.NewRecorder()
	handler.UpdateAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if len(media.saved) != 2 {
		t.Fatalf("expected registration and replacement uploads, got %d", len(media.saved))
	}
	if len(media.deleted) != 1 {
		t.Fatalf("expected the replaced avatar deleted, got %v", media.deleted)
	}
	if media.deleted[0] != user.Avatar {
		t.Fatalf("deleted %q, want the previous avatar %q", media.deleted[0], user.Avatar)
	}
}

func TestUserHandlerMeRequiresIdentity(t *testing.T) {
	handler, _, _ := newTestUserHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
}
