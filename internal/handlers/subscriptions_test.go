package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

type stubEngagementStore struct {
	edges       *engagement.InMemoryEdgeStore
	subscribers map[string][]models.SubscriptionEntry
	subscribed  map[string][]models.SubscriptionEntry
	liked       map[string][]models.VideoWithOwner
}

func (s *stubEngagementStore) Subscribers(_ context.Context, channelID string) ([]models.SubscriptionEntry, error) {
	return s.subscribers[channelID], nil
}

func (s *stubEngagementStore) SubscribedTo(_ context.Context, subscriberID string) ([]models.SubscriptionEntry, error) {
	return s.subscribed[subscriberID], nil
}

func (s *stubEngagementStore) LikedVideos(_ context.Context, actorID string) ([]models.VideoWithOwner, error) {
	return s.liked[actorID], nil
}

func subscriptionTestHandler() (SubscriptionHandler, *engagement.InMemoryEdgeStore) {
	edges := engagement.NewInMemoryEdgeStore()
	store := &stubEngagementStore{edges: edges}
	return SubscriptionHandler{
		Toggles: engagement.NewService(edges),
		Edges:   store,
	}, edges
}

func identityRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))
}

func TestSubscriptionHandlerToggle(t *testing.T) {
	handler, edges := subscriptionTestHandler()

	req := identityRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", "user-1")
	req.SetPathValue("channelId", "channel-1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if !edges.Has("user-1", "channel-1", engagement.KindChannel) {
		t.Fatal("expected subscription edge to exist after first toggle")
	}

	var resp struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Data["subscribed"] {
		t.Fatalf("expected subscribed=true, got %+v", resp.Data)
	}

	// Second toggle removes the edge.
	req = identityRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", "user-1")
	req.SetPathValue("channelId", "channel-1")
	rec = httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}
	if edges.Has("user-1", "channel-1", engagement.KindChannel) {
		t.Fatal("expected subscription edge removed after second toggle")
	}
}

func TestSubscriptionHandlerSelfSubscription(t *testing.T) {
	handler, edges := subscriptionTestHandler()

	req := identityRequest(http.MethodPost, "/api/v1/subscriptions/user-1", "user-1")
	req.SetPathValue("channelId", "user-1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected %d got %d", http.StatusBadRequest, rec.Code)
	}
	if edges.Count() != 0 {
		t.Fatal("self-subscription must not create an edge")
	}
}

func TestSubscriptionHandlerToggleRequiresIdentity(t *testing.T) {
	handler, _ := subscriptionTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", nil)
	req.SetPathValue("channelId", "channel-1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestLikeHandlerToggleAcrossKinds(t *testing.T) {
	edges := engagement.NewInMemoryEdgeStore()
	handler := LikeHandler{
		Toggles: engagement.NewService(edges),
		Edges:   &stubEngagementStore{edges: edges},
	}

	cases := []struct {
		name   string
		toggle func(http.ResponseWriter, *http.Request)
		kind   engagement.TargetKind
	}{
		{"video", handler.ToggleVideo, engagement.KindVideo},
		{"comment", handler.ToggleComment, engagement.KindComment},
		{"tweet", handler.ToggleTweet, engagement.KindTweet},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := identityRequest(http.MethodPost, "/api/v1/likes/"+tc.name+"s/target-1", "user-1")
			req.SetPathValue("id", "target-1")
			rec := httptest.NewRecorder()
			tc.toggle(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}
			if !edges.Has("user-1", "target-1", tc.kind) {
				t.Fatalf("expected %s like edge", tc.name)
			}
		})
	}

	// Kinds are independent tuples: three edges for the same target id.
	if edges.Count() != 3 {
		t.Fatalf("expected 3 independent edges, got %d", edges.Count())
	}

	// Liking your own content is allowed; only channel kind rejects self.
	req := identityRequest(http.MethodPost, "/api/v1/likes/videos/user-1", "user-1")
	req.SetPathValue("id", "user-1")
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("self-like: expected %d got %d", http.StatusOK, rec.Code)
	}
}

func TestLikeHandlerLikedVideos(t *testing.T) {
	edges := engagement.NewInMemoryEdgeStore()
	store := &stubEngagementStore{
		edges: edges,
		liked: map[string][]models.VideoWithOwner{
			"user-1": {{Video: models.Video{ID: "video-1", Title: "Kept"}}},
		},
	}
	handler := LikeHandler{Toggles: engagement.NewService(edges), Edges: store}

	req := identityRequest(http.MethodGet, "/api/v1/likes/videos", "user-1")
	rec := httptest.NewRecorder()
	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data []models.VideoWithOwner `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "video-1" {
		t.Fatalf("unexpected liked videos: %+v", resp.Data)
	}
}

type stubChannelStore struct {
	stats    models.ChannelStats
	profiles map[string]models.ChannelProfile
	videos   map[string][]models.VideoWithOwner
	statsErr error
}

func (s *stubChannelStore) Stats(_ context.Context, _ string) (models.ChannelStats, error) {
	return s.stats, s.statsErr
}

func (s *stubChannelStore) Profile(_ context.Context, username, requesterID string) (models.ChannelProfile, error) {
	profile, ok := s.profiles[username]
	if !ok {
		return models.ChannelProfile{}, repositories.ErrNotFound
	}
	profile.IsSubscribed = requesterID != "" && profile.IsSubscribed
	return profile, nil
}

func (s *stubChannelStore) Videos(_ context.Context, channelID string) ([]models.VideoWithOwner, error) {
	return s.videos[channelID], nil
}

func TestDashboardHandlerStats(t *testing.T) {
	store := &stubChannelStore{
		stats: models.ChannelStats{TotalVideos: 3, TotalViews: 15, TotalSubscribers: 2, TotalLikes: 4},
	}
	handler := DashboardHandler{Channels: store}

	req := identityRequest(http.MethodGet, "/api/v1/dashboard/stats", "owner-1")
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data models.ChannelStats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data != store.stats {
		t.Fatalf("stats = %+v, want %+v", resp.Data, store.stats)
	}
}

func TestChannelHandlerVideosPublishedOnly(t *testing.T) {
	store := &stubChannelStore{
		profiles: map[string]models.ChannelProfile{
			"ada": {ID: "user-1", Username: "ada"},
		},
		videos: map[string][]models.VideoWithOwner{
			"user-1": {
				{Video: models.Video{ID: "video-1", Published: true}},
				{Video: models.Video{ID: "video-2", Published: false}},
			},
		},
	}
	handler := ChannelHandler{Channels: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/ada/videos", nil)
	req.SetPathValue("username", "ada")
	rec := httptest.NewRecorder()
	handler.Videos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data []models.VideoWithOwner `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "video-1" {
		t.Fatalf("expected only the published video, got %+v", resp.Data)
	}
}

func TestChannelHandlerProfileAnonymous(t *testing.T) {
	store := &stubChannelStore{
		profiles: map[string]models.ChannelProfile{
			"ada": {ID: "user-1", Username: "ada", SubscriberCount: 7, IsSubscribed: true, CreatedAt: time.Now()},
		},
	}
	handler := ChannelHandler{Channels: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/ada", nil)
	req.SetPathValue("username", "ada")
	rec := httptest.NewRecorder()
	handler.Profile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d got %d", http.StatusOK, rec.Code)
	}

	var resp struct {
		Data models.ChannelProfile `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.IsSubscribed {
		t.Fatal("anonymous requester must read isSubscribed=false")
	}
}
