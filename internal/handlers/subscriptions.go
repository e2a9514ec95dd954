package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/engagement"
	"github.com/videotube/backend/internal/logging"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Toggles ToggleService
	Edges   EngagementStore
}

// Toggle handles POST /api/v1/subscriptions/{channelId}: subscribed accounts
// unsubscribe, unsubscribed accounts subscribe.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	channelID := r.PathValue("channelId")
	result, err := h.Toggles.Toggle(ctx, identity.UserID, channelID, engagement.KindChannel)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("subscription toggled",
		"actorId", identity.UserID, "channelId", channelID, "result", string(result))

	message := "subscribed"
	if result == engagement.Deleted {
		message = "unsubscribed"
	}
	respondData(ctx, w, http.StatusOK, map[string]bool{"subscribed": result == engagement.Created}, message)
}

// Subscribers handles GET /api/v1/subscriptions/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.Edges.Subscribers(ctx, r.PathValue("channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, entries, "subscribers fetched")
}

// Subscribed handles GET /api/v1/subscriptions/me: the channels the caller
// subscribes to.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	entries, err := h.Edges.SubscribedTo(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, entries, "subscriptions fetched")
}
