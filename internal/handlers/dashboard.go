package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
)

// DashboardHandler serves the authenticated channel owner's own views.
type DashboardHandler struct {
	Channels ChannelStore
}

// Stats handles GET /api/v1/dashboard/stats. The four counters are
// independent reads; no cross-consistency between them is promised.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	stats, err := h.Channels.Stats(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched")
}

// Videos handles GET /api/v1/dashboard/videos: every video the caller owns,
// published or not.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, auth.ErrInvalidToken)
		return
	}

	videos, err := h.Channels.Videos(ctx, identity.UserID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "channel videos fetched")
}
