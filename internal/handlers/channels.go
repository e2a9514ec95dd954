package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
)

// ChannelHandler serves public channel pages.
type ChannelHandler struct {
	Channels ChannelStore
}

// Profile handles GET /api/v1/channels/{username}. Authenticated callers see
// their own subscription state; anonymous callers read isSubscribed=false.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requesterID := ""
	if identity, ok := auth.IdentityFromContext(ctx); ok {
		requesterID = identity.UserID
	}

	profile, err := h.Channels.Profile(ctx, r.PathValue("username"), requesterID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched")
}

// Videos handles GET /api/v1/channels/{username}/videos. Only published
// videos are visible here; owners see the full listing on their dashboard.
func (h ChannelHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.Channels.Profile(ctx, r.PathValue("username"), "")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videos, err := h.Channels.Videos(ctx, profile.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	published := videos[:0]
	for _, video := range videos {
		if video.Published {
			published = append(published, video)
		}
	}

	respondData(ctx, w, http.StatusOK, published, "channel videos fetched")
}
