package models

import "time"

// User represents an account on the VideoTube platform. Every account doubles
// as a channel that other accounts can subscribe to.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Password     string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the credential-free projection returned by API responses.
// It never carries the password hash or the stored refresh token.
type PublicUser struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public strips credential fields from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
	}
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Video is a piece of content published by a channel.
type Video struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoURL    string    `json:"videoUrl"`
	Thumbnail   string    `json:"thumbnail"`
	Views       int64     `json:"views"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is a remark attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	VideoID   string    `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short standalone post by an account.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist is an ordered, named collection of videos owned by an account.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videoIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChannelSummary is the safe field subset used when an account appears inside
// a joined view (video owner, subscriber listing, and so on).
type ChannelSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoWithOwner pairs a video with its owner's summary projection.
type VideoWithOwner struct {
	Video
	Owner ChannelSummary `json:"owner"`
}

// SubscriptionEntry pairs a relationship edge with the counterpart account:
// the subscriber when listing a channel's subscribers, the channel when
// listing what an account subscribes to.
type SubscriptionEntry struct {
	User         ChannelSummary `json:"user"`
	SubscribedAt time.Time      `json:"subscribedAt"`
}

// ChannelStats aggregates a channel's derived counters. The four values are
// independent reads and carry no cross-consistency guarantee between them.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// ChannelProfile is the public channel page: account fields joined with
// subscription counts and the requester's own subscription state.
type ChannelProfile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	Avatar          string    `json:"avatar"`
	CoverImage      string    `json:"coverImage,omitempty"`
	SubscriberCount int64     `json:"subscriberCount"`
	SubscribedTo    int64     `json:"subscribedToCount"`
	IsSubscribed    bool      `json:"isSubscribed"`
	CreatedAt       time.Time `json:"createdAt"`
}

// WatchHistoryEntry is one watched video joined with its owner.
type WatchHistoryEntry struct {
	Video     VideoWithOwner `json:"video"`
	WatchedAt time.Time      `json:"watchedAt"`
}
