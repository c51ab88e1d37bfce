package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileStore defines persistence operations for profiles.
// Upsert is keyed by the identity id: calling it twice for the same
// identity merges instead of failing with a duplicate key.
type ProfileStore interface {
	Upsert(ctx context.Context, profile Profile) (Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	Update(ctx context.Context, id uuid.UUID, update ProfileUpdate) (Profile, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	SetSpotifyLink(ctx context.Context, id uuid.UUID, link SpotifyLink, genres, artists []string) (Profile, error)
}

// Profile extends an identity with user-facing attributes. Its ID is the
// identity id, so at most one profile can exist per identity.
type Profile struct {
	ID              uuid.UUID
	Email           string
	Username        string
	Name            string
	Bio             string
	Location        string
	ProfileImage    *string
	CoverImage      *string
	FavoriteGenres  []string
	FavoriteArtists []string
	Spotify         *SpotifyLink
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SpotifyLink captures a linked Spotify account and its credentials.
// Snapshot holds the raw provider data as JSON.
type SpotifyLink struct {
	Connected    bool
	UserID       string
	Snapshot     []byte
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ProfileUpdate is a partial profile update. Nil fields are left untouched.
type ProfileUpdate struct {
	Username        *string
	Name            *string
	Bio             *string
	Location        *string
	ProfileImage    *string
	CoverImage      *string
	FavoriteGenres  []string
	FavoriteArtists []string
}
