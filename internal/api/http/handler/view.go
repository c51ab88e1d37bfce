package handler

import (
	"time"

	"github.com/fync-app/fync-server/internal/model"
)

// profileView is the wire shape of a profile. Provider credentials stay
// server-side; only the linkage status and the provider user id go out.
type profileView struct {
	ID              string       `json:"id"`
	Email           string       `json:"email"`
	Username        string       `json:"username"`
	Name            string       `json:"name"`
	Bio             string       `json:"bio"`
	Location        string       `json:"location"`
	ProfileImage    *string      `json:"profile_image"`
	CoverImage      *string      `json:"cover_image"`
	FavoriteGenres  []string     `json:"favorite_genres"`
	FavoriteArtists []string     `json:"favorite_artists"`
	Spotify         *spotifyView `json:"spotify,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type spotifyView struct {
	Connected bool   `json:"connected"`
	UserID    string `json:"user_id"`
}

type userView struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

func newProfileView(p model.Profile) profileView {
	view := profileView{
		ID:              p.ID.String(),
		Email:           p.Email,
		Username:        p.Username,
		Name:            p.Name,
		Bio:             p.Bio,
		Location:        p.Location,
		ProfileImage:    p.ProfileImage,
		CoverImage:      p.CoverImage,
		FavoriteGenres:  p.FavoriteGenres,
		FavoriteArtists: p.FavoriteArtists,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if view.FavoriteGenres == nil {
		view.FavoriteGenres = []string{}
	}
	if view.FavoriteArtists == nil {
		view.FavoriteArtists = []string{}
	}
	if p.Spotify != nil {
		view.Spotify = &spotifyView{
			Connected: p.Spotify.Connected,
			UserID:    p.Spotify.UserID,
		}
	}
	return view
}

func newUserView(u model.User) userView {
	return userView{
		ID:             u.ID.String(),
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
	}
}
