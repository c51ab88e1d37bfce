package model

import "io"

// CreateProfileParams carries the user-supplied attributes for the
// signup/onboarding profile upsert. Username may be empty, in which case
// one is derived from the name.
type CreateProfileParams struct {
	Username        string
	Name            string
	Bio             string
	Location        string
	ProfileImage    *string
	FavoriteGenres  []string
	FavoriteArtists []string
}

// UpdateProfileParams is a partial profile edit. An attached image payload
// is persisted to object storage before the record update.
type UpdateProfileParams struct {
	Username        *string
	Name            *string
	Bio             *string
	Location        *string
	FavoriteGenres  []string
	FavoriteArtists []string
	Image           *ImageUpload
}

// ImageUpload is an inline image payload destined for one slot.
type ImageUpload struct {
	Slot        ImageSlot
	Reader      io.Reader
	Size        int64
	ContentType string
}
