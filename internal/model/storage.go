package model

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// ImageSlot names a fixed per-identity image location.
type ImageSlot string

const (
	// SlotProfile is the profile picture slot.
	SlotProfile ImageSlot = "profile"
	// SlotCover is the cover image slot.
	SlotCover ImageSlot = "cover"
)

// Size limits per slot.
const (
	MaxProfileImageSize = 5 << 20
	MaxCoverImageSize   = 10 << 20
)

// MaxSize returns the upload size limit for the slot.
func (s ImageSlot) MaxSize() int64 {
	if s == SlotCover {
		return MaxCoverImageSize
	}
	return MaxProfileImageSize
}

// Valid reports whether the slot is one of the known slot names.
func (s ImageSlot) Valid() bool {
	return s == SlotProfile || s == SlotCover
}

// ImageStorage stores identity-scoped images. Uploading to an occupied slot
// replaces the previous image; the returned string is a publicly resolvable URL.
type ImageStorage interface {
	UploadImage(ctx context.Context, userID uuid.UUID, slot ImageSlot, reader io.Reader, size int64, contentType string) (string, error)
}
