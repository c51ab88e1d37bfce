package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for identities.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	ConfirmByToken(ctx context.Context, token string) (User, error)
	SetConfirmationToken(ctx context.Context, email, token string) error
	SetResetToken(ctx context.Context, email, token string) error
}

// User represents an authenticated identity with credential material.
type User struct {
	ID                uuid.UUID
	Email             string
	PasswordHash      []byte
	EmailConfirmed    bool
	ConfirmationToken *string
	ResetToken        *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}
