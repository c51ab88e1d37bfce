package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LinkStateDuration is a TTL for pending link states.
const LinkStateDuration = time.Minute * 10

// LinkStateStore persists pending OAuth link attempts. A state is created
// when the handshake is initiated and consumed exactly once on callback,
// which makes a replayed (code, state) pair fail the lookup.
type LinkStateStore interface {
	Create(ctx context.Context, state PendingLink) error
	GetByState(ctx context.Context, state string) (PendingLink, error)
	Consume(ctx context.Context, state string) error
}

// PendingLink describes one in-flight OAuth handshake attempt.
type PendingLink struct {
	State     string
	UserID    uuid.UUID
	Scopes    string
	ExpiresAt time.Time
	Consumed  bool
}
