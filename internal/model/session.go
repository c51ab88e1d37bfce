package model

import "github.com/google/uuid"

// SessionEventKind enumerates session state transitions.
type SessionEventKind string

const (
	// SessionSignedIn is delivered after a successful authentication.
	SessionSignedIn SessionEventKind = "signed_in"
	// SessionSignedOut is delivered after a sign-out.
	SessionSignedOut SessionEventKind = "signed_out"
)

// SessionEvent notifies subscribers of a session state transition.
// UserID is set for signed-in events only.
type SessionEvent struct {
	Kind   SessionEventKind
	UserID uuid.UUID
	Email  string
}
