package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSetupRequired means the backing store itself is not provisioned,
	// as opposed to the caller's credentials being wrong.
	ErrSetupRequired = errors.New("backing store is not provisioned")
	// ErrInvalidCredentials is returned when an email/password pair is rejected.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotConfirmed is returned when the identity's email address
	// has not been confirmed yet.
	ErrEmailNotConfirmed = errors.New("email address not confirmed")
	// ErrUsernameTaken is the write-time uniqueness violation for usernames.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrProfileExists means a profile with the same email exists at a
	// different identity.
	ErrProfileExists = errors.New("profile already exists")
	// ErrForbidden is returned when a caller writes another identity's profile.
	ErrForbidden = errors.New("operation not permitted for this identity")
	// ErrStateMismatch is returned when an OAuth callback carries an unknown,
	// expired or already consumed state token.
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// ValidationError reports malformed input caught before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError reports a failure surfaced by the external OAuth provider.
type ProviderError struct {
	Provider string
	Reason   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Reason)
}

// StorageError reports an object storage failure. It is fatal only for the
// image operation itself, never for the surrounding profile write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
