package model

import "context"

// Mailer delivers account emails. A nil error means the delivery request
// was accepted, not that the message arrived.
type Mailer interface {
	SendConfirmation(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}
