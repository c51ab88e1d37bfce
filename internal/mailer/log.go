// Package mailer provides outbound account email delivery.
package mailer

import (
	"context"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

var _ model.Mailer = (*LogMailer)(nil)

// LogMailer writes account emails to the application log instead of
// delivering them. It stands in for a real provider in development and
// test environments; tokens are logged at debug level only.
type LogMailer struct {
	logger *logger.Logger
}

func NewLogMailer(logger *logger.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmation(_ context.Context, email, token string) error {
	m.logger.Info("mailer: confirmation email requested",
		"email", email)
	m.logger.Debug("mailer: confirmation token",
		"email", email,
		"token", token)
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger.Info("mailer: password reset email requested",
		"email", email)
	m.logger.Debug("mailer: password reset token",
		"email", email,
		"token", token)
	return nil
}
