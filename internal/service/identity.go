package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

const minPasswordLength = 8

// AuthResult is the outcome of a successful authentication.
type AuthResult struct {
	User    model.User
	Profile *model.Profile
	Tokens  model.TokenPair
}

// Identity implements account creation, authentication and session
// lifecycle over the user store.
type Identity struct {
	userStore           model.UserStore
	profileStore        model.ProfileStore
	tokenService        *TokenService
	events              *SessionEvents
	mailer              model.Mailer
	requireConfirmation bool
	logger              *logger.Logger
}

func NewIdentity(
	userStore model.UserStore,
	profileStore model.ProfileStore,
	tokenService *TokenService,
	events *SessionEvents,
	mailer model.Mailer,
	requireConfirmation bool,
	logger *logger.Logger,
) *Identity {
	return &Identity{
		userStore:           userStore,
		profileStore:        profileStore,
		tokenService:        tokenService,
		events:              events,
		mailer:              mailer,
		requireConfirmation: requireConfirmation,
		logger:              logger,
	}
}

// SignUp creates a new identity. The returned flag reports whether email
// confirmation is still outstanding.
func (s *Identity) SignUp(ctx context.Context, email, password string) (model.User, bool, error) {
	s.logger.Debug("Identity service: starting signup",
		"email", email)

	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, false, model.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return model.User{}, false, model.NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   hash,
		EmailConfirmed: !s.requireConfirmation,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	var confirmationToken string
	if s.requireConfirmation {
		confirmationToken, err = randomToken()
		if err != nil {
			return model.User{}, false, fmt.Errorf("failed to generate confirmation token: %w", err)
		}
		user.ConfirmationToken = &confirmationToken
	}

	created, err := s.userStore.Create(ctx, user)
	if err != nil {
		s.logger.Error("Identity service: failed to create user",
			"email", email,
			"error", err.Error())
		if errors.Is(err, model.ErrSetupRequired) || errors.Is(err, model.ErrProfileExists) {
			return model.User{}, false, err
		}
		return model.User{}, false, fmt.Errorf("failed to create user: %w", err)
	}

	if s.requireConfirmation {
		if err := s.mailer.SendConfirmation(ctx, created.Email, confirmationToken); err != nil {
			// Delivery matters less than the created account. The user can
			// request another confirmation email.
			s.logger.Error("Identity service: failed to send confirmation email",
				"email", email,
				"error", err.Error())
		}
	}

	s.logger.Info("Identity service: signup completed",
		"email", email,
		"user_id", created.ID,
		"confirmation_pending", s.requireConfirmation)

	return created, s.requireConfirmation, nil
}

// Authenticate verifies the credential pair and issues a session token pair.
// A rejection is re-classified as ErrSetupRequired when no profile rows exist
// anywhere, since "invalid credentials" would be a misleading diagnosis for a
// system that was never initialized.
func (s *Identity) Authenticate(ctx context.Context, email, password string) (AuthResult, error) {
	s.logger.Debug("Identity service: starting authentication",
		"email", email)

	user, err := s.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrSetupRequired) {
		return AuthResult{}, model.ErrSetupRequired
	}
	if errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, s.classifyRejection(ctx)
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return AuthResult{}, s.classifyRejection(ctx)
	}

	if s.requireConfirmation && !user.EmailConfirmed {
		return AuthResult{}, model.ErrEmailNotConfirmed
	}

	pair, err := s.tokenService.Issue(ctx, user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue token: %w", err)
	}

	result := AuthResult{
		User:   user,
		Tokens: pair,
	}

	profile, err := s.profileStore.GetByID(ctx, user.ID)
	if err == nil {
		result.Profile = &profile
	} else if !errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("failed to get profile: %w", err)
	}

	s.events.Publish(model.SessionEvent{
		Kind:   model.SessionSignedIn,
		UserID: user.ID,
		Email:  user.Email,
	})

	s.logger.Info("Identity service: authentication completed",
		"email", email,
		"user_id", user.ID)

	return result, nil
}

// classifyRejection distinguishes "wrong credentials" from "nothing is
// provisioned": with zero profiles anywhere the system has never been
// initialized.
func (s *Identity) classifyRejection(ctx context.Context) error {
	count, err := s.profileStore.Count(ctx)
	if errors.Is(err, model.ErrSetupRequired) {
		return model.ErrSetupRequired
	}
	if err != nil {
		s.logger.Error("Identity service: failed to count profiles",
			"error", err.Error())
		return model.ErrInvalidCredentials
	}
	if count == 0 {
		return model.ErrSetupRequired
	}
	return model.ErrInvalidCredentials
}

// CurrentIdentity resolves the identity bound to the access token. A missing
// or invalid token is not an error: ok is false and the caller renders the
// signed-out state.
func (s *Identity) CurrentIdentity(ctx context.Context, accessToken string) (model.User, *model.Profile, bool, error) {
	if accessToken == "" {
		return model.User{}, nil, false, nil
	}

	userID, err := s.tokenService.GetUserID(ctx, accessToken)
	if err != nil {
		return model.User{}, nil, false, nil
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, nil, false, nil
	}
	if err != nil {
		return model.User{}, nil, false, fmt.Errorf("failed to get user by id: %w", err)
	}

	profile, err := s.profileStore.GetByID(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			return model.User{}, nil, false, fmt.Errorf("failed to get profile: %w", err)
		}
		return user, nil, true, nil
	}

	return user, &profile, true, nil
}

// SignOut revokes the presented refresh token. The token layer makes this
// idempotent: an unknown or already revoked token is a success, and the
// signed-out transition is published there.
func (s *Identity) SignOut(ctx context.Context, refreshToken string) error {
	if err := s.tokenService.RevokeByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info("Identity service: sign-out completed")
	return nil
}

// ConfirmEmail consumes a confirmation token and marks the address confirmed.
func (s *Identity) ConfirmEmail(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, model.NewValidationError("token", "must not be empty")
	}

	user, err := s.userStore.ConfirmByToken(ctx, token)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("Identity service: email confirmed",
		"user_id", user.ID)

	return user, nil
}

// ResendConfirmation queues a fresh confirmation email. Success means the
// request was accepted; whether the address exists is not disclosed.
func (s *Identity) ResendConfirmation(ctx context.Context, email string) error {
	return s.sendAccountEmail(ctx, email,
		s.userStore.SetConfirmationToken, s.mailer.SendConfirmation, "confirmation")
}

// RequestPasswordReset queues a password reset email. Same acceptance
// semantics as ResendConfirmation.
func (s *Identity) RequestPasswordReset(ctx context.Context, email string) error {
	return s.sendAccountEmail(ctx, email,
		s.userStore.SetResetToken, s.mailer.SendPasswordReset, "password reset")
}

func (s *Identity) sendAccountEmail(
	ctx context.Context,
	email string,
	setToken func(context.Context, string, string) error,
	send func(context.Context, string, string) error,
	kind string,
) error {
	token, err := randomToken()
	if err != nil {
		return fmt.Errorf("failed to generate %s token: %w", kind, err)
	}

	err = setToken(ctx, email, token)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Debug("Identity service: account email skipped for unknown address",
			"kind", kind)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to store %s token: %w", kind, err)
	}

	if err := send(ctx, email, token); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	s.logger.Info("Identity service: account email accepted",
		"kind", kind)
	return nil
}

// randomToken returns a URL-safe random token.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
