package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fync-app/fync-server/internal/logger"
	"github.com/fync-app/fync-server/internal/model"
)

// TokenService issues, rotates and revokes session token pairs. Refresh
// tokens are stored hashed and rotated on every use. Revocation publishes
// the signed-out transition so SSE subscribers observe the session ending
// no matter which caller revoked it.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	events  *SessionEvents
	logger  *logger.Logger
}

func NewTokenService(manager model.TokenManager, store model.RefreshTokenStore, events *SessionEvents, logger *logger.Logger) *TokenService {
	return &TokenService{manager: manager, store: store, events: events, logger: logger}
}

// Issue creates a fresh pair for userID and persists the hashed refresh half.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID) (model.TokenPair, error) {
	s.logger.Debug("Token service: issuing session pair",
		"user_id", userID)

	access, accessExpiresAt, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, jti, refreshExpiresAt, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.store.Create(ctx, sessionRecord(userID, jti, refresh, refreshExpiresAt, nil)); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExpiresAt,
	}, nil
}

// Refresh rotates the presented refresh token: the old record is revoked
// and a new pair is issued, linked to the old one by JTI.
func (s *TokenService) Refresh(ctx context.Context, presented string) (model.TokenPair, error) {
	userID, jti, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.logger.Debug("Token service: rotating refresh token",
		"user_id", userID)

	rt, err := s.store.GetByJTI(ctx, jti)
	if err != nil {
		return model.TokenPair{}, err
	}
	if err := checkLive(rt, presented, time.Now()); err != nil {
		return model.TokenPair{}, err
	}

	if err := s.store.RevokeByJTI(ctx, jti); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to revoke rotated token: %w", err)
	}

	access, accessExpiresAt, err := s.manager.GenerateAccessToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, newJTI, refreshExpiresAt, err := s.manager.GenerateRefreshToken(userID)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	rotatedFrom := rt.JTI
	if err := s.store.Create(ctx, sessionRecord(userID, newJTI, refresh, refreshExpiresAt, &rotatedFrom)); err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExpiresAt,
	}, nil
}

// RevokeByToken ends the session behind the presented refresh token. It is
// idempotent: an empty, unparseable, unknown or already revoked token
// counts as signed out. Every call publishes the signed-out transition.
func (s *TokenService) RevokeByToken(ctx context.Context, presented string) error {
	if presented != "" {
		_, jti, err := s.manager.ParseRefreshToken(presented)
		if err != nil {
			s.logger.Debug("Token service: revoke of unparseable token",
				"error", err.Error())
		} else if err := s.store.RevokeByJTI(ctx, jti); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
	}

	s.events.Publish(model.SessionEvent{Kind: model.SessionSignedOut})

	s.logger.Info("Token service: session revoked")
	return nil
}

// RevokeAllForUser revokes every live refresh token of the user.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RevokeAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

// GetUserID resolves the identity behind an access token.
func (s *TokenService) GetUserID(ctx context.Context, token string) (uuid.UUID, error) {
	return s.manager.ParseAccessToken(token)
}

func sessionRecord(userID uuid.UUID, jti, refresh string, expiresAt time.Time, rotatedFrom *string) model.RefreshToken {
	now := time.Now()
	return model.RefreshToken{
		ID:             uuid.New(),
		JTI:            jti,
		UserID:         userID,
		TokenHash:      hashRefresh(refresh),
		IssuedAt:       now,
		ExpiresAt:      expiresAt,
		RotatedFromJTI: rotatedFrom,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

// checkLive verifies the stored record is still usable and matches the
// presented token byte for byte.
func checkLive(rt model.RefreshToken, presented string, now time.Time) error {
	switch {
	case rt.RevokedAt != nil:
		return model.ErrTokenRevoked
	case now.After(rt.ExpiresAt):
		return model.ErrTokenExpired
	case subtle.ConstantTimeCompare(rt.TokenHash, hashRefresh(presented)) != 1:
		return model.ErrTokenMismatch
	}
	return nil
}
