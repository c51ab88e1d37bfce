package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenPair is one issued session: a short-lived access token plus the
// refresh token that rotates it. AccessExpiresAt lets clients schedule a
// refresh without decoding the JWT.
type TokenPair struct {
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// TokenManager generates and validates access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID) (token string, expiresAt time.Time, err error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, expiresAt time.Time, err error)
	ParseAccessToken(token string) (uuid.UUID, error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
}
