package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fync-app/fync-server/internal/model"
)

const (
	issuer      = "fync-server"
	accessTTL   = 15 * time.Minute
	refreshTTL  = 30 * 24 * time.Hour
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// sessionClaims binds a token to one identity and one token kind, so an
// access token can never be presented as a refresh token or vice versa.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Kind   string    `json:"kind"`
}

// JWT implements model.TokenManager with symmetric HMAC signing.
type JWT struct {
	secretKey []byte
	parser    *jwt.Parser
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{
		secretKey: []byte(secretKey),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

func (j *JWT) sign(userID uuid.UUID, kind, jti string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Kind:   kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, expiresAt, nil
}

// GenerateAccessToken creates a short-lived access token and reports when
// it expires.
func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	return j.sign(userID, kindAccess, "", accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token. The returned JTI
// keys the persisted session record.
func (j *JWT) GenerateRefreshToken(userID uuid.UUID) (string, string, time.Time, error) {
	jti := uuid.NewString()

	signed, expiresAt, err := j.sign(userID, kindRefresh, jti, refreshTTL)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return signed, jti, expiresAt, nil
}

func (j *JWT) parse(tokenString, kind string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := j.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s token: %w", kind, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s token is invalid", kind)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("token kind mismatch: %s", claims.Kind)
	}
	return claims, nil
}

// ParseAccessToken validates an access token and extracts the user ID.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims, err := j.parse(tokenString, kindAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// ParseRefreshToken validates a refresh token and extracts the user ID and JTI.
func (j *JWT) ParseRefreshToken(tokenString string) (uuid.UUID, string, error) {
	claims, err := j.parse(tokenString, kindRefresh)
	if err != nil {
		return uuid.Nil, "", err
	}
	return claims.UserID, claims.ID, nil
}
