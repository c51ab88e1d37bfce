package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	access, expiresAt, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(accessTTL), expiresAt, time.Minute)

	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_RefreshToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	refresh, jti, expiresAt, err := j.GenerateRefreshToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, jti)
	require.WithinDuration(t, time.Now().Add(refreshTTL), expiresAt, time.Minute)

	gotUser, gotJTI, err := j.ParseRefreshToken(refresh)
	require.NoError(t, err)
	require.Equal(t, u, gotUser)
	require.Equal(t, jti, gotJTI)
}

func TestJWT_TokenKind_Mismatch(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	access, _, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	_, _, err = j.ParseRefreshToken(access)
	require.Error(t, err)

	refresh, _, _, err := j.GenerateRefreshToken(u)
	require.NoError(t, err)

	_, err = j.ParseAccessToken(refresh)
	require.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	j := NewJWT("secret")
	other := NewJWT("different")
	u := uuid.New()

	access, _, err := j.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = other.ParseAccessToken(access)
	require.Error(t, err)
}
