//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fync-app/fync-server/internal/model"
	repo "github.com/fync-app/fync-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "fync_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/fync_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func createUser(ctx context.Context, t *testing.T, conn *repo.Connection, email string) model.User {
	t.Helper()
	ur := repo.NewUserRepository(conn)
	now := time.Now()
	saved, err := ur.Create(ctx, model.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   []byte("not-a-real-hash"),
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, err)
	return saved
}

func TestProfileRepository_Upsert_Idempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewProfileRepository(conn)
	user := createUser(ctx, t, conn, "idempotent@example.com")

	before, err := pr.Count(ctx)
	require.NoError(t, err)

	first, err := pr.Upsert(ctx, model.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Username: "firstname",
		Name:     "First Name",
		Bio:      "original bio",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, first.ID)

	// Second call for the same identity merges instead of failing.
	second, err := pr.Upsert(ctx, model.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Username: "firstname",
		Name:     "Renamed",
		Bio:      "updated bio",
		Location: "Berlin",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, second.ID)
	require.Equal(t, "Renamed", second.Name)
	require.Equal(t, "updated bio", second.Bio)
	require.Equal(t, "Berlin", second.Location)

	after, err := pr.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, before+1, after)
}

func TestProfileRepository_Upsert_PreservesImagesOnResubmit(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewProfileRepository(conn)
	user := createUser(ctx, t, conn, "images@example.com")

	imageURL := "http://localhost:9000/profile-pictures/img.jpg"
	_, err = pr.Upsert(ctx, model.Profile{
		ID:           user.ID,
		Email:        user.Email,
		Username:     "imageowner",
		Name:         "Image Owner",
		ProfileImage: &imageURL,
	})
	require.NoError(t, err)

	// A resubmitted signup step without an image must not erase it.
	merged, err := pr.Upsert(ctx, model.Profile{
		ID:       user.ID,
		Email:    user.Email,
		Username: "imageowner",
		Name:     "Image Owner",
	})
	require.NoError(t, err)
	require.NotNil(t, merged.ProfileImage)
	require.Equal(t, imageURL, *merged.ProfileImage)
}

func TestProfileRepository_Upsert_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pr := repo.NewProfileRepository(conn)
	first := createUser(ctx, t, conn, "taken1@example.com")
	second := createUser(ctx, t, conn, "taken2@example.com")

	_, err = pr.Upsert(ctx, model.Profile{
		ID:       first.ID,
		Email:    first.Email,
		Username: "duplicated",
		Name:     "First",
	})
	require.NoError(t, err)

	_, err = pr.Upsert(ctx, model.Profile{
		ID:       second.ID,
		Email:    second.Email,
		Username: "duplicated",
		Name:     "Second",
	})
	require.ErrorIs(t, err, model.ErrUsernameTaken)

	taken, err := pr.UsernameExists(ctx, "duplicated")
	require.NoError(t, err)
	require.True(t, taken)
}

func TestLinkStateRepository_Consume_ExactlyOnce(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	lr := repo.NewLinkStateRepository(conn)
	user := createUser(ctx, t, conn, "linkstate@example.com")

	pending := model.PendingLink{
		State:     "integration-state",
		UserID:    user.ID,
		Scopes:    "user-top-read",
		ExpiresAt: time.Now().Add(model.LinkStateDuration),
	}
	require.NoError(t, lr.Create(ctx, pending))

	require.NoError(t, lr.Consume(ctx, pending.State))

	// The second consume loses the conditional update.
	require.ErrorIs(t, lr.Consume(ctx, pending.State), model.ErrStateMismatch)

	stored, err := lr.GetByState(ctx, pending.State)
	require.NoError(t, err)
	require.True(t, stored.Consumed)
}

func TestRefreshTokenRepository_RotationLifecycle(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	rr := repo.NewRefreshTokenRepository(conn)
	user := createUser(ctx, t, conn, "tokens@example.com")

	now := time.Now()
	require.NoError(t, rr.Create(ctx, model.RefreshToken{
		ID:        uuid.New(),
		JTI:       "jti-first",
		UserID:    user.ID,
		TokenHash: []byte("hash-first"),
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}))

	stored, err := rr.GetByJTI(ctx, "jti-first")
	require.NoError(t, err)
	require.Nil(t, stored.RevokedAt)

	require.NoError(t, rr.RevokeByJTI(ctx, "jti-first"))

	rotatedFrom := "jti-first"
	require.NoError(t, rr.Create(ctx, model.RefreshToken{
		ID:             uuid.New(),
		JTI:            "jti-second",
		UserID:         user.ID,
		TokenHash:      []byte("hash-second"),
		IssuedAt:       now,
		ExpiresAt:      now.Add(time.Hour),
		RotatedFromJTI: &rotatedFrom,
	}))

	revoked, err := rr.GetByJTI(ctx, "jti-first")
	require.NoError(t, err)
	require.NotNil(t, revoked.RevokedAt)

	successor, err := rr.GetByJTI(ctx, "jti-second")
	require.NoError(t, err)
	require.NotNil(t, successor.RotatedFromJTI)
	require.Equal(t, "jti-first", *successor.RotatedFromJTI)

	// Revoking an already revoked token is a no-op.
	require.NoError(t, rr.RevokeByJTI(ctx, "jti-first"))

	require.NoError(t, rr.RevokeAllByUser(ctx, user.ID))
	successor, err = rr.GetByJTI(ctx, "jti-second")
	require.NoError(t, err)
	require.NotNil(t, successor.RevokedAt)

	_, err = rr.GetByJTI(ctx, "jti-unknown")
	require.ErrorIs(t, err, model.ErrNotFound)
}
