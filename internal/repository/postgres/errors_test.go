package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fync-app/fync-server/internal/model"
)

func TestIsSetupRequired(t *testing.T) {
	missingTable := &pgconn.PgError{Code: codeUndefinedTable}
	assert.True(t, isSetupRequired(missingTable))
	assert.True(t, isSetupRequired(fmt.Errorf("query failed: %w", missingTable)))

	assert.False(t, isSetupRequired(errors.New("connection refused")))
	assert.False(t, isSetupRequired(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isSetupRequired(nil))
}

func TestUniqueConstraint(t *testing.T) {
	violation := &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "profiles_username_key"}
	assert.Equal(t, "profiles_username_key", uniqueConstraint(violation))
	assert.Equal(t, "profiles_username_key", uniqueConstraint(fmt.Errorf("insert failed: %w", violation)))

	assert.Equal(t, "", uniqueConstraint(&pgconn.PgError{Code: codeUndefinedTable}))
	assert.Equal(t, "", uniqueConstraint(errors.New("connection refused")))
}

func TestClassifyWriteError(t *testing.T) {
	repo := &ProfileRepository{}

	err := repo.classifyWriteError(&pgconn.PgError{Code: codeUndefinedTable}, "failed to upsert profile")
	require.ErrorIs(t, err, model.ErrSetupRequired)

	err = repo.classifyWriteError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "profiles_username_key"}, "failed to upsert profile")
	require.ErrorIs(t, err, model.ErrUsernameTaken)

	err = repo.classifyWriteError(&pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "profiles_email_key"}, "failed to upsert profile")
	require.ErrorIs(t, err, model.ErrProfileExists)

	plain := errors.New("connection reset")
	err = repo.classifyWriteError(plain, "failed to upsert profile")
	require.ErrorIs(t, err, plain)
	assert.Contains(t, err.Error(), "failed to upsert profile")
}
