package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fync-app/fync-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	query := `SELECT id, email, password_hash, email_confirmed, confirmation_token, reset_token, created_at, updated_at, deleted_at
			  FROM users WHERE email = $1 AND deleted_at IS NULL`

	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.ConfirmationToken, &user.ResetToken,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isSetupRequired(err) {
			return model.User{}, model.ErrSetupRequired
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	query := `SELECT id, email, password_hash, email_confirmed, confirmation_token, reset_token, created_at, updated_at, deleted_at
			  FROM users WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.ConfirmationToken, &user.ResetToken,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isSetupRequired(err) {
			return model.User{}, model.ErrSetupRequired
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, password_hash, email_confirmed, confirmation_token, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, email, password_hash, email_confirmed, confirmation_token, reset_token, created_at, updated_at, deleted_at`

	var savedUser model.User
	err := r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.EmailConfirmed, user.ConfirmationToken,
		user.CreatedAt, user.UpdatedAt,
	).Scan(
		&savedUser.ID, &savedUser.Email, &savedUser.PasswordHash, &savedUser.EmailConfirmed,
		&savedUser.ConfirmationToken, &savedUser.ResetToken, &savedUser.CreatedAt, &savedUser.UpdatedAt, &savedUser.DeletedAt,
	)
	if err != nil {
		if isSetupRequired(err) {
			return model.User{}, model.ErrSetupRequired
		}
		if uniqueConstraint(err) != "" {
			return model.User{}, model.ErrProfileExists
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) ConfirmByToken(ctx context.Context, token string) (model.User, error) {
	query := `UPDATE users SET email_confirmed = TRUE, confirmation_token = NULL, updated_at = NOW()
			  WHERE confirmation_token = $1 AND deleted_at IS NULL
			  RETURNING id, email, password_hash, email_confirmed, confirmation_token, reset_token, created_at, updated_at, deleted_at`

	var user model.User
	err := r.db.QueryRow(ctx, query, token).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.ConfirmationToken, &user.ResetToken,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to confirm user by token: %w", err)
	}

	return user, nil
}

func (r *UserRepository) SetConfirmationToken(ctx context.Context, email, token string) error {
	query := `UPDATE users SET confirmation_token = $2, updated_at = NOW()
			  WHERE email = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, email, token)
	if err != nil {
		return fmt.Errorf("failed to set confirmation token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, email, token string) error {
	query := `UPDATE users SET reset_token = $2, updated_at = NOW()
			  WHERE email = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, email, token)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
