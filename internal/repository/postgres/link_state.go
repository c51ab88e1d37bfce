package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fync-app/fync-server/internal/model"
)

var _ model.LinkStateStore = (*LinkStateRepository)(nil)

type LinkStateRepository struct {
	db *Connection
}

func NewLinkStateRepository(db *Connection) *LinkStateRepository {
	return &LinkStateRepository{
		db: db,
	}
}

func (r *LinkStateRepository) Create(ctx context.Context, pendingLink model.PendingLink) error {
	query := `INSERT INTO spotify_link_states (state, user_id, scopes, expires_at, consumed)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		pendingLink.State, pendingLink.UserID, pendingLink.Scopes,
		pendingLink.ExpiresAt, pendingLink.Consumed,
	)
	if err != nil {
		return fmt.Errorf("failed to create pending link: %w", err)
	}

	return nil
}

func (r *LinkStateRepository) GetByState(ctx context.Context, state string) (model.PendingLink, error) {
	var pendingLink model.PendingLink
	query := `SELECT state, user_id, scopes, expires_at, consumed
			  FROM spotify_link_states WHERE state = $1`

	err := r.db.QueryRow(ctx, query, state).Scan(
		&pendingLink.State, &pendingLink.UserID, &pendingLink.Scopes,
		&pendingLink.ExpiresAt, &pendingLink.Consumed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PendingLink{}, model.ErrNotFound
		}
		return model.PendingLink{}, fmt.Errorf("failed to get pending link by state: %w", err)
	}

	return pendingLink, nil
}

// Consume marks the state used. The guard on consumed makes this atomic:
// exactly one caller wins, and a replayed state reports ErrStateMismatch
// instead of consuming twice.
func (r *LinkStateRepository) Consume(ctx context.Context, state string) error {
	query := `UPDATE spotify_link_states SET consumed = TRUE
			  WHERE state = $1 AND consumed = FALSE`

	tag, err := r.db.Exec(ctx, query, state)
	if err != nil {
		return fmt.Errorf("failed to consume link state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrStateMismatch
	}

	return nil
}
