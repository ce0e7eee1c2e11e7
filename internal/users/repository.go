package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the user does not exist
var ErrNotFound = errors.New("user not found")

// Repository persists user risk state
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Exists reports whether a user row is present
func (r *Repository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// GetRiskState fetches the enforcement posture for a user
func (r *Repository) GetRiskState(ctx context.Context, userID uuid.UUID) (*RiskState, error) {
	query := `SELECT id, is_frozen, is_throttled, risk_updated_at FROM users WHERE id = $1`

	var state RiskState
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&state.UserID,
		&state.IsFrozen,
		&state.IsThrottled,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &state, nil
}

// SetRiskState writes the enforcement posture for a user
func (r *Repository) SetRiskState(ctx context.Context, userID uuid.UUID, frozen, throttled bool) error {
	query := `
		UPDATE users
		SET is_frozen = $2, is_throttled = $3, risk_updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, frozen, throttled, time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
