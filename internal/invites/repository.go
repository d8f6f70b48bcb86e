package invites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oneteam-app/backend/internal/models"
)

// ErrNotFound is returned when the invite token does not exist.
var ErrNotFound = errors.New("invite not found")

// Repository handles invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invite repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new invite expiring after ttl.
func (r *Repository) Create(ctx context.Context, email string, ttl time.Duration) (*models.Invite, error) {
	const q = `INSERT INTO invites (email, expires_at) VALUES ($1, $2)
		RETURNING token, email, used, expires_at, created_at`
	var inv models.Invite
	err := r.pool.QueryRow(ctx, q, email, time.Now().Add(ttl)).
		Scan(&inv.Token, &inv.Email, &inv.Used, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetByToken returns an invite by token.
func (r *Repository) GetByToken(ctx context.Context, token uuid.UUID) (*models.Invite, error) {
	const q = `SELECT token, email, used, expires_at, created_at FROM invites WHERE token = $1`
	var inv models.Invite
	err := r.pool.QueryRow(ctx, q, token).
		Scan(&inv.Token, &inv.Email, &inv.Used, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// MarkUsed flags an invite as redeemed.
func (r *Repository) MarkUsed(ctx context.Context, token uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE invites SET used = TRUE WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
