package settings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oneteam-app/backend/internal/models"
)

// ErrNotFound is returned when a list entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Repository handles the shared configuration lists. Entries are rows, so
// concurrent administrators append and remove atomically instead of racing on
// a whole-list overwrite.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a settings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCountries returns countries in insertion order.
func (r *Repository) ListCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, code FROM countries ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.Name, &c.Code); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// AddCountry appends a country.
func (r *Repository) AddCountry(ctx context.Context, c models.Country) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO countries (code, name) VALUES ($1, $2) ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`,
		c.Code, c.Name)
	return err
}

// DeleteCountry removes a country by code.
func (r *Repository) DeleteCountry(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM countries WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDesignations returns designations in insertion order, most-senior last.
func (r *Repository) ListDesignations(ctx context.Context) ([]models.Designation, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, position FROM designations ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Designation
	for rows.Next() {
		var d models.Designation
		if err := rows.Scan(&d.Name, &d.Position); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// AddDesignation appends a designation.
func (r *Repository) AddDesignation(ctx context.Context, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO designations (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// DeleteDesignation removes a designation by name.
func (r *Repository) DeleteDesignation(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM designations WHERE name = $1`, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
