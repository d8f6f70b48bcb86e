package projects

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oneteam-app/backend/internal/models"
)

// ErrNotFound is returned when the project does not exist.
var ErrNotFound = errors.New("project not found")

// Repository handles project registry persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a project repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, name, project_code, COALESCE(crm_id,''), COALESCE(customer_name,''),
	COALESCE(product,''), COALESCE(country_code,''), amc_mso, COALESCE(contract_details,''),
	owner_id, COALESCE(common_contact_email,''), COALESCE(common_contact_number,''), created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Name, &p.ProjectCode, &p.CRMID, &p.CustomerName,
		&p.Product, &p.CountryCode, &p.AMCMso, &p.ContractDetails,
		&p.OwnerID, &p.CommonContactEmail, &p.CommonContactNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new project. The project code is derived from the country
// code and name.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	p.ProjectCode = models.DeriveProjectCode(p.CountryCode, p.Name)
	const q = `INSERT INTO projects (name, project_code, crm_id, customer_name, product, country_code,
		amc_mso, contract_details, owner_id, common_contact_email, common_contact_number)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), $7, NULLIF($8,''), $9, NULLIF($10,''), NULLIF($11,''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, p.Name, p.ProjectCode, p.CRMID, p.CustomerName, p.Product,
		p.CountryCode, string(p.AMCMso), p.ContractDetails, p.OwnerID, p.CommonContactEmail, p.CommonContactNumber).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a project by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

// List returns all projects ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ProjectCode, &p.CRMID, &p.CustomerName,
			&p.Product, &p.CountryCode, &p.AMCMso, &p.ContractDetails,
			&p.OwnerID, &p.CommonContactEmail, &p.CommonContactNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update rewrites a project's editable fields and re-derives the project code.
func (r *Repository) Update(ctx context.Context, p *models.Project) error {
	p.ProjectCode = models.DeriveProjectCode(p.CountryCode, p.Name)
	const q = `UPDATE projects SET name = $1, project_code = $2, crm_id = NULLIF($3,''),
		customer_name = NULLIF($4,''), product = NULLIF($5,''), country_code = NULLIF($6,''),
		amc_mso = $7, contract_details = NULLIF($8,''), owner_id = $9,
		common_contact_email = NULLIF($10,''), common_contact_number = NULLIF($11,''), updated_at = NOW()
		WHERE id = $12 RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, p.Name, p.ProjectCode, p.CRMID, p.CustomerName, p.Product,
		p.CountryCode, string(p.AMCMso), p.ContractDetails, p.OwnerID, p.CommonContactEmail,
		p.CommonContactNumber, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a project. The user_projects cascade unmaps it from every
// user, so no dangling mapped ids remain.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
