package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oneteam-app/backend/internal/hierarchy"
	"github.com/oneteam-app/backend/internal/models"
)

var (
	// ErrReportingCycle is returned when a reporting_to edit would close a cycle.
	ErrReportingCycle = errors.New("reporting chain would form a cycle")
	// ErrOwnsProject blocks deleting a user who owns a project.
	ErrOwnsProject = errors.New("user owns a project")
	// ErrHasSubordinates blocks deleting a user others report to.
	ErrHasSubordinates = errors.New("user has subordinates")
	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")
)

// MappingInUseError reports an unmapping blocked by a subordinate that still
// holds the project.
type MappingInUseError struct {
	ProjectID   uuid.UUID
	ProjectName string
	UserID      uuid.UUID
	UserName    string
}

func (e *MappingInUseError) Error() string {
	return fmt.Sprintf("project %q is still mapped to subordinate %q", e.ProjectName, e.UserName)
}

// Repository handles user directory persistence. Mapping edits run through the
// propagator inside a single transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.email, u.display_name, COALESCE(u.designation,''), u.reporting_to,
	COALESCE(u.contact_number,''), u.is_admin, COALESCE(u.password_hash,''), u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Designation, &u.ReportingTo,
		&u.ContactNumber, &u.IsAdmin, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user with their mapped projects.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		return nil, err
	}
	if u.MappedProjects, err = r.mappedProjects(ctx, r.pool, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail returns a user with their mapped projects.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email))
	if err != nil {
		return nil, err
	}
	if u.MappedProjects, err = r.mappedProjects(ctx, r.pool, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// queryer is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) mappedProjects(ctx context.Context, q queryer, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, `SELECT project_id FROM user_projects WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// List returns all users with their mapped projects, ordered by display name.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	return r.listWith(ctx, r.pool)
}

func (r *Repository) listWith(ctx context.Context, q queryer) ([]models.User, error) {
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users u ORDER BY u.display_name, u.email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.User
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Designation, &u.ReportingTo,
			&u.ContactNumber, &u.IsAdmin, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		index[u.ID] = len(list)
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := q.Query(ctx, `SELECT user_id, project_id FROM user_projects`)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var userID, projectID uuid.UUID
		if err := mrows.Scan(&userID, &projectID); err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			list[i].MappedProjects = append(list[i].MappedProjects, projectID)
		}
	}
	return list, mrows.Err()
}

// CreateParams holds the fields for a new user.
type CreateParams struct {
	Email          string
	DisplayName    string
	Designation    string
	ReportingTo    *uuid.UUID
	ContactNumber  string
	IsAdmin        bool
	PasswordHash   string
	MappedProjects []uuid.UUID
}

// Create inserts a user and, when a manager is preset, propagates the initial
// mapped projects up the chain in the same transaction.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.User, error) {
	if p.DisplayName == "" {
		p.DisplayName = models.DefaultDisplayName(p.Email)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	directory, err := r.listWith(ctx, tx)
	if err != nil {
		return nil, err
	}

	const q = `INSERT INTO users (email, display_name, designation, reporting_to, contact_number, is_admin, password_hash)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6, NULLIF($7,''))
		RETURNING id, created_at, updated_at`
	var u models.User
	u.Email, u.DisplayName, u.Designation = p.Email, p.DisplayName, p.Designation
	u.ReportingTo, u.ContactNumber, u.IsAdmin = p.ReportingTo, p.ContactNumber, p.IsAdmin
	if err := tx.QueryRow(ctx, q, p.Email, p.DisplayName, p.Designation, p.ReportingTo,
		p.ContactNumber, p.IsAdmin, p.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	if len(p.MappedProjects) > 0 {
		if err := insertMappings(ctx, tx, u.ID, p.MappedProjects); err != nil {
			return nil, err
		}
		u.MappedProjects = p.MappedProjects
		// New user is not in the snapshot yet; propagate from the manager's chain.
		if p.ReportingTo != nil {
			targets := append([]uuid.UUID{*p.ReportingTo}, AncestorChain(directory, *p.ReportingTo)...)
			for _, ancestorID := range targets {
				if err := insertMappings(ctx, tx, ancestorID, p.MappedProjects); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateParams holds the editable fields of a user. MappedProjects is the full
// requested set; the repository diffs it against the stored set.
type UpdateParams struct {
	DisplayName    string
	Designation    string
	ReportingTo    *uuid.UUID
	ContactNumber  string
	IsAdmin        bool
	MappedProjects []uuid.UUID
}

// Update applies an edit as one atomic batch: cycle check, removal guard,
// the user's own row, and the upward propagation of added mappings. On any
// validation failure nothing is written.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	directory, err := r.listWith(ctx, tx)
	if err != nil {
		return nil, err
	}
	var current *models.User
	for i := range directory {
		if directory[i].ID == id {
			current = &directory[i]
			break
		}
	}
	if current == nil {
		return nil, ErrNotFound
	}

	if hierarchy.WouldCycle(directory, id, p.ReportingTo) {
		return nil, ErrReportingCycle
	}

	added, removed := DiffMappings(current.MappedProjects, p.MappedProjects)
	if len(removed) > 0 {
		if conflict := FindRemovalConflict(directory, id, removed); conflict != nil {
			return nil, r.describeConflict(ctx, directory, conflict)
		}
	}
	propagate := PropagationSet(current.ReportingTo, p.ReportingTo, added, p.MappedProjects)

	const q = `UPDATE users SET display_name = $1, designation = NULLIF($2,''), reporting_to = $3,
		contact_number = NULLIF($4,''), is_admin = $5, updated_at = NOW()
		WHERE id = $6 RETURNING created_at, updated_at`
	u := models.User{ID: id, Email: current.Email, DisplayName: p.DisplayName, Designation: p.Designation,
		ReportingTo: p.ReportingTo, ContactNumber: p.ContactNumber, IsAdmin: p.IsAdmin,
		MappedProjects: dedupe(p.MappedProjects)}
	if err := tx.QueryRow(ctx, q, p.DisplayName, p.Designation, p.ReportingTo,
		p.ContactNumber, p.IsAdmin, id).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}

	for _, pid := range removed {
		if _, err := tx.Exec(ctx, `DELETE FROM user_projects WHERE user_id = $1 AND project_id = $2`, id, pid); err != nil {
			return nil, err
		}
	}
	if len(added) > 0 {
		if err := insertMappings(ctx, tx, id, added); err != nil {
			return nil, err
		}
	}
	if len(propagate) > 0 {
		// Propagate along the chain as it stands after this edit.
		current.ReportingTo = p.ReportingTo
		for ancestorID, pids := range PlanAdditions(directory, id, propagate) {
			if err := insertMappings(ctx, tx, ancestorID, pids); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes a user. Fails while the user owns a project or has reports.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	var owns bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE owner_id = $1)`, id).Scan(&owns); err != nil {
		return err
	}
	if owns {
		return ErrOwnsProject
	}
	var hasReports bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE reporting_to = $1)`, id).Scan(&hasReports); err != nil {
		return err
	}
	if hasReports {
		return ErrHasSubordinates
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) describeConflict(ctx context.Context, directory []models.User, c *RemovalConflict) error {
	out := &MappingInUseError{ProjectID: c.ProjectID, UserID: c.UserID,
		ProjectName: c.ProjectID.String(), UserName: c.UserID.String()}
	for i := range directory {
		if directory[i].ID == c.UserID {
			out.UserName = directory[i].DisplayName
			break
		}
	}
	var name string
	if err := r.pool.QueryRow(ctx, `SELECT name FROM projects WHERE id = $1`, c.ProjectID).Scan(&name); err == nil {
		out.ProjectName = name
	}
	return out
}

func insertMappings(ctx context.Context, tx pgx.Tx, userID uuid.UUID, projectIDs []uuid.UUID) error {
	for _, pid := range projectIDs {
		const q = `INSERT INTO user_projects (user_id, project_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, q, userID, pid); err != nil {
			return err
		}
	}
	return nil
}
