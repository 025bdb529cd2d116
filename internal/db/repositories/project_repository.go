// project_repository.go implements ProjectRepository, providing database queries
// for project CRUD, archiving, and filtered listing.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// ProjectRepository handles database operations for projects
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ProjectFilters contains filters for listing projects
type ProjectFilters struct {
	IncludeArchived bool
	TeamID          *int64
	Search          *string
}

// GetByID retrieves a project by ID. Returns (nil, nil) when not found.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `
		SELECT id, project_name, client_name, offer_id, company, company_state,
		       isms_level, is_archived, notes, team_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.ProjectName,
		&project.ClientName,
		&project.OfferID,
		&project.Company,
		&project.CompanyState,
		&project.IsmsLevel,
		&project.IsArchived,
		&project.Notes,
		&project.TeamID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// List retrieves projects matching the given filters, newest first
func (r *ProjectRepository) List(ctx context.Context, filters ProjectFilters) ([]*models.Project, error) {
	query := `
		SELECT id, project_name, client_name, offer_id, company, company_state,
		       isms_level, is_archived, notes, team_id, created_at, updated_at
		FROM projects
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	paramIndex := 1

	if !filters.IncludeArchived {
		query += ` AND is_archived = FALSE`
	}

	if filters.TeamID != nil {
		query += fmt.Sprintf(` AND team_id = $%d`, paramIndex)
		args = append(args, *filters.TeamID)
		paramIndex++
	}

	if filters.Search != nil {
		query += fmt.Sprintf(` AND (project_name ILIKE $%d OR client_name ILIKE $%d)`, paramIndex, paramIndex)
		args = append(args, "%"+*filters.Search+"%")
		paramIndex++
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project := &models.Project{}
		err := rows.Scan(
			&project.ID,
			&project.ProjectName,
			&project.ClientName,
			&project.OfferID,
			&project.Company,
			&project.CompanyState,
			&project.IsmsLevel,
			&project.IsArchived,
			&project.Notes,
			&project.TeamID,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// Create inserts a new project and fills in its generated ID and timestamps
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (project_name, client_name, offer_id, company, company_state, isms_level, notes, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_archived, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		project.ProjectName,
		project.ClientName,
		project.OfferID,
		project.Company,
		project.CompanyState,
		project.IsmsLevel,
		project.Notes,
		project.TeamID,
	).Scan(
		&project.ID,
		&project.IsArchived,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Update persists the mutable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET project_name = $2, client_name = $3, offer_id = $4, company = $5,
		    company_state = $6, isms_level = $7, notes = $8, team_id = $9,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.ProjectName,
		project.ClientName,
		project.OfferID,
		project.Company,
		project.CompanyState,
		project.IsmsLevel,
		project.Notes,
		project.TeamID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return nil
}

// SetArchived flips the archived flag of a project
func (r *ProjectRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	query := `
		UPDATE projects
		SET is_archived = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, archived)
	if err != nil {
		return fmt.Errorf("failed to set project archived: %w", err)
	}

	return nil
}

// Count returns the total number of projects
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}

	return count, nil
}
