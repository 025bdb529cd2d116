// project_plugin_repository.go implements ProjectPluginRepository, providing
// database queries for the plugin instances attached to a project.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// ProjectPluginRepository handles database operations for project plugin instances
type ProjectPluginRepository struct {
	db *sql.DB
}

// NewProjectPluginRepository creates a new project plugin repository
func NewProjectPluginRepository(db *sql.DB) *ProjectPluginRepository {
	return &ProjectPluginRepository{db: db}
}

// GetByID retrieves a plugin instance by ID. Returns (nil, nil) when not found.
func (r *ProjectPluginRepository) GetByID(ctx context.Context, id int64) (*models.ProjectPlugin, error) {
	query := `
		SELECT id, project_id, plugin_id, url, display_name, created_at, updated_at
		FROM project_plugins
		WHERE id = $1
	`

	pp := &models.ProjectPlugin{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pp.ID,
		&pp.ProjectID,
		&pp.PluginID,
		&pp.URL,
		&pp.DisplayName,
		&pp.CreatedAt,
		&pp.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get project plugin: %w", err)
	}

	return pp, nil
}

// ListByProject retrieves all plugin instances of a project, oldest first so
// the attachment order is stable across reads
func (r *ProjectPluginRepository) ListByProject(ctx context.Context, projectID int64) ([]*models.ProjectPlugin, error) {
	query := `
		SELECT id, project_id, plugin_id, url, display_name, created_at, updated_at
		FROM project_plugins
		WHERE project_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project plugins: %w", err)
	}
	defer rows.Close()

	plugins := make([]*models.ProjectPlugin, 0)
	for rows.Next() {
		pp := &models.ProjectPlugin{}
		err := rows.Scan(
			&pp.ID,
			&pp.ProjectID,
			&pp.PluginID,
			&pp.URL,
			&pp.DisplayName,
			&pp.CreatedAt,
			&pp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project plugin: %w", err)
		}
		plugins = append(plugins, pp)
	}

	return plugins, rows.Err()
}

// Create attaches a plugin instance to a project and fills in its generated
// ID and timestamps
func (r *ProjectPluginRepository) Create(ctx context.Context, pp *models.ProjectPlugin) error {
	query := `
		INSERT INTO project_plugins (project_id, plugin_id, url, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, pp.ProjectID, pp.PluginID, pp.URL, pp.DisplayName).Scan(
		&pp.ID,
		&pp.CreatedAt,
		&pp.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create project plugin: %w", err)
	}

	return nil
}

// Update persists the mutable fields of a plugin instance
func (r *ProjectPluginRepository) Update(ctx context.Context, pp *models.ProjectPlugin) error {
	query := `
		UPDATE project_plugins
		SET url = $2, display_name = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, pp.ID, pp.URL, pp.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to update project plugin: %w", err)
	}

	return nil
}

// Delete detaches a plugin instance from its project
func (r *ProjectPluginRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM project_plugins WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project plugin: %w", err)
	}

	return nil
}
