// plugin_repository.go implements PluginRepository, providing database queries
// for the global plugin catalog: CRUD, archiving, and lookup by name.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// PluginRepository handles database operations for global plugins
type PluginRepository struct {
	db *sql.DB
}

// NewPluginRepository creates a new plugin repository
func NewPluginRepository(db *sql.DB) *PluginRepository {
	return &PluginRepository{db: db}
}

// GetByID retrieves a plugin by ID. Returns (nil, nil) when not found.
func (r *PluginRepository) GetByID(ctx context.Context, id int64) (*models.Plugin, error) {
	query := `
		SELECT id, plugin_name, base_url, is_archived, created_at, updated_at
		FROM plugins
		WHERE id = $1
	`

	plugin := &models.Plugin{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plugin.ID,
		&plugin.PluginName,
		&plugin.BaseURL,
		&plugin.IsArchived,
		&plugin.CreatedAt,
		&plugin.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get plugin: %w", err)
	}

	return plugin, nil
}

// GetByName retrieves a plugin by its unique name. Returns (nil, nil) when not found.
func (r *PluginRepository) GetByName(ctx context.Context, name string) (*models.Plugin, error) {
	query := `
		SELECT id, plugin_name, base_url, is_archived, created_at, updated_at
		FROM plugins
		WHERE plugin_name = $1
	`

	plugin := &models.Plugin{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&plugin.ID,
		&plugin.PluginName,
		&plugin.BaseURL,
		&plugin.IsArchived,
		&plugin.CreatedAt,
		&plugin.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get plugin by name: %w", err)
	}

	return plugin, nil
}

// List retrieves global plugins ordered by name, optionally including archived ones
func (r *PluginRepository) List(ctx context.Context, includeArchived bool) ([]*models.Plugin, error) {
	query := `
		SELECT id, plugin_name, base_url, is_archived, created_at, updated_at
		FROM plugins
	`
	if !includeArchived {
		query += ` WHERE is_archived = FALSE`
	}
	query += ` ORDER BY plugin_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plugins: %w", err)
	}
	defer rows.Close()

	plugins := make([]*models.Plugin, 0)
	for rows.Next() {
		plugin := &models.Plugin{}
		err := rows.Scan(
			&plugin.ID,
			&plugin.PluginName,
			&plugin.BaseURL,
			&plugin.IsArchived,
			&plugin.CreatedAt,
			&plugin.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plugin: %w", err)
		}
		plugins = append(plugins, plugin)
	}

	return plugins, rows.Err()
}

// Create inserts a new catalog plugin and fills in its generated ID and timestamps
func (r *PluginRepository) Create(ctx context.Context, plugin *models.Plugin) error {
	query := `
		INSERT INTO plugins (plugin_name, base_url)
		VALUES ($1, $2)
		RETURNING id, is_archived, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, plugin.PluginName, plugin.BaseURL).Scan(
		&plugin.ID,
		&plugin.IsArchived,
		&plugin.CreatedAt,
		&plugin.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create plugin: %w", err)
	}

	return nil
}

// Update persists the mutable fields of a catalog plugin
func (r *PluginRepository) Update(ctx context.Context, plugin *models.Plugin) error {
	query := `
		UPDATE plugins
		SET plugin_name = $2, base_url = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, plugin.ID, plugin.PluginName, plugin.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to update plugin: %w", err)
	}

	return nil
}

// SetArchived flips the archived flag of a catalog plugin
func (r *PluginRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	query := `
		UPDATE plugins
		SET is_archived = $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, archived)
	if err != nil {
		return fmt.Errorf("failed to set plugin archived: %w", err)
	}

	return nil
}

// Delete removes a catalog plugin. Project instances of it are removed by
// cascade.
func (r *PluginRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM plugins WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete plugin: %w", err)
	}

	return nil
}
