// team_repository.go implements TeamRepository, providing database queries
// for team CRUD and lookup by name.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// TeamRepository handles database operations for teams
type TeamRepository struct {
	db *sql.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetByID retrieves a team by ID. Returns (nil, nil) when not found.
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	query := `
		SELECT id, team_name, business_unit, ptl, created_at, updated_at
		FROM teams
		WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.TeamName,
		&team.BusinessUnit,
		&team.PTL,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByName retrieves a team by its unique name. Returns (nil, nil) when not found.
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `
		SELECT id, team_name, business_unit, ptl, created_at, updated_at
		FROM teams
		WHERE team_name = $1
	`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&team.ID,
		&team.TeamName,
		&team.BusinessUnit,
		&team.PTL,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get team by name: %w", err)
	}

	return team, nil
}

// List retrieves all teams ordered by name
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, team_name, business_unit, ptl, created_at, updated_at
		FROM teams
		ORDER BY team_name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID,
			&team.TeamName,
			&team.BusinessUnit,
			&team.PTL,
			&team.CreatedAt,
			&team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Create inserts a new team and fills in its generated ID and timestamps
func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (team_name, business_unit, ptl)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, team.TeamName, team.BusinessUnit, team.PTL).Scan(
		&team.ID,
		&team.CreatedAt,
		&team.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// Update persists the mutable fields of a team
func (r *TeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET team_name = $2, business_unit = $3, ptl = $4, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, team.ID, team.TeamName, team.BusinessUnit, team.PTL)
	if err != nil {
		return fmt.Errorf("failed to update team: %w", err)
	}

	return nil
}

// Delete removes a team. Projects referencing it fall back to unassigned
// via ON DELETE SET NULL.
func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM teams WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	return nil
}
