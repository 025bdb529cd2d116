// log_repository.go implements LogRepository, providing database queries for
// writing and reading audit log entries. Entries are insert-only; reads
// resolve the live actor identity by joining users on the captured label and
// reattach the ordered field changes.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// LogRepository handles audit log database operations
type LogRepository struct {
	db *sql.DB
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// LogFilters contains filters for querying audit log entries
type LogFilters struct {
	TargetKind *models.LogTargetKind
	TargetID   *int64
	// ActorLabel filters to entries written by one account (its email).
	ActorLabel *string
	Limit      int
	Offset     int
}

// CreateLog writes one audit log entry together with its ordered field
// changes in a single transaction, and fills in the generated entry ID
func (r *LogRepository) CreateLog(ctx context.Context, entry *models.Log) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin log transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO logs (actor_label, logged_at, target_kind, target_id, target_name, project_name, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		entry.ActorLabel,
		entry.Timestamp,
		entry.TargetKind,
		entry.TargetID,
		entry.TargetName,
		entry.ProjectName,
		entry.Action,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create log entry: %w", err)
	}

	changeQuery := `
		INSERT INTO log_changes (log_id, position, property, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i, change := range entry.Changes {
		_, err = tx.ExecContext(ctx, changeQuery, entry.ID, i, change.Property, change.OldValue, change.NewValue)
		if err != nil {
			return fmt.Errorf("failed to create log change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log entry: %w", err)
	}

	return nil
}

// List retrieves audit log entries matching the given filters, newest first.
// ActorEmail is populated only while the matching account still exists.
func (r *LogRepository) List(ctx context.Context, filters LogFilters) ([]*models.Log, error) {
	query := `
		SELECT l.id, u.email, l.actor_label, l.logged_at, l.target_kind,
		       l.target_id, l.target_name, l.project_name, l.action
		FROM logs l
		LEFT JOIN users u ON u.email = l.actor_label
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	paramIndex := 1

	if filters.TargetKind != nil {
		query += fmt.Sprintf(` AND l.target_kind = $%d`, paramIndex)
		args = append(args, *filters.TargetKind)
		paramIndex++
	}

	if filters.TargetID != nil {
		query += fmt.Sprintf(` AND l.target_id = $%d`, paramIndex)
		args = append(args, *filters.TargetID)
		paramIndex++
	}

	if filters.ActorLabel != nil {
		query += fmt.Sprintf(` AND l.actor_label = $%d`, paramIndex)
		args = append(args, *filters.ActorLabel)
		paramIndex++
	}

	query += ` ORDER BY l.logged_at DESC, l.id DESC`

	if filters.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.Log, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		entry := &models.Log{}
		err := rows.Scan(
			&entry.ID,
			&entry.ActorEmail,
			&entry.ActorLabel,
			&entry.Timestamp,
			&entry.TargetKind,
			&entry.TargetID,
			&entry.TargetName,
			&entry.ProjectName,
			&entry.Action,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		logs = append(logs, entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachChanges(ctx, logs, ids); err != nil {
		return nil, err
	}

	return logs, nil
}

// ListForProject retrieves the audit history of one project, newest first.
// This includes entries targeting the project itself and plugin-instance
// entries that carry the project's name.
func (r *LogRepository) ListForProject(ctx context.Context, projectID int64, projectName string) ([]*models.Log, error) {
	query := `
		SELECT l.id, u.email, l.actor_label, l.logged_at, l.target_kind,
		       l.target_id, l.target_name, l.project_name, l.action
		FROM logs l
		LEFT JOIN users u ON u.email = l.actor_label
		WHERE (l.target_kind = $1 AND l.target_id = $2) OR l.project_name = $3
		ORDER BY l.logged_at DESC, l.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, models.TargetProject, projectID, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to list project logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.Log, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		entry := &models.Log{}
		err := rows.Scan(
			&entry.ID,
			&entry.ActorEmail,
			&entry.ActorLabel,
			&entry.Timestamp,
			&entry.TargetKind,
			&entry.TargetID,
			&entry.TargetName,
			&entry.ProjectName,
			&entry.Action,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		logs = append(logs, entry)
		ids = append(ids, entry.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachChanges(ctx, logs, ids); err != nil {
		return nil, err
	}

	return logs, nil
}

// attachChanges loads the field changes for the given entries in one query
// and distributes them in position order
func (r *LogRepository) attachChanges(ctx context.Context, logs []*models.Log, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT log_id, property, old_value, new_value
		FROM log_changes
		WHERE log_id = ANY($1)
		ORDER BY log_id, position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load log changes: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Log, len(logs))
	for _, entry := range logs {
		byID[entry.ID] = entry
	}

	for rows.Next() {
		var logID int64
		change := models.LogChange{}
		if err := rows.Scan(&logID, &change.Property, &change.OldValue, &change.NewValue); err != nil {
			return fmt.Errorf("failed to scan log change: %w", err)
		}
		if entry, ok := byID[logID]; ok {
			entry.Changes = append(entry.Changes, change)
		}
	}

	return rows.Err()
}

// Count returns the total number of audit log entries
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM logs`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count logs: %w", err)
	}

	return count, nil
}
