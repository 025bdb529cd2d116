// refresh_token_repository.go implements RefreshTokenRepository, the default
// refresh-token store. One row per username; logins upsert so re-login
// invalidates the previous session's token.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RefreshTokenRepository handles database operations for refresh tokens
type RefreshTokenRepository struct {
	db *sql.DB
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Get returns the active refresh token stored for a username, or an empty
// string when none is stored
func (r *RefreshTokenRepository) Get(ctx context.Context, username string) (string, error) {
	query := `SELECT token FROM refresh_tokens WHERE username = $1`

	var token string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // Not found
		}
		return "", fmt.Errorf("failed to get refresh token: %w", err)
	}

	return token, nil
}

// Put stores the refresh token for a username, replacing any existing one
func (r *RefreshTokenRepository) Put(ctx context.Context, username, token string) error {
	query := `
		INSERT INTO refresh_tokens (username, token)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, username, token)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// PurgeStale deletes refresh tokens that have not been touched for the given
// duration. Returns the number of rows removed.
func (r *RefreshTokenRepository) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE updated_at < NOW() - $1::interval`

	result, err := r.db.ExecContext(ctx, query, fmt.Sprintf("%d seconds", int64(olderThan.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale refresh tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged refresh tokens: %w", err)
	}

	return rows, nil
}

// Delete removes the stored refresh token of a username, ending its refresh
// session
func (r *RefreshTokenRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM refresh_tokens WHERE username = $1`
	_, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}
