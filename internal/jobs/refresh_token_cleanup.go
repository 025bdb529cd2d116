// refresh_token_cleanup.go implements the RefreshTokenCleanup background job,
// which periodically deletes refresh tokens that have gone unused for longer
// than the retention window. Stale rows only accumulate for accounts that
// stopped logging in, so the sweep is cheap and safe to run on any interval.
package jobs

import (
	"context"
	"log/slog"
	"time"
)

// RefreshTokenStore is the subset of the refresh token repository the cleanup
// job needs.
type RefreshTokenStore interface {
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RefreshTokenCleanup periodically removes refresh tokens past their retention
// window.
type RefreshTokenCleanup struct {
	store     RefreshTokenStore
	retention time.Duration
	interval  time.Duration
	stopChan  chan struct{}
}

// NewRefreshTokenCleanup creates a new RefreshTokenCleanup.
// retention is how long an untouched token survives; interval controls how
// often the sweep runs. Non-positive values fall back to 30 days and 1 hour.
func NewRefreshTokenCleanup(store RefreshTokenStore, retention, interval time.Duration) *RefreshTokenCleanup {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RefreshTokenCleanup{
		store:     store,
		retention: retention,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
// It runs an initial sweep immediately, then repeats on the configured
// interval. The loop exits when ctx is cancelled or Stop() is called.
func (j *RefreshTokenCleanup) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("Refresh token cleanup started",
		"retention", j.retention.String(),
		"interval", j.interval.String())

	// Run once immediately on startup
	j.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			j.runSweep(ctx)
		case <-j.stopChan:
			slog.Info("Refresh token cleanup stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop signals the cleanup loop to exit.
func (j *RefreshTokenCleanup) Stop() {
	close(j.stopChan)
}

func (j *RefreshTokenCleanup) runSweep(ctx context.Context) {
	purged, err := j.store.PurgeStale(ctx, j.retention)
	if err != nil {
		slog.Error("Refresh token cleanup sweep failed", "error", err)
		return
	}
	if purged > 0 {
		slog.Info("Purged stale refresh tokens", "count", purged)
	}
}
