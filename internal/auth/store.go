// store.go declares the refresh-token store contract shared by the Postgres
// repository and the Redis implementation.
package auth

import "context"

// RefreshTokenStore persists at most one active refresh token per username.
// Put overwrites any existing token (re-login invalidates the previous
// session); Get returns an empty string when no token is stored.
//
// Concurrent Put calls for the same username race with last-write-wins
// semantics. This is accepted: a user rarely logs in twice simultaneously,
// and the loser's pair simply fails its next refresh.
type RefreshTokenStore interface {
	Get(ctx context.Context, username string) (string, error)
	Put(ctx context.Context, username, token string) error
	// Delete removes the stored token, ending the user's refresh session.
	Delete(ctx context.Context, username string) error
}
