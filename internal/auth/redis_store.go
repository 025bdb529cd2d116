// redis_store.go implements RefreshTokenStore on Redis for deployments that
// run multiple backend replicas: SET overwrites in one round trip, which keeps
// the one-active-token-per-user rule without a relational upsert.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultRefreshTokenTTL matches the retention window the Postgres store
// enforces with its background sweep.
const defaultRefreshTokenTTL = 30 * 24 * time.Hour

// RedisRefreshTokenStore stores refresh tokens as plain string values keyed by
// username. Every Put resets the key's TTL, so a token survives as long as the
// account keeps logging in and expires on its own once the account goes quiet.
type RedisRefreshTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRefreshTokenStore creates a store over an existing Redis client.
// A non-positive ttl falls back to the 30 day default.
func NewRedisRefreshTokenStore(client *redis.Client, ttl time.Duration) *RedisRefreshTokenStore {
	if ttl <= 0 {
		ttl = defaultRefreshTokenTTL
	}
	return &RedisRefreshTokenStore{client: client, ttl: ttl}
}

func (s *RedisRefreshTokenStore) key(username string) string {
	return "refresh_token:" + username
}

// Get returns the stored refresh token for the username, or "" when none.
func (s *RedisRefreshTokenStore) Get(ctx context.Context, username string) (string, error) {
	token, err := s.client.Get(ctx, s.key(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading refresh token: %w", err)
	}
	return token, nil
}

// Put stores the token with the retention TTL, overwriting any previous one
// for this username.
func (s *RedisRefreshTokenStore) Put(ctx context.Context, username, token string) error {
	if err := s.client.Set(ctx, s.key(username), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}
	return nil
}

// Delete removes the stored token. Deleting a non-existent key is not an error.
func (s *RedisRefreshTokenStore) Delete(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}
