// ratelimit_redis.go provides the Redis-backed rate limiter used when several
// instances share one limit (GCRA via redis_rate). Enabled together with the
// Redis refresh-token store.
package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces a shared per-client rate limit across instances
type RedisRateLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
}

// NewRedisRateLimiter creates a Redis-backed limiter from the same config the
// in-memory limiter uses
func NewRedisRateLimiter(client *redis.Client, config RateLimitConfig) *RedisRateLimiter {
	limit := redis_rate.PerMinute(config.RequestsPerMinute)
	limit.Burst = config.BurstSize
	return &RedisRateLimiter{
		limiter: redis_rate.NewLimiter(client),
		limit:   limit,
	}
}

// RedisRateLimitMiddleware creates a Gin middleware that rate limits requests
// against the shared Redis limiter. Redis failures fail open: a rate limiter
// outage must not take the API down with it.
func RedisRateLimitMiddleware(rl *RedisRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := getRateLimitKey(c)

		res, err := rl.limiter.Allow(c.Request.Context(), key, rl.limit)
		if err != nil {
			c.Next()
			return
		}

		if res.Allowed == 0 {
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		c.Next()
	}
}
