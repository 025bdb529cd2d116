// Package api wires together all HTTP routes of the platform backend.
//
// Route grouping philosophy:
//   - /health and /health/ready are unauthenticated so orchestrators can probe
//     the process without credentials.
//   - /auth carries its own, much stricter rate limit: login is the one
//     endpoint an attacker can hammer without a token.
//   - Everything under /api/v1 requires a valid access token.
//
// Middleware ordering is Security -> RequestID -> Metrics -> Logger -> CORS,
// then per-group RateLimit and Auth. Security headers come first so they are
// present even on early aborts.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/api/handlers"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/auth"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/config"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/jobs"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/middleware"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/safego"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) is responsible for calling Shutdown()
// when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
	tokenCleanup *jobs.RefreshTokenCleanup
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.tokenCleanup != nil {
		bg.tokenCleanup.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router. redisClient may be nil;
// in that case the refresh-token store stays on Postgres and rate limiting
// stays in-memory.
func NewRouter(cfg *config.Config, db *sql.DB, redisClient *redis.Client) (*gin.Engine, *BackgroundServices, error) {
	router := gin.New()
	bg := &BackgroundServices{}

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing token service: %w", err)
	}

	var refreshStore auth.RefreshTokenStore = repositories.NewRefreshTokenRepository(db)
	if redisClient != nil {
		refreshStore = auth.NewRedisRefreshTokenStore(redisClient, 0)
	} else {
		// Postgres rows have no TTL, so a background sweep handles retention.
		// The Redis store expires entries via the per-key TTL set on Put.
		cleanup := jobs.NewRefreshTokenCleanup(repositories.NewRefreshTokenRepository(db), 0, 0)
		bg.tokenCleanup = cleanup
		safego.Go(func() { cleanup.Start(context.Background()) })
	}
	authSvc := auth.NewService(repositories.NewUserRepository(db), tokens, refreshStore)

	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))

	healthHandlers := handlers.NewHealthHandlers(db)
	router.GET("/health", healthHandlers.LivenessHandler())
	router.GET("/health/ready", healthHandlers.ReadinessHandler())

	authHandlers := handlers.NewAuthHandlers(authSvc)
	authGroup := router.Group("/auth")
	authGroup.Use(rateLimit(cfg, redisClient, middleware.AuthRateLimitConfig(), bg))
	{
		authGroup.PUT("/basic", authHandlers.LoginHandler())
		authGroup.POST("/refresh", authHandlers.RefreshHandler())
	}

	projectHandlers := handlers.NewProjectHandlers(db)
	projectPluginHandlers := handlers.NewProjectPluginHandlers(db)
	pluginHandlers := handlers.NewPluginHandlers(db)
	teamHandlers := handlers.NewTeamHandlers(db)
	userHandlers := handlers.NewUserHandlers(db)
	logHandlers := handlers.NewLogHandlers(db)

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit(cfg, redisClient, middleware.DefaultRateLimitConfig(), bg))
	v1.Use(middleware.AuthMiddleware(tokens))
	{
		v1.GET("/projects", projectHandlers.ListProjectsHandler())
		v1.GET("/projects/:id", projectHandlers.GetProjectHandler())
		v1.POST("/projects", projectHandlers.CreateProjectHandler())
		v1.PATCH("/projects/:id", projectHandlers.UpdateProjectHandler())
		v1.POST("/projects/:id/archive", projectHandlers.ArchiveProjectHandler())
		v1.POST("/projects/:id/unarchive", projectHandlers.UnarchiveProjectHandler())
		v1.GET("/projects/:id/plugins", projectPluginHandlers.ListProjectPluginsHandler())
		v1.PUT("/projects/:id/plugins", projectPluginHandlers.PutProjectPluginsHandler())

		v1.GET("/plugins", pluginHandlers.ListPluginsHandler())
		v1.GET("/plugins/:id", pluginHandlers.GetPluginHandler())
		v1.POST("/plugins", pluginHandlers.CreatePluginHandler())
		v1.PATCH("/plugins/:id", pluginHandlers.UpdatePluginHandler())
		v1.POST("/plugins/:id/archive", pluginHandlers.ArchivePluginHandler())
		v1.POST("/plugins/:id/unarchive", pluginHandlers.UnarchivePluginHandler())
		v1.DELETE("/plugins/:id", pluginHandlers.DeletePluginHandler())

		v1.GET("/teams", teamHandlers.ListTeamsHandler())
		v1.GET("/teams/:id", teamHandlers.GetTeamHandler())
		v1.POST("/teams", teamHandlers.CreateTeamHandler())
		v1.PATCH("/teams/:id", teamHandlers.UpdateTeamHandler())
		v1.DELETE("/teams/:id", teamHandlers.DeleteTeamHandler())

		v1.GET("/users", userHandlers.ListUsersHandler())
		v1.GET("/users/me", userHandlers.GetCurrentUserHandler())
		v1.GET("/users/:id", userHandlers.GetUserHandler())
		v1.POST("/users", userHandlers.CreateUserHandler())
		v1.PATCH("/users/:id/password", userHandlers.ChangePasswordHandler())
		v1.DELETE("/users/:id", userHandlers.DeleteUserHandler())

		v1.GET("/logs", logHandlers.ListLogsHandler())
	}

	return router, bg, nil
}

// rateLimit returns the configured limiter middleware for one route group.
// Redis-backed when a client is available, otherwise in-memory; in-memory
// limiters are registered for shutdown.
func rateLimit(cfg *config.Config, redisClient *redis.Client, limits middleware.RateLimitConfig, bg *BackgroundServices) gin.HandlerFunc {
	if !cfg.Security.RateLimiting.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	if redisClient != nil {
		return middleware.RedisRateLimitMiddleware(middleware.NewRedisRateLimiter(redisClient, limits))
	}
	limiter := middleware.NewRateLimiter(limits)
	bg.rateLimiters = append(bg.rateLimiters, limiter)
	return middleware.RateLimitMiddleware(limiter)
}

// LoggerMiddleware provides structured request logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
