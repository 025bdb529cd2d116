// Package main is the entry point for the platform backend binary. It
// dispatches three subcommands, serve, migrate, and version, via a simple
// switch on os.Args so the binary's full CLI surface is readable in one place
// without requiring a cobra dependency. The serve command runs auto-migration
// on startup so freshly deployed containers never need a separate migration
// step.
package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/api"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/auth"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/config"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/safego"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/telemetry"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	switch command {
	case "serve":
		return serve(cfg)
	case "migrate":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: %s migrate <up|down>", os.Args[0])
		}
		return runMigrations(cfg, os.Args[2])
	case "version":
		fmt.Printf("Project Metadata Platform v%s\n", version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, migrate, version", command)
	}
}

func serve(cfg *config.Config) error {
	// Initialise structured logging as early as possible so all subsequent
	// output uses the configured format (json / text) and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	// Begin exporting DB pool statistics to Prometheus.
	telemetry.StartDBStatsCollector(database)

	slog.Info("running database migrations")
	if err := db.RunMigrations(database, "up"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := bootstrapAdmin(database); err != nil {
		return fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		slog.Info("connected to Redis", "addr", cfg.Redis.Addr)
	}

	// Prometheus metrics are served on a dedicated port so the scrape path
	// never passes the public ingress or the rate limiters.
	if cfg.Telemetry.Metrics.Enabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.Metrics.PrometheusPort)
		safego.Go(func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("starting Prometheus metrics server", "addr", metricsAddr)
			srv := &http.Server{
				Addr:         metricsAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		})
	}

	router, bgServices, err := api.NewRouter(cfg, database, redisClient)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.Server.GetAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop rate limiter goroutines after in-flight requests drained.
	bgServices.Shutdown()

	slog.Info("server stopped gracefully")
	return nil
}

// bootstrapAdmin creates the first account when the users table is empty,
// so a fresh deployment has a working login. The email comes from
// INITIAL_ADMIN_EMAIL (default admin@example.com); the password comes from
// INITIAL_ADMIN_PASSWORD or, absent that, is generated and printed once.
// Only the bcrypt hash is stored.
func bootstrapAdmin(database *sql.DB) error {
	ctx := context.Background()
	users := repositories.NewUserRepository(database)

	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("INITIAL_ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	password := os.Getenv("INITIAL_ADMIN_PASSWORD")
	generated := false
	if password == "" {
		raw := make([]byte, 24)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(raw)
		generated = true
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if err := users.Create(ctx, &models.User{Email: email, PasswordHash: hash}); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	if generated {
		separator := strings.Repeat("═", 66)
		log.Println("")
		log.Println(separator)
		log.Println("  INITIAL ADMIN ACCOUNT CREATED")
		log.Println("")
		log.Printf("  Email:    %s", email)
		log.Printf("  Password: %s", password)
		log.Println("")
		log.Println("  Change this password after the first login. It is printed")
		log.Println("  exactly once and only its hash is stored.")
		log.Println(separator)
		log.Println("")
	} else {
		slog.Info("created initial admin account", "email", email)
	}

	return nil
}

func runMigrations(cfg *config.Config, direction string) error {
	database, err := db.Connect(cfg.Database.GetDSN(), cfg.Database.MaxConnections, cfg.Database.MinIdleConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	slog.Info("running migrations", "direction", direction)

	if err := db.RunMigrations(database, direction); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("migration completed successfully")
	return nil
}
