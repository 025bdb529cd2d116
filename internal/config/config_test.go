package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.GetDSN
// ---------------------------------------------------------------------------

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "pmp",
				Password: "secret",
				Name:     "project_metadata_platform",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 user=pmp password=secret dbname=project_metadata_platform sslmode=require",
		},
		{
			name: "disable ssl mode",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "admin",
				Password: "pass",
				Name:     "mydb",
				SSLMode:  "disable",
			},
			want: "host=db.example.com port=5433 user=admin password=pass dbname=mydb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetDSN()
			if got != tt.want {
				t.Errorf("GetDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// secretFromEnv
// ---------------------------------------------------------------------------

func TestSecretFromEnv(t *testing.T) {
	t.Run("direct value wins", func(t *testing.T) {
		t.Setenv("PMP_TEST_SECRET", "direct-value")
		got, err := secretFromEnv("PMP_TEST_SECRET")
		if err != nil {
			t.Fatalf("secretFromEnv() error: %v", err)
		}
		if got != "direct-value" {
			t.Errorf("secretFromEnv() = %q, want %q", got, "direct-value")
		}
	})

	t.Run("file indirection", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "secret")
		if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PMP_TEST_SECRET", "")
		t.Setenv("PMP_TEST_SECRET_FILE", path)

		got, err := secretFromEnv("PMP_TEST_SECRET")
		if err != nil {
			t.Fatalf("secretFromEnv() error: %v", err)
		}
		if got != "from-file" {
			t.Errorf("secretFromEnv() = %q, want trimmed file content", got)
		}
	})

	t.Run("missing file path errors", func(t *testing.T) {
		t.Setenv("PMP_TEST_SECRET", "")
		t.Setenv("PMP_TEST_SECRET_FILE", "/nonexistent/secret")
		if _, err := secretFromEnv("PMP_TEST_SECRET"); err == nil {
			t.Error("secretFromEnv() expected error for unreadable file, got nil")
		}
	})

	t.Run("absence of both forms errors", func(t *testing.T) {
		t.Setenv("PMP_TEST_SECRET", "")
		t.Setenv("PMP_TEST_SECRET_FILE", "")
		_, err := secretFromEnv("PMP_TEST_SECRET")
		if err == nil {
			t.Fatal("secretFromEnv() expected error, got nil")
		}
		if !strings.Contains(err.Error(), "PMP_TEST_SECRET_FILE") {
			t.Errorf("error should name the _FILE fallback, got: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// loadJWT
// ---------------------------------------------------------------------------

func setJWTEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_VALID_ISSUER", "project-metadata-platform")
	t.Setenv("JWT_VALID_AUDIENCE", "pmp-frontend")
	t.Setenv("JWT_ISSUER_SIGNING_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("ACCESS_TOKEN_EXPIRATION_MINUTES", "15")
	t.Setenv("JWT_VALID_ISSUER_FILE", "")
	t.Setenv("JWT_VALID_AUDIENCE_FILE", "")
	t.Setenv("JWT_ISSUER_SIGNING_KEY_FILE", "")
	t.Setenv("ACCESS_TOKEN_EXPIRATION_MINUTES_FILE", "")
}

func TestLoadJWT(t *testing.T) {
	t.Run("all settings present", func(t *testing.T) {
		setJWTEnv(t)
		cfg, err := loadJWT()
		if err != nil {
			t.Fatalf("loadJWT() error: %v", err)
		}
		if cfg.ValidIssuer != "project-metadata-platform" {
			t.Errorf("ValidIssuer = %q", cfg.ValidIssuer)
		}
		if cfg.AccessTokenExpiration != 15*time.Minute {
			t.Errorf("AccessTokenExpiration = %v, want 15m", cfg.AccessTokenExpiration)
		}
	})

	t.Run("signing key via file", func(t *testing.T) {
		setJWTEnv(t)
		path := filepath.Join(t.TempDir(), "jwt-key")
		if err := os.WriteFile(path, []byte("file-sourced-signing-key-32-bytes!!"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("JWT_ISSUER_SIGNING_KEY", "")
		t.Setenv("JWT_ISSUER_SIGNING_KEY_FILE", path)

		cfg, err := loadJWT()
		if err != nil {
			t.Fatalf("loadJWT() error: %v", err)
		}
		if cfg.SigningKey != "file-sourced-signing-key-32-bytes!!" {
			t.Errorf("SigningKey = %q, want file content", cfg.SigningKey)
		}
	})

	t.Run("missing issuer fails", func(t *testing.T) {
		setJWTEnv(t)
		t.Setenv("JWT_VALID_ISSUER", "")
		if _, err := loadJWT(); err == nil {
			t.Error("loadJWT() expected error for missing issuer, got nil")
		}
	})

	t.Run("non-numeric expiration fails", func(t *testing.T) {
		setJWTEnv(t)
		t.Setenv("ACCESS_TOKEN_EXPIRATION_MINUTES", "soon")
		if _, err := loadJWT(); err == nil {
			t.Error("loadJWT() expected error for non-numeric expiration, got nil")
		}
	})

	t.Run("zero expiration fails", func(t *testing.T) {
		setJWTEnv(t)
		t.Setenv("ACCESS_TOKEN_EXPIRATION_MINUTES", "0")
		if _, err := loadJWT(); err == nil {
			t.Error("loadJWT() expected error for zero expiration, got nil")
		}
	})
}

// ---------------------------------------------------------------------------
// JWTConfig.Validate
// ---------------------------------------------------------------------------

func TestJWTConfigValidate(t *testing.T) {
	valid := JWTConfig{
		ValidIssuer:           "iss",
		ValidAudience:         "aud",
		SigningKey:            strings.Repeat("k", 32),
		AccessTokenExpiration: 5 * time.Minute,
	}

	t.Run("valid", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("short signing key", func(t *testing.T) {
		cfg := valid
		cfg.SigningKey = "short"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for short signing key, got nil")
		}
	})

	t.Run("missing audience", func(t *testing.T) {
		cfg := valid
		cfg.ValidAudience = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing audience, got nil")
		}
	})
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	t.Run("defaults with env JWT contract", func(t *testing.T) {
		setJWTEnv(t)
		cfg, err := Load(filepath.Join(t.TempDir(), "no-config.yaml"))
		if err == nil {
			// Explicit path that does not exist is an error; that is the
			// documented behavior of viper.SetConfigFile.
			t.Skip("viper accepted missing explicit config file")
		}
		_ = cfg
	})

	t.Run("yaml overridden by env", func(t *testing.T) {
		setJWTEnv(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := "database:\n  host: yaml-host\n  ssl_mode: disable\n"
		if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PMP_DATABASE_HOST", "env-host")

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Database.Host != "env-host" {
			t.Errorf("Database.Host = %q, want env override", cfg.Database.Host)
		}
		if cfg.Database.SSLMode != "disable" {
			t.Errorf("Database.SSLMode = %q, want yaml value", cfg.Database.SSLMode)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
		}
	})

	t.Run("missing JWT settings fail fast", func(t *testing.T) {
		setJWTEnv(t)
		t.Setenv("JWT_ISSUER_SIGNING_KEY", "")
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("Load() expected error when signing key is absent, got nil")
		}
	})
}
