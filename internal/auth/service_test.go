package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// ---------------------------------------------------------------------------
// In-memory fakes
// ---------------------------------------------------------------------------

type fakeUserStore struct {
	users map[string]*models.User
	err   error
}

func (s *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[email], nil
}

type memoryRefreshStore struct {
	tokens map[string]string
	err    error
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{tokens: make(map[string]string)}
}

func (s *memoryRefreshStore) Get(_ context.Context, username string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.tokens[username], nil
}

func (s *memoryRefreshStore) Put(_ context.Context, username, token string) error {
	if s.err != nil {
		return s.err
	}
	s.tokens[username] = token
	return nil
}

func (s *memoryRefreshStore) Delete(_ context.Context, username string) error {
	delete(s.tokens, username)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore, *memoryRefreshStore) {
	t.Helper()
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	users := &fakeUserStore{users: map[string]*models.User{
		"admin@example.com": {ID: 1, Email: "admin@example.com", PasswordHash: hash},
	}}
	refresh := newMemoryRefreshStore()
	return NewService(users, newTestTokenService(t), refresh), users, refresh
}

// ---------------------------------------------------------------------------
// VerifyCredentials
// ---------------------------------------------------------------------------

func TestVerifyCredentials(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	t.Run("correct password", func(t *testing.T) {
		ok, err := svc.VerifyCredentials(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatalf("VerifyCredentials() error: %v", err)
		}
		if !ok {
			t.Error("VerifyCredentials() = false, want true")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, err := svc.VerifyCredentials(ctx, "admin@example.com", "wrongpassword")
		if err != nil {
			t.Fatalf("VerifyCredentials() error: %v", err)
		}
		if ok {
			t.Error("VerifyCredentials() = true, want false")
		}
	})

	t.Run("unknown username indistinguishable from wrong password", func(t *testing.T) {
		ok, err := svc.VerifyCredentials(ctx, "nonexistent@example.com", "anything")
		if err != nil {
			t.Fatalf("VerifyCredentials() error: %v", err)
		}
		if ok {
			t.Error("VerifyCredentials() = true, want false")
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		users.err = errors.New("connection refused")
		defer func() { users.err = nil }()
		if _, err := svc.VerifyCredentials(ctx, "admin@example.com", "x"); err == nil {
			t.Error("VerifyCredentials() expected store error, got nil")
		}
	})
}

// ---------------------------------------------------------------------------
// Login / Refresh flows
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues pair and stores refresh token", func(t *testing.T) {
		svc, _, refresh := newTestService(t)
		pair, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatalf("Login() error: %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Fatal("Login() returned empty token(s)")
		}
		if refresh.tokens["admin@example.com"] != pair.RefreshToken {
			t.Error("stored refresh token does not match issued one")
		}
	})

	t.Run("bad credentials yield tagged error", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Login(ctx, "admin@example.com", "wrongpassword")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("second login overwrites refresh token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		first, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatal(err)
		}
		second, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatal(err)
		}
		if first.RefreshToken == second.RefreshToken {
			t.Fatal("relogin must mint a new refresh token")
		}

		// The first pair is now invalid.
		if _, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("Refresh() with stale token error = %v, want ErrInvalidRefreshToken", err)
		}
		// The second pair still works.
		if _, err := svc.Refresh(ctx, second.AccessToken, second.RefreshToken); err != nil {
			t.Errorf("Refresh() with current pair error: %v", err)
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves subject and refresh token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		pair, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatal(err)
		}

		renewed, err := svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error: %v", err)
		}
		if renewed.RefreshToken != pair.RefreshToken {
			t.Error("refresh token must be returned unchanged")
		}

		claims, err := svc.tokens.ValidateAccessToken(renewed.AccessToken)
		if err != nil {
			t.Fatalf("renewed access token invalid: %v", err)
		}
		if claims.Subject != "admin@example.com" {
			t.Errorf("renewed subject = %q", claims.Subject)
		}
	})

	t.Run("expired access token still refreshes", func(t *testing.T) {
		svc, _, refresh := newTestService(t)
		expired := tokenExpiredFor(t, svc.tokens, time.Hour)
		refresh.tokens["jane.doe@example.com"] = "stored-refresh-token"

		renewed, err := svc.Refresh(ctx, expired, "stored-refresh-token")
		if err != nil {
			t.Fatalf("Refresh() with expired access token error: %v", err)
		}
		if _, err := svc.tokens.ValidateAccessToken(renewed.AccessToken); err != nil {
			t.Errorf("renewed token should pass full validation: %v", err)
		}
	})

	t.Run("tampered access token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Refresh(ctx, "not.a.token", "whatever")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Refresh() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("mismatched refresh token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		pair, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatal(err)
		}
		_, err = svc.Refresh(ctx, pair.AccessToken, "some-other-token")
		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("Refresh() error = %v, want ErrInvalidRefreshToken", err)
		}
	})

	t.Run("no stored refresh token", func(t *testing.T) {
		svc, _, refresh := newTestService(t)
		pair, err := svc.Login(ctx, "admin@example.com", "correct horse battery staple")
		if err != nil {
			t.Fatal(err)
		}
		if err := refresh.Delete(ctx, "admin@example.com"); err != nil {
			t.Fatal(err)
		}
		_, err = svc.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		if !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("Refresh() error = %v, want ErrInvalidRefreshToken", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Password helpers
// ---------------------------------------------------------------------------

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("HashPassword() must not return plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("CheckPassword() = false for matching password")
	}
	if CheckPassword(hash, "s3cret!") {
		t.Error("CheckPassword() = true for non-matching password")
	}
}
