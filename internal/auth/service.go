// service.go orchestrates the login and refresh flows on top of the token
// service, the user repository, and the refresh-token store.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// Tagged errors the HTTP boundary maps to status codes. The messages are
// deliberately non-enumerating: a caller cannot tell an unknown username from
// a wrong password, or a missing refresh token from a stale one.
var (
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service implements the login and refresh flows. Handlers call it and map
// its tagged errors to HTTP responses.
type Service struct {
	users   UserStore
	tokens  *TokenService
	refresh RefreshTokenStore
}

// NewService wires the auth service.
func NewService(users UserStore, tokens *TokenService, refresh RefreshTokenStore) *Service {
	return &Service{users: users, tokens: tokens, refresh: refresh}
}

// VerifyCredentials reports whether username and password match a stored
// account. Unknown usernames and wrong passwords are indistinguishable in both
// return value and timing. Store failures propagate.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetUserByEmail(ctx, username)
	if err != nil {
		return false, fmt.Errorf("looking up credentials: %w", err)
	}
	if user == nil {
		burnPasswordCheck(password)
		return false, nil
	}
	return CheckPassword(user.PasswordHash, password), nil
}

// Login verifies the credentials and issues a fresh token pair. Issuing
// overwrites any refresh token stored for this username, so a second login
// invalidates the pair from the first (single active session per user).
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	ok, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, username)
}

// Refresh exchanges a previously issued access token plus its refresh token
// for a new access token. The presented access token only needs a valid
// signature, issuer, and audience; it may be expired (see SubjectForRefresh).
// The refresh token is returned unchanged, not rotated.
func (s *Service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	subject, err := s.tokens.SubjectForRefresh(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.refresh.Get(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("loading refresh token: %w", err)
	}
	if stored == "" || stored != refreshToken {
		return nil, ErrInvalidRefreshToken
	}

	access, err := s.tokens.GenerateAccessToken(subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (s *Service) issue(ctx context.Context, username string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(username)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	if err := s.refresh.Put(ctx, username, refresh); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
