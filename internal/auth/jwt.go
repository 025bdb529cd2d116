// Package auth implements credential verification and the access/refresh
// token flows: bcrypt password checks, HMAC-SHA256 access token issuance and
// validation, and opaque refresh token bookkeeping with a single active
// refresh token per user.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/config"
)

// Claims represents the JWT claims structure. The subject claim carries the
// username (account email); no other identity claims are embedded.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService mints and validates access tokens against the JWT settings
// loaded once at startup. Constructing it with invalid settings fails fast so
// a misconfigured deployment never serves a single request.
type TokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewTokenService validates the settings and returns a ready service.
func NewTokenService(cfg config.JWTConfig) (*TokenService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt configuration: %w", err)
	}
	return &TokenService{cfg: cfg, now: time.Now}, nil
}

// GenerateAccessToken creates a signed access token for an authenticated
// username with the configured issuer, audience, and lifetime.
func (s *TokenService) GenerateAccessToken(username string) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.cfg.ValidIssuer,
			Audience:  jwt.ClaimStrings{s.cfg.ValidAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SigningKey))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and fully validates a token (signature, issuer,
// audience, and expiry) and returns its claims. Used by the request
// authentication middleware.
func (s *TokenService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.ValidIssuer),
		jwt.WithAudience(s.cfg.ValidAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SubjectForRefresh recovers the subject claim from a previously issued access
// token, checking signature, issuer, and audience but NOT expiry.
//
// Skipping lifetime validation here is deliberate and load-bearing: the
// token's only job in the refresh flow is to identify its subject, and clients
// routinely refresh with an already-expired access token. The flip side is
// that a stolen old access token stays usable for refresh as long as the
// paired refresh token is also known; tightening this would change observable
// behavior for every idle client.
func (s *TokenService) SubjectForRefresh(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	// WithoutClaimsValidation skips issuer and audience along with expiry,
	// so both are re-checked by hand.
	if claims.Issuer != s.cfg.ValidIssuer {
		return "", fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if !claimsContainAudience(claims.Audience, s.cfg.ValidAudience) {
		return "", errors.New("audience mismatch")
	}
	if claims.Subject == "" {
		return "", errors.New("subject claim is absent")
	}
	return claims.Subject, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return []byte(s.cfg.SigningKey), nil
}

func claimsContainAudience(audience jwt.ClaimStrings, want string) bool {
	for _, a := range audience {
		if a == want {
			return true
		}
	}
	return false
}
