// Package token implements the inbound half of the Token / Connection-String
// Subsystem (spec.md §4.4): internal JWT issuance/validation and the
// register/validate/invalidate lifecycle of the three connection-string
// variants.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lepista-tech/mycelium/config"
)

// mycelium is the only acceptable issuer for an internal token, per
// spec.md §4.4's "verify ... iss=mycelium".
const issuer = "mycelium"

// Claims is the minimal internal JWT payload: the caller's email plus the
// standard registered claims. Mycelium resolves roles and permissions
// fresh per request via the Profile Evaluator rather than embedding them
// in the token, so Claims carries nothing else.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and validates internal (HS-family) JWTs.
type Service struct {
	secret []byte
}

// NewService creates a new internal token Service from the configured
// HMAC secret.
func NewService(cfg *config.SecurityConfig) (*Service, error) {
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required for internal token issuance")
	}
	return &Service{secret: []byte(cfg.JWT.Secret)}, nil
}

// IssueAccessToken signs a new internal JWT for email, valid for ttl.
func (s *Service) IssueAccessToken(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken parses and verifies tokenString: HMAC signature,
// exp, and iss=mycelium (spec.md §4.4 step 1).
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("invalid internal token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid internal token")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("internal token is missing an email claim")
	}
	return claims, nil
}
