// Package token issues and verifies the signed session tokens that
// authenticate API requests after a completed Google sign-in.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long issued session tokens remain valid.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or was signed with an unexpected method.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a token is well formed but past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the identity carried inside a session token.
type Claims struct {
	Subject string // user ID hex
	Email   string
	Role    string
}

// Service signs and verifies session tokens with an HMAC secret.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService returns a Service signing with the given secret. A ttl of
// zero means DefaultTTL.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// TTL reports the lifetime applied to issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue signs a new token carrying the given claims.
func (s *Service) Issue(c Claims) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.Subject,
		"email": c.Email,
		"role":  c.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.ttl).Unix(),
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the claims it
// carries. Expired tokens return ErrTokenExpired; any other failure
// returns ErrInvalidToken.
func (s *Service) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	if sub == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{Subject: sub, Email: email, Role: role}, nil
}
