// Package auth issues and checks the session cookie token and verifies
// identity-provider bearer tokens at login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the session token body.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Sessions signs HS256 session tokens carrying the user's email.
type Sessions struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

func NewSessions(secret string, ttl time.Duration, issuer string) *Sessions {
	return &Sessions{Secret: []byte(secret), TTL: ttl, Issuer: issuer}
}

func (s *Sessions) Issue(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: empty email", ErrInvalidToken)
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Verify returns the email carried by a valid, unexpired token.
func (s *Sessions) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrNoToken
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: missing email", ErrInvalidToken)
	}
	return claims.Email, nil
}
