package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret", 7*24*time.Hour, "coffee-shop")

	tok, err := s.Issue("u@x.io")
	require.NoError(t, err)

	email, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u@x.io", email)
}

func TestSessionExpiry(t *testing.T) {
	s := NewSessions("secret", 7*24*time.Hour, "coffee-shop")
	tok, err := s.Issue("u@x.io")
	require.NoError(t, err)

	var claims Claims
	_, err = jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	expired := NewSessions("secret", -time.Minute, "coffee-shop")
	tok, err = expired.Issue("u@x.io")
	require.NoError(t, err)
	_, err = s.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionRejects(t *testing.T) {
	s := NewSessions("secret", time.Hour, "coffee-shop")

	_, err := s.Verify("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = s.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewSessions("other", time.Hour, "coffee-shop").Issue("u@x.io")
	require.NoError(t, err)
	_, err = s.Verify(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "u@x.io"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Issue("")
	assert.Error(t, err)
}
