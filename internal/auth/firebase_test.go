package auth

import (
	"context"
	"errors"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIDTokens map[string]*fbauth.Token

func (s stubIDTokens) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if tok, ok := s[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func TestFirebaseVerifyEmail(t *testing.T) {
	v := &FirebaseVerifier{client: stubIDTokens{
		"good":    {UID: "u1", Claims: map[string]any{"email": "u@x.io"}},
		"noemail": {UID: "u2", Claims: map[string]any{}},
	}}
	ctx := context.Background()

	email, err := v.VerifyEmail(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u@x.io", email)

	_, err = v.VerifyEmail(ctx, "noemail")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.VerifyEmail(ctx, "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.VerifyEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestNewFirebaseVerifierRejectsBadKey(t *testing.T) {
	_, err := NewFirebaseVerifier(context.Background(), "proj", "%%%not-base64")
	assert.Error(t, err)
}
