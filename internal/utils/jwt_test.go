package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	tok, err := NewCSRFToken("s3cret", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, VerifyCSRFToken("s3cret", tok))
}

func TestCSRFTokenRejected(t *testing.T) {
	good, err := NewCSRFToken("s3cret", time.Minute)
	require.NoError(t, err)
	expired, err := NewCSRFToken("s3cret", -time.Minute)
	require.NoError(t, err)
	otherPurpose, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := map[string]struct{ secret, token string }{
		"empty":         {"s3cret", ""},
		"garbage":       {"s3cret", "not-a-jwt"},
		"wrong secret":  {"other", good},
		"expired":       {"s3cret", expired},
		"other purpose": {"s3cret", otherPurpose},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, VerifyCSRFToken(tt.secret, tt.token), ErrInvalidCSRFToken)
		})
	}
}
