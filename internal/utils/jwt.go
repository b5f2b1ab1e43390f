package utils // package utils provides helpers for signing and checking form tokens

import (
	"errors" // errors builds the sentinel returned for rejected tokens
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// csrfPurpose is stored in the "pur" claim so that no other HS256 token
// signed with the same secret is accepted as a form token.
const csrfPurpose = "csrf"

// ErrInvalidCSRFToken is returned when a form token is missing, forged,
// expired or issued for another purpose.
var ErrInvalidCSRFToken = errors.New("invalid csrf token")

// NewCSRFToken builds and signs an HS256 JWT that is embedded in every
// rendered form.  The token expires after ttl.
func NewCSRFToken(secret string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"pur": csrfPurpose,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifyCSRFToken checks the signature, expiry and purpose of raw.
func VerifyCSRFToken(secret, raw string) error {
	if raw == "" {
		return ErrInvalidCSRFToken
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return ErrInvalidCSRFToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || claims["pur"] != csrfPurpose {
		return ErrInvalidCSRFToken
	}
	return nil
}
