// Package authtest mints identity tokens for tests.
package authtest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token signs an HS256 token with the claim layout the backend issues.
// Consumers never verify the signature, so the key is irrelevant.
func Token(t testing.TB, subject, role string, expiresAt time.Time) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":            subject,
		"id":             42,
		"name":           "Test " + subject,
		"role":           role,
		"accountExpired": false,
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            expiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Valid is a token for role expiring in an hour.
func Valid(t testing.TB, role string) string {
	t.Helper()
	return Token(t, "user-"+role, role, time.Now().Add(time.Hour))
}
