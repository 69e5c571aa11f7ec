package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("auth: unauthenticated")
	ErrUnauthorized    = errors.New("auth: unauthorized")
	ErrMalformedToken  = errors.New("auth: malformed token")
	ErrTokenExpired    = errors.New("auth: token expired")
)
