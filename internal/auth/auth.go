package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the payload the backend encodes into identity tokens.
type Claims struct {
	UserID         flexibleID `json:"id"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	AccountExpired bool       `json:"accountExpired"`
	jwt.RegisteredClaims
}

// flexibleID accepts both numeric and string user ids.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// Decode extracts the identity carried by raw WITHOUT verifying its signature.
// The result only gates what the console offers; the backend re-authorizes
// every call, so this is not a security boundary.
func Decode(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrMalformedToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	id := Identity{
		Subject:        strings.TrimSpace(claims.Subject),
		UserID:         string(claims.UserID),
		Name:           claims.Name,
		Role:           ParseRole(claims.Role),
		RawRole:        claims.Role,
		AccountExpired: claims.AccountExpired,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Provider exposes the identity of the current session, if any.
type Provider interface {
	Current() (Identity, bool)
}

// Session ties a token store to the decoder and a clock.
type Session struct {
	store TokenStore
	now   func() time.Time
}

// SessionOption configures Session behavior.
type SessionOption func(*Session)

// WithClock overrides time source (useful for tests).
func WithClock(fn func() time.Time) SessionOption {
	return func(s *Session) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewSession builds a session over store.
func NewSession(store TokenStore, opts ...SessionOption) *Session {
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the identity of a present, decodable and unexpired token.
// It never writes to the store.
func (s *Session) Current() (Identity, bool) {
	id, err := s.resolve()
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

// BearerToken returns the raw token for outgoing requests, or
// ErrUnauthenticated when no valid session exists.
func (s *Session) BearerToken() (string, error) {
	if s == nil || s.store == nil {
		return "", ErrUnauthenticated
	}
	raw, ok := s.store.Token()
	if !ok {
		return "", ErrUnauthenticated
	}
	id, err := Decode(raw)
	if err != nil || !id.ValidAt(s.now()) {
		return "", ErrUnauthenticated
	}
	return raw, nil
}

// Login replaces the stored token after checking it decodes and is unexpired.
func (s *Session) Login(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	id, err := Decode(raw)
	if err != nil {
		return Identity{}, err
	}
	if !id.ValidAt(s.now()) {
		return Identity{}, ErrTokenExpired
	}
	if err := s.store.Save(raw); err != nil {
		return Identity{}, fmt.Errorf("save token: %w", err)
	}
	return id, nil
}

// Logout destroys the stored token.
func (s *Session) Logout() error {
	return s.store.Clear()
}

// Expired reports whether a token is stored but no longer usable, which is
// the signal callers use to destroy it.
func (s *Session) Expired() bool {
	if s == nil || s.store == nil {
		return false
	}
	if _, ok := s.store.Token(); !ok {
		return false
	}
	_, err := s.resolve()
	return err != nil
}

func (s *Session) resolve() (Identity, error) {
	if s == nil || s.store == nil {
		return Identity{}, ErrUnauthenticated
	}
	raw, ok := s.store.Token()
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	id, err := Decode(raw)
	if err != nil {
		return Identity{}, err
	}
	if !id.ValidAt(s.now()) {
		return Identity{}, ErrTokenExpired
	}
	return id, nil
}
