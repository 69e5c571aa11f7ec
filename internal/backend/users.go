package backend

import (
	"context"
	"errors"
	"net/http"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/auth"
)

// ProfileErrorMessage replaces the generic failure text on profile loads.
const ProfileErrorMessage = "failed to fetch profile"

// Users reads the operator profile and manages operator accounts.
type Users struct {
	api Caller
}

// Profile returns the signed-in operator.
func (s *Users) Profile(ctx context.Context) (UserProfile, error) {
	var out UserProfile
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
		Route:  "/users/me",
	}, &out)
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message == apiclient.DefaultErrorMessage {
		e := *apiErr
		e.Message = ProfileErrorMessage
		return UserProfile{}, &e
	}
	return out, err
}

func (s *Users) List(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/users",
		Route:  "/users",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Users) Create(ctx context.Context, in UserInput) (User, error) {
	if _, err := knownRole(in.Role); err != nil {
		return User{}, err
	}
	var out User
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users",
		Route:  "/users",
		Body:   in,
	}, &out)
	return out, err
}

// SetRole changes an operator's role.
func (s *Users) SetRole(ctx context.Context, id, role string) (User, error) {
	r, err := knownRole(role)
	if err != nil {
		return User{}, err
	}
	var out User
	err = s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   idPath("users", id, "role"),
		Route:  "/users/{id}/role",
		Body:   map[string]string{"role": r.String()},
	}, &out)
	return out, err
}

// ErrUnknownRole rejects role names outside the console's role set.
var ErrUnknownRole = errors.New("backend: unknown role")

func knownRole(name string) (auth.Role, error) {
	r := auth.ParseRole(name)
	if r == auth.RoleUnknown {
		return r, ErrUnknownRole
	}
	return r, nil
}
