package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"backoffice.app/internal/apiclient"
)

// Clients administers customer accounts.
type Clients struct {
	api Caller
}

// List returns clients, optionally narrowed by a free-text query.
func (s *Clients) List(ctx context.Context, query string) ([]Client, error) {
	req := apiclient.Request{Method: http.MethodGet, Path: "/clients", Route: "/clients"}
	if q := strings.TrimSpace(query); q != "" {
		req.Query = url.Values{"q": {q}}
	}
	var out []Client
	if err := s.api.JSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Clients) Get(ctx context.Context, id string) (Client, error) {
	var out Client
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   idPath("clients", id),
		Route:  "/clients/{id}",
	}, &out)
	return out, err
}

func (s *Clients) Create(ctx context.Context, in ClientInput) (Client, error) {
	var out Client
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/clients",
		Route:  "/clients",
		Body:   in,
	}, &out)
	return out, err
}

func (s *Clients) Update(ctx context.Context, id string, in ClientInput) (Client, error) {
	var out Client
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   idPath("clients", id),
		Route:  "/clients/{id}",
		Body:   in,
	}, &out)
	return out, err
}

func (s *Clients) Delete(ctx context.Context, id string) error {
	return s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   idPath("clients", id),
		Route:  "/clients/{id}",
	}, nil)
}

// Suspend blocks the client's account and returns its new state.
func (s *Clients) Suspend(ctx context.Context, id string) (Client, error) {
	var out Client
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   idPath("clients", id, "suspend"),
		Route:  "/clients/{id}/suspend",
	}, &out)
	return out, err
}
