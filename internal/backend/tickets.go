package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"backoffice.app/internal/apiclient"
)

// Tickets handles support tickets.
type Tickets struct {
	api Caller
}

// List returns tickets, optionally filtered by status.
func (s *Tickets) List(ctx context.Context, status string) ([]Ticket, error) {
	req := apiclient.Request{Method: http.MethodGet, Path: "/tickets", Route: "/tickets"}
	if v := strings.TrimSpace(status); v != "" {
		req.Query = url.Values{"status": {v}}
	}
	var out []Ticket
	if err := s.api.JSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Tickets) Get(ctx context.Context, id string) (Ticket, error) {
	var out Ticket
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   idPath("tickets", id),
		Route:  "/tickets/{id}",
	}, &out)
	return out, err
}

func (s *Tickets) Create(ctx context.Context, in TicketInput) (Ticket, error) {
	var out Ticket
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/tickets",
		Route:  "/tickets",
		Body:   in,
	}, &out)
	return out, err
}

func (s *Tickets) Update(ctx context.Context, id string, in TicketInput) (Ticket, error) {
	var out Ticket
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   idPath("tickets", id),
		Route:  "/tickets/{id}",
		Body:   in,
	}, &out)
	return out, err
}
