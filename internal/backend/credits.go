package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"backoffice.app/internal/apiclient"
)

// ErrReasonRequired is returned by Reject before any call is made.
var ErrReasonRequired = errors.New("backend: a rejection reason is required")

// Decision carries the operator input for approve and reject.
type Decision struct {
	Reason string `json:"reason,omitempty"`
	// IdempotencyKey is forwarded unchanged; deduplication is the backend's job.
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Credits reviews credit requests.
type Credits struct {
	api Caller
}

func (s *Credits) List(ctx context.Context, f CreditFilter) ([]CreditRequest, error) {
	q := url.Values{}
	if v := strings.TrimSpace(f.Status); v != "" {
		q.Set("status", strings.ToUpper(v))
	}
	if v := strings.TrimSpace(f.ClientID); v != "" {
		q.Set("clientId", v)
	}
	var out []CreditRequest
	if err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/credits",
		Route:  "/credits",
		Query:  q,
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Credits) Get(ctx context.Context, id string) (CreditRequest, error) {
	var out CreditRequest
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   idPath("credits", id),
		Route:  "/credits/{id}",
	}, &out)
	return out, err
}

// Approve accepts the credit request.
func (s *Credits) Approve(ctx context.Context, id string, d Decision) (CreditRequest, error) {
	return s.decide(ctx, id, "approve", d)
}

// Reject declines the credit request. A reason is mandatory.
func (s *Credits) Reject(ctx context.Context, id string, d Decision) (CreditRequest, error) {
	d.Reason = strings.TrimSpace(d.Reason)
	if d.Reason == "" {
		return CreditRequest{}, ErrReasonRequired
	}
	return s.decide(ctx, id, "reject", d)
}

func (s *Credits) decide(ctx context.Context, id, verb string, d Decision) (CreditRequest, error) {
	req := apiclient.Request{
		Method: http.MethodPost,
		Path:   idPath("credits", id, verb),
		Route:  "/credits/{id}/" + verb,
		Body:   d,
	}
	if d.IdempotencyKey != "" {
		req.Header = http.Header{"Idempotency-Key": {d.IdempotencyKey}}
	}
	var out CreditRequest
	err := s.api.JSON(ctx, req, &out)
	return out, err
}
