package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backoffice.app/internal/apiclient"
)

// AuditLogs reads the backend audit trail.
type AuditLogs struct {
	api Caller
}

func (s *AuditLogs) List(ctx context.Context, f AuditFilter) ([]AuditLog, error) {
	q := url.Values{}
	if v := strings.TrimSpace(f.Actor); v != "" {
		q.Set("actor", v)
	}
	if v := strings.TrimSpace(f.Action); v != "" {
		q.Set("action", v)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.UTC().Format(time.RFC3339))
	}
	var out []AuditLog
	if err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/audit-logs",
		Route:  "/audit-logs",
		Query:  q,
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
