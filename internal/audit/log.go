package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"backoffice.app/internal/auth"
	"backoffice.app/internal/ids"
	"backoffice.app/internal/obs"
)

// Console audit events.
const (
	EventLogin       = "session.login"
	EventLogout      = "session.logout"
	EventGuardDenied = "guard.denied"
)

// LogEvent writes an audit log entry enriched with request and operator context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := ids.RequestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if id, ok := auth.IdentityFromContext(ctx); ok {
		entry["subject"] = id.Subject
		entry["role"] = id.Role.String()
	}
	copyFields := make(map[string]any, len(fields))
	for k, v := range fields {
		copyFields[k] = v
	}
	entry["fields"] = copyFields

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
