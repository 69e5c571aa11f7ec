package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultErrorMessage replaces error bodies that carry no usable message.
const DefaultErrorMessage = "An unexpected error occurred. Please try again."

const maxErrorBody = 64 << 10

// APIError is returned for every non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

// Error returns the human-readable message only, so screens can show it as is.
func (e *APIError) Error() string {
	if e.Message == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// Detail includes the request line for logs.
func (e *APIError) Detail() string {
	return fmt.Sprintf("%s %s -> %d: %s", e.Method, e.Path, e.Status, e.Error())
}

// errorFromResponse consumes resp.Body. Body parse failures fall back to
// DefaultErrorMessage and are never reported.
func errorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: DefaultErrorMessage}
	if resp.Request != nil {
		apiErr.Method = resp.Request.Method
		apiErr.Path = resp.Request.URL.Path
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	drainAndClose(resp.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	if msg, ok := payload["message"].(string); ok && strings.TrimSpace(msg) != "" {
		apiErr.Message = msg
	}
	return apiErr
}

func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, r)
	r.Close()
}
