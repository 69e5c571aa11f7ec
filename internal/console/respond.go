package console

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/auth"
	"backoffice.app/internal/backend"
	"backoffice.app/internal/ids"
	"backoffice.app/internal/obs"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := ids.RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

// inputError marks a request the console itself refuses.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func badInput(msg string) error { return &inputError{msg: msg} }

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badInput("request body is required")
		}
		return badInput(err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badInput("unexpected data after JSON body")
	}
	return nil
}

// decodeOptionalJSON accepts an empty body and leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	err := decodeJSON(w, r, dst)
	var in *inputError
	if errors.As(err, &in) && in.msg == "request body is required" {
		return nil
	}
	return err
}

// handleBackendError relays backend failures with their status and message.
func handleBackendError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		apiErr *apiclient.APIError
		in     *inputError
	)
	switch {
	case errors.As(err, &apiErr):
		writeError(w, r, apiErr.Status, apiErr.Error())
	case errors.As(err, &in):
		writeError(w, r, http.StatusBadRequest, in.msg)
	case errors.Is(err, backend.ErrReasonRequired), errors.Is(err, backend.ErrUnknownRole):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	default:
		obs.Event("error", "backend_unreachable", map[string]any{
			"request_id": ids.RequestIDFromContext(r.Context()),
			"path":       r.URL.Path,
			"error":      err.Error(),
		})
		writeError(w, r, http.StatusBadGateway, apiclient.DefaultErrorMessage)
	}
}
