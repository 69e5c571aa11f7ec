package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"backoffice.app/internal/apiclient"
)

// Upload describes one document sent for a client.
type Upload struct {
	Name   string
	Type   string
	Reader io.Reader
}

// Documents manages files attached to clients.
type Documents struct {
	api Caller
}

func (s *Documents) List(ctx context.Context, clientID string) ([]Document, error) {
	var out []Document
	if err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   idPath("clients", clientID, "documents"),
		Route:  "/clients/{id}/documents",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upload sends the file as multipart/form-data under the "file" field.
func (s *Documents) Upload(ctx context.Context, clientID string, up Upload) (Document, error) {
	if up.Reader == nil || strings.TrimSpace(up.Name) == "" {
		return Document{}, errors.New("backend: upload needs a file name and content")
	}
	body := &apiclient.Multipart{
		Files: []apiclient.File{{Field: "file", Name: up.Name, Reader: up.Reader}},
	}
	if t := strings.TrimSpace(up.Type); t != "" {
		body.Fields = map[string]string{"type": t}
	}
	var out Document
	err := s.api.JSON(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   idPath("clients", clientID, "documents"),
		Route:  "/clients/{id}/documents",
		Body:   body,
	}, &out)
	return out, err
}
