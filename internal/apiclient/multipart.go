package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// File is one file part of a multipart body.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

// Multipart is a form-data request body. The wrapper never sets a JSON
// content type for it; the boundary-bearing type comes from the encoder.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range m.Files {
		if f.Reader == nil {
			return nil, "", fmt.Errorf("file part %q has no content", f.Field)
		}
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("copy part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
