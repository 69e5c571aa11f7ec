// Package apiclient performs authenticated calls against the backend API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"backoffice.app/internal/ids"
	"backoffice.app/internal/obs"
)

// Credentials yields the bearer token for a call.
type Credentials interface {
	BearerToken() (string, error)
}

// Client is the single path to the backend: one attempt per call, no retry.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	creds     Credentials
	userAgent string
}

// Option configures Client behavior.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header on every call.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(ua)
	}
}

// New builds a client rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base URL %q must be absolute", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithCredentials returns a copy of c that authenticates with creds.
// The transport and its cookie jar are shared.
func (c *Client) WithCredentials(creds Credentials) *Client {
	clone := *c
	clone.creds = creds
	return &clone
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	// Route is the path template used as metric label, e.g. "/credits/{id}".
	Route  string
	Query  url.Values
	Header http.Header
	// Body is JSON-encoded unless it is a *Multipart.
	Body any
}

// Do sends req and returns the raw response for any 2xx status. Other
// statuses become *APIError. Without a valid session it fails with
// auth.ErrUnauthenticated before touching the network.
func (c *Client) Do(ctx context.Context, req Request) (*http.Response, error) {
	if c.creds == nil {
		return nil, errNoCredentials
	}
	token, err := c.creds.BearerToken()
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(httpReq)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		obs.ObserveBackendCall(httpReq.Method, req.Route, 0, time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", httpReq.Method, req.Path, err)
	}
	obs.ObserveBackendCall(httpReq.Method, req.Route, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp)
		obs.Event("warn", "backend_call_failed", map[string]any{
			"request_id": ids.RequestIDFromContext(ctx),
			"method":     apiErr.Method,
			"path":       apiErr.Path,
			"status":     apiErr.Status,
			"error":      apiErr.Message,
		})
		return nil, apiErr
	}
	return resp, nil
}

// JSON performs req and decodes a success body into dst. dst may be nil to
// discard the body.
func (c *Client) JSON(ctx context.Context, req Request, dst any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}

var errNoCredentials = errors.New("apiclient: no credentials configured")

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType = "application/json"
	)
	switch b := req.Body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		body, contentType = buf, ct
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	// Multipart bodies always carry their own boundary, whatever the caller set.
	if _, isMultipart := req.Body.(*Multipart); isMultipart || httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if rid := ids.RequestIDFromContext(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}
	return httpReq, nil
}
