// Package console serves the back-office screens and actions over HTTP. It
// holds no state of its own: the session lives in a cookie and every read or
// write is forwarded to the backend API.
package console

import (
	"net/http"
	"time"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/config"
	"backoffice.app/internal/obs"
)

// Server is the console HTTP layer.
type Server struct {
	mux          *http.ServeMux
	api          *apiclient.Client
	now          func() time.Time
	version      string
	cookieSecure bool
	maxBodyBytes int64
	rateBurst    int
	ratePerSec   int
}

// Option configures Server behavior.
type Option func(*Server)

// WithClock overrides the session clock (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Server) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds the console over api. api carries no credentials: each request
// binds the caller's session to it.
func New(cfg config.Config, api *apiclient.Client, opts ...Option) *Server {
	def := config.Default()
	s := &Server{
		mux:          http.NewServeMux(),
		api:          api,
		now:          time.Now,
		version:      "dev",
		cookieSecure: cfg.CookieSecure,
		maxBodyBytes: cfg.MaxBodyBytes,
		rateBurst:    cfg.RateBurst,
		ratePerSec:   cfg.RatePerSec,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = def.MaxBodyBytes
	}
	if s.rateBurst <= 0 {
		s.rateBurst = def.RateBurst
	}
	if s.ratePerSec <= 0 {
		s.ratePerSec = def.RatePerSec
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.healthz)
	s.mux.Handle("GET /metrics", obs.Handler())

	s.mux.HandleFunc("GET /login", s.loginScreen)
	s.mux.HandleFunc("POST /login", s.login)
	s.mux.HandleFunc("POST /logout", s.logout)
	s.mux.HandleFunc("GET /unauthorized", s.unauthorizedScreen)

	for _, sc := range screens {
		s.mux.HandleFunc("GET "+sc.path, s.screen(sc))
	}
	for _, a := range actions {
		s.mux.HandleFunc(a.method+" "+a.path, s.action(a))
	}

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = MaxBodyBytes(h, s.maxBodyBytes)
	h = RateLimit(h, s.rateBurst, s.ratePerSec)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "backoffice-console",
		"version": s.version,
	})
}
