package console

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"backoffice.app/internal/audit"
	"backoffice.app/internal/auth"
)

// Cookie names.
const (
	SessionCookie = "bo_session"
	FlashCookie   = "bo_flash"
)

const flashTTL = time.Minute

// session reads the token cookie into a request-scoped session. The store is
// never shared between requests.
func (s *Server) session(r *http.Request) (*auth.Session, bool) {
	token := ""
	if c, err := r.Cookie(SessionCookie); err == nil {
		token = c.Value
	}
	return auth.NewSession(auth.NewMemoryStore(token), auth.WithClock(s.now)), token != ""
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   int(flashTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns the pending notice and expires it.
func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(FlashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: FlashCookie, Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.cookieSecure})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

type loginRequest struct {
	Token string `json:"token"`
}

type sessionView struct {
	Identity identityView        `json:"identity"`
	Actions  map[auth.Action]bool `json:"actions"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sess := auth.NewSession(auth.NewMemoryStore(""), auth.WithClock(s.now))
	id, err := sess.Login(req.Token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "token expired")
		return
	case err != nil:
		writeError(w, r, http.StatusBadRequest, "invalid token")
		return
	}
	token, _ := sess.BearerToken()
	s.setSessionCookie(w, token, id.ExpiresAt)

	ctx := auth.ContextWithIdentity(r.Context(), id)
	_ = audit.LogEvent(ctx, audit.EventLogin, map[string]any{"expires_at": id.ExpiresAt.UTC().Format(time.RFC3339)})
	writeJSON(w, http.StatusOK, sessionView{Identity: viewIdentity(id), Actions: auth.Capabilities(id, true)})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.session(r)
	ctx := r.Context()
	if id, ok := sess.Current(); ok {
		ctx = auth.ContextWithIdentity(ctx, id)
	}
	_ = sess.Logout()
	s.clearSessionCookie(w)
	_ = audit.LogEvent(ctx, audit.EventLogout, nil)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) loginScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"screen": "login",
		"notice": s.takeFlash(w, r),
	})
}

func (s *Server) unauthorizedScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"screen": "unauthorized",
		"notice": s.takeFlash(w, r),
	})
}
