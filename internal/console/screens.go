package console

import (
	"context"
	"net/http"
	"time"

	"backoffice.app/internal/audit"
	"backoffice.app/internal/auth"
	"backoffice.app/internal/backend"
	"backoffice.app/internal/guard"
	"backoffice.app/internal/obs"
)

var (
	readers    = auth.NewRoleSet(auth.RoleAdmin, auth.RoleSuperAdmin, auth.RoleAuditor)
	superAdmin = auth.NewRoleSet(auth.RoleSuperAdmin)
	anyRole    = auth.NewRoleSet()
)

type loader func(ctx context.Context, svc *backend.Services, r *http.Request) (any, error)

type screenDef struct {
	name     string
	path     string
	required auth.RoleSet
	load     loader
}

var screens = []screenDef{
	{name: "clients", path: "/clients", required: readers, load: loadClients},
	{name: "client", path: "/clients/{id}", required: readers, load: loadClient},
	{name: "credits", path: "/credits", required: readers, load: loadCredits},
	{name: "credit", path: "/credits/{id}", required: readers, load: loadCredit},
	{name: "tickets", path: "/tickets", required: readers, load: loadTickets},
	{name: "ticket", path: "/tickets/{id}", required: readers, load: loadTicket},
	{name: "audit-logs", path: "/audit-logs", required: readers, load: loadAuditLogs},
	{name: "users", path: "/users", required: superAdmin, load: loadUsers},
	{name: "profile", path: "/profile", required: anyRole, load: loadProfile},
}

type identityView struct {
	Subject        string    `json:"subject"`
	UserID         string    `json:"userId,omitempty"`
	Name           string    `json:"name,omitempty"`
	Role           string    `json:"role"`
	AccountExpired bool      `json:"accountExpired"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

func viewIdentity(id auth.Identity) identityView {
	return identityView{
		Subject:        id.Subject,
		UserID:         id.UserID,
		Name:           id.Name,
		Role:           id.Role.String(),
		AccountExpired: id.AccountExpired,
		ExpiresAt:      id.ExpiresAt,
	}
}

type screenView struct {
	Screen   string               `json:"screen"`
	Identity identityView         `json:"identity"`
	Actions  map[auth.Action]bool `json:"actions"`
	Data     any                  `json:"data"`
}

// httpEffects runs guard effects as a flash cookie and a 303 redirect.
type httpEffects struct {
	s *Server
	w http.ResponseWriter
	r *http.Request
}

func (e httpEffects) Notify(msg string) { e.s.setFlash(e.w, msg) }

func (e httpEffects) Navigate(path string) { http.Redirect(e.w, e.r, path, http.StatusSeeOther) }

func (s *Server) screen(sc screenDef) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, hadCookie := s.session(r)
		id, ok := sess.Current()
		if !ok && hadCookie {
			// expired or unreadable token: destroy it before leaving for login
			s.clearSessionCookie(w)
		}

		g := guard.New(httpEffects{s: s, w: w, r: r}, httpEffects{s: s, w: w, r: r})
		res := g.Update(guard.InputFor(sess, sc.required))
		state := g.State()
		obs.RecordGuardDecision(sc.name, state.String())
		if !res.Allowed {
			if state == guard.DeniedUnauthorized {
				ctx := auth.ContextWithIdentity(r.Context(), id)
				_ = audit.LogEvent(ctx, audit.EventGuardDenied, map[string]any{
					"screen":   sc.name,
					"required": sc.required.Strings(),
				})
			}
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), id)
		svc := backend.New(s.api.WithCredentials(sess))
		data, err := sc.load(ctx, svc, r.WithContext(ctx))
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, screenView{
			Screen:   sc.name,
			Identity: viewIdentity(id),
			Actions:  auth.Capabilities(id, true),
			Data:     data,
		})
	}
}

func loadClients(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Clients.List(ctx, r.URL.Query().Get("q"))
}

func loadClient(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	id := r.PathValue("id")
	client, err := svc.Clients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := svc.Documents.List(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{"client": client, "documents": docs}, nil
}

func loadCredits(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	q := r.URL.Query()
	return svc.Credits.List(ctx, backend.CreditFilter{Status: q.Get("status"), ClientID: q.Get("clientId")})
}

func loadCredit(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Credits.Get(ctx, r.PathValue("id"))
}

func loadTickets(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Tickets.List(ctx, r.URL.Query().Get("status"))
}

func loadTicket(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Tickets.Get(ctx, r.PathValue("id"))
}

func loadAuditLogs(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	q := r.URL.Query()
	f := backend.AuditFilter{Actor: q.Get("actor"), Action: q.Get("action")}
	var err error
	if v := q.Get("from"); v != "" {
		if f.From, err = time.Parse(time.RFC3339, v); err != nil {
			return nil, badInput("from must be an RFC 3339 timestamp")
		}
	}
	if v := q.Get("to"); v != "" {
		if f.To, err = time.Parse(time.RFC3339, v); err != nil {
			return nil, badInput("to must be an RFC 3339 timestamp")
		}
	}
	return svc.AuditLogs.List(ctx, f)
}

func loadUsers(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Users.List(ctx)
}

func loadProfile(ctx context.Context, svc *backend.Services, r *http.Request) (any, error) {
	return svc.Users.Profile(ctx)
}
