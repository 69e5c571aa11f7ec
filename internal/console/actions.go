package console

import (
	"errors"
	"net/http"
	"strings"

	"backoffice.app/internal/audit"
	"backoffice.app/internal/auth"
	"backoffice.app/internal/backend"
	"backoffice.app/internal/guard"
)

// handlerFunc performs one gated mutation. A nil body answers with status only.
type handlerFunc func(w http.ResponseWriter, r *http.Request, svc *backend.Services) (status int, body any, err error)

type actionDef struct {
	method string
	path   string
	action auth.Action
	event  string
	handle handlerFunc
}

var actions = []actionDef{
	{http.MethodPost, "/clients", auth.ActionCreate, "client.create", createClient},
	{http.MethodPut, "/clients/{id}", auth.ActionEdit, "client.update", updateClient},
	{http.MethodDelete, "/clients/{id}", auth.ActionDelete, "client.delete", deleteClient},
	{http.MethodPost, "/clients/{id}/suspend", auth.ActionSuspend, "client.suspend", suspendClient},
	{http.MethodPost, "/clients/{id}/documents", auth.ActionEdit, "document.upload", uploadDocument},
	{http.MethodPost, "/credits/{id}/approve", auth.ActionApprove, "credit.approve", approveCredit},
	{http.MethodPost, "/credits/{id}/reject", auth.ActionReject, "credit.reject", rejectCredit},
	{http.MethodPost, "/tickets", auth.ActionCreateTicket, "ticket.create", createTicket},
	{http.MethodPut, "/tickets/{id}", auth.ActionUpdateTicket, "ticket.update", updateTicket},
	{http.MethodPost, "/users", auth.ActionManageUsers, "user.create", createUser},
	{http.MethodPut, "/users/{id}/role", auth.ActionManageUsers, "user.role", setUserRole},
}

func (s *Server) action(a actionDef) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := s.session(r)
		ctx := r.Context()
		if id, ok := sess.Current(); ok {
			ctx = auth.ContextWithIdentity(ctx, id)
		}
		if _, err := auth.Authorize(ctx, a.action); err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				writeError(w, r, http.StatusUnauthorized, "authentication required")
				return
			}
			_ = audit.LogEvent(ctx, audit.EventGuardDenied, map[string]any{
				"action": string(a.action),
				"path":   r.URL.Path,
			})
			writeError(w, r, http.StatusForbidden, guard.UnauthorizedMessage)
			return
		}

		r = r.WithContext(ctx)
		status, body, err := a.handle(w, r, backend.New(s.api.WithCredentials(sess)))
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		_ = audit.LogEvent(ctx, a.event, map[string]any{
			"path":   r.URL.Path,
			"status": status,
		})
		if body == nil {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, body)
	}
}

func createClient(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in backend.ClientInput
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, nil, badInput("name is required")
	}
	out, err := svc.Clients.Create(r.Context(), in)
	return http.StatusCreated, out, err
}

func updateClient(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in backend.ClientInput
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	out, err := svc.Clients.Update(r.Context(), r.PathValue("id"), in)
	return http.StatusOK, out, err
}

func deleteClient(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	return http.StatusNoContent, nil, svc.Clients.Delete(r.Context(), r.PathValue("id"))
}

func suspendClient(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	out, err := svc.Clients.Suspend(r.Context(), r.PathValue("id"))
	return http.StatusOK, out, err
}

func uploadDocument(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return 0, nil, badInput("multipart field \"file\" is required")
	}
	defer file.Close()
	out, err := svc.Documents.Upload(r.Context(), r.PathValue("id"), backend.Upload{
		Name:   hdr.Filename,
		Type:   r.FormValue("type"),
		Reader: file,
	})
	return http.StatusCreated, out, err
}

func decision(w http.ResponseWriter, r *http.Request) (backend.Decision, error) {
	var d backend.Decision
	if err := decodeOptionalJSON(w, r, &d); err != nil {
		return d, err
	}
	if d.IdempotencyKey == "" {
		d.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	}
	return d, nil
}

func approveCredit(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	d, err := decision(w, r)
	if err != nil {
		return 0, nil, err
	}
	out, err := svc.Credits.Approve(r.Context(), r.PathValue("id"), d)
	return http.StatusOK, out, err
}

func rejectCredit(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	d, err := decision(w, r)
	if err != nil {
		return 0, nil, err
	}
	out, err := svc.Credits.Reject(r.Context(), r.PathValue("id"), d)
	return http.StatusOK, out, err
}

func createTicket(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in backend.TicketInput
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	if strings.TrimSpace(in.Subject) == "" {
		return 0, nil, badInput("subject is required")
	}
	out, err := svc.Tickets.Create(r.Context(), in)
	return http.StatusCreated, out, err
}

func updateTicket(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in backend.TicketInput
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	out, err := svc.Tickets.Update(r.Context(), r.PathValue("id"), in)
	return http.StatusOK, out, err
}

func createUser(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in backend.UserInput
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	if strings.TrimSpace(in.Email) == "" {
		return 0, nil, badInput("email is required")
	}
	out, err := svc.Users.Create(r.Context(), in)
	return http.StatusCreated, out, err
}

func setUserRole(w http.ResponseWriter, r *http.Request, svc *backend.Services) (int, any, error) {
	var in struct {
		Role string `json:"role"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		return 0, nil, err
	}
	out, err := svc.Users.SetRole(r.Context(), r.PathValue("id"), in.Role)
	return http.StatusOK, out, err
}
