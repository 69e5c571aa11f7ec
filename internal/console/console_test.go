package console

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"backoffice.app/internal/apiclient"
	"backoffice.app/internal/auth/authtest"
	"backoffice.app/internal/config"
	"backoffice.app/internal/guard"
)

type fakeBackend struct {
	mux   *http.ServeMux
	calls atomic.Int32
	auth  atomic.Value
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{mux: http.NewServeMux()}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	f.auth.Store(r.Header.Get("Authorization"))
	f.mux.ServeHTTP(w, r)
}

func (f *fakeBackend) lastAuth() string {
	v, _ := f.auth.Load().(string)
	return v
}

func newConsole(t *testing.T, be *fakeBackend, opts ...Option) http.Handler {
	t.Helper()
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)
	api, err := apiclient.New(srv.URL, nil, apiclient.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	cfg := config.Default()
	cfg.RateBurst = 1000
	cfg.RatePerSec = 1000
	return New(cfg, api, opts...).Handler()
}

func call(t *testing.T, h http.Handler, method, path, token string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func cookieFrom(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func TestScreenWithoutSessionRedirectsToLogin(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)

	rr := call(t, h, http.MethodGet, "/clients", "", nil, nil)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != guard.LoginPath {
		t.Fatalf("unexpected location %q", loc)
	}
	if cookieFrom(rr, FlashCookie) != nil {
		t.Fatalf("login redirect must not carry a notice")
	}
	if be.calls.Load() != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestScreenWithExpiredSessionClearsCookie(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)
	expired := authtest.Token(t, "u1", "ADMIN", time.Now().Add(-time.Minute))

	rr := call(t, h, http.MethodGet, "/credits", expired, nil, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != guard.LoginPath {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	c := cookieFrom(rr, SessionCookie)
	if c == nil || c.MaxAge >= 0 {
		t.Fatalf("expired session cookie must be destroyed, got %+v", c)
	}
}

func TestSessionClockDrivesExpiry(t *testing.T) {
	be := newFakeBackend()
	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	h := newConsole(t, be, WithClock(later))

	rr := call(t, h, http.MethodGet, "/tickets", authtest.Valid(t, "ADMIN"), nil, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != guard.LoginPath {
		t.Fatalf("token past its expiry must be sent to login, got %d", rr.Code)
	}
	if be.calls.Load() != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestAuditorReadsButCannotMutate(t *testing.T) {
	be := newFakeBackend()
	be.mux.HandleFunc("GET /clients", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"c1","name":"Acme","suspended":false,"createdAt":"2024-01-02T00:00:00Z"}]`)
	})
	h := newConsole(t, be)
	token := authtest.Valid(t, "AUDITEUR")

	rr := call(t, h, http.MethodGet, "/clients", token, nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	view := decode[struct {
		Screen   string          `json:"screen"`
		Identity identityView    `json:"identity"`
		Actions  map[string]bool `json:"actions"`
		Data     []map[string]any
	}](t, rr)
	if view.Screen != "clients" || view.Identity.Role != "AUDITEUR" {
		t.Fatalf("unexpected view: %+v", view)
	}
	for action, allowed := range view.Actions {
		if allowed {
			t.Fatalf("auditor must not be offered %q", action)
		}
	}
	if len(view.Data) != 1 || view.Data[0]["id"] != "c1" {
		t.Fatalf("backend data not relayed: %v", view.Data)
	}
	if be.lastAuth() != "Bearer "+token {
		t.Fatalf("bearer not forwarded: %q", be.lastAuth())
	}

	before := be.calls.Load()
	rr = call(t, h, http.MethodPost, "/clients", token, jsonBody(t, map[string]string{"name": "Globex"}), nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if be.calls.Load() != before {
		t.Fatalf("denied action reached the backend")
	}
}

func TestAdminDeniedSuperAdminScreen(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)

	rr := call(t, h, http.MethodGet, "/users", authtest.Valid(t, "ADMIN"), nil, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != guard.UnauthorizedPath {
		t.Fatalf("expected redirect to unauthorized, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	flash := cookieFrom(rr, FlashCookie)
	if flash == nil {
		t.Fatalf("expected a flash notice")
	}

	req := httptest.NewRequest(http.MethodGet, guard.UnauthorizedPath, nil)
	req.AddCookie(&http.Cookie{Name: FlashCookie, Value: flash.Value})
	next := httptest.NewRecorder()
	h.ServeHTTP(next, req)
	body := decode[map[string]string](t, next)
	if body["notice"] != guard.UnauthorizedMessage {
		t.Fatalf("unexpected notice %q", body["notice"])
	}
	if c := cookieFrom(next, FlashCookie); c == nil || c.MaxAge >= 0 {
		t.Fatalf("flash must be consumed")
	}
}

func TestUnknownRoleDeniedEvenWithoutRequirement(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)
	rr := call(t, h, http.MethodGet, "/profile", authtest.Valid(t, "INTERN"), nil, nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != guard.UnauthorizedPath {
		t.Fatalf("expected redirect to unauthorized, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestProfileFallbackRelayed(t *testing.T) {
	be := newFakeBackend()
	be.mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	h := newConsole(t, be)
	rr := call(t, h, http.MethodGet, "/profile", authtest.Valid(t, "AUDITEUR"), nil, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected relayed 500, got %d", rr.Code)
	}
	if body := decode[map[string]string](t, rr); body["error"] != "failed to fetch profile" {
		t.Fatalf("unexpected error %q", body["error"])
	}
}

func TestBackendErrorRelayed(t *testing.T) {
	be := newFakeBackend()
	be.mux.HandleFunc("GET /credits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"not found"}`)
	})
	h := newConsole(t, be)
	rr := call(t, h, http.MethodGet, "/credits/x", authtest.Valid(t, "ADMIN"), nil, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body := decode[map[string]string](t, rr); body["error"] != "not found" || body["request_id"] == "" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestApproveForwardsIdempotencyKey(t *testing.T) {
	var gotKey string
	be := newFakeBackend()
	be.mux.HandleFunc("POST /credits/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_, _ = io.WriteString(w, `{"id":"cr1","clientId":"c1","amount":1000,"status":"APPROVED","createdAt":"2024-01-02T00:00:00Z"}`)
	})
	h := newConsole(t, be)

	rr := call(t, h, http.MethodPost, "/credits/cr1/approve", authtest.Valid(t, "ADMIN"), nil, map[string]string{"Idempotency-Key": "k-9"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotKey != "k-9" {
		t.Fatalf("idempotency key not forwarded: %q", gotKey)
	}
	if body := decode[map[string]any](t, rr); body["status"] != "APPROVED" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRejectWithoutReasonIsBadRequest(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)
	rr := call(t, h, http.MethodPost, "/credits/cr1/reject", authtest.Valid(t, "SUPER_ADMIN"), jsonBody(t, map[string]string{"reason": ""}), nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if be.calls.Load() != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestDeleteOnlyForSuperAdmin(t *testing.T) {
	be := newFakeBackend()
	be.mux.HandleFunc("DELETE /clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := newConsole(t, be)

	if rr := call(t, h, http.MethodDelete, "/clients/c1", authtest.Valid(t, "ADMIN"), nil, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("admin delete: expected 403, got %d", rr.Code)
	}
	if rr := call(t, h, http.MethodDelete, "/clients/c1", authtest.Valid(t, "SUPER_ADMIN"), nil, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("super admin delete: expected 204, got %d", rr.Code)
	}
	if rr := call(t, h, http.MethodDelete, "/clients/c1", "", nil, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous delete: expected 401, got %d", rr.Code)
	}
}

func TestUploadDocument(t *testing.T) {
	var gotName string
	be := newFakeBackend()
	be.mux.HandleFunc("POST /clients/{id}/documents", func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("backend form file: %v", err)
			return
		}
		gotName = hdr.Filename
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"d1","clientId":"c1","name":"id.pdf","uploadedAt":"2024-01-02T00:00:00Z"}`)
	})
	h := newConsole(t, be)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "id.pdf")
	_, _ = fw.Write([]byte("%PDF"))
	_ = mw.WriteField("type", "ID_CARD")
	_ = mw.Close()

	rr := call(t, h, http.MethodPost, "/clients/c1/documents", authtest.Valid(t, "ADMIN"), &buf, map[string]string{"Content-Type": mw.FormDataContentType()})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotName != "id.pdf" {
		t.Fatalf("file not forwarded, got %q", gotName)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := newConsole(t, newFakeBackend())
	token := authtest.Valid(t, "SUPER_ADMIN")

	rr := call(t, h, http.MethodPost, "/login", "", jsonBody(t, loginRequest{Token: token}), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	c := cookieFrom(rr, SessionCookie)
	if c == nil || c.Value != token || !c.HttpOnly {
		t.Fatalf("session cookie not set: %+v", c)
	}
	view := decode[struct {
		Identity identityView    `json:"identity"`
		Actions  map[string]bool `json:"actions"`
	}](t, rr)
	if view.Identity.Role != "SUPER_ADMIN" || !view.Actions["manage_users"] {
		t.Fatalf("unexpected session view: %+v", view)
	}
}

func TestLoginRejectsBadTokens(t *testing.T) {
	h := newConsole(t, newFakeBackend())
	expired := authtest.Token(t, "u1", "ADMIN", time.Now().Add(-time.Second))

	if rr := call(t, h, http.MethodPost, "/login", "", jsonBody(t, loginRequest{Token: expired}), nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rr.Code)
	}
	if rr := call(t, h, http.MethodPost, "/login", "", jsonBody(t, loginRequest{Token: "garbage"}), nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("garbage token: expected 400, got %d", rr.Code)
	}
	if rr := call(t, h, http.MethodPost, "/login", "", strings.NewReader(`{"token":"x","extra":1}`), nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rr.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newConsole(t, newFakeBackend())
	rr := call(t, h, http.MethodPost, "/logout", authtest.Valid(t, "ADMIN"), nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if c := cookieFrom(rr, SessionCookie); c == nil || c.MaxAge >= 0 {
		t.Fatalf("session cookie not cleared: %+v", c)
	}
}

func TestAuditLogScreenValidatesDates(t *testing.T) {
	be := newFakeBackend()
	h := newConsole(t, be)
	q := url.Values{"from": {"yesterday"}}
	rr := call(t, h, http.MethodGet, "/audit-logs?"+q.Encode(), authtest.Valid(t, "AUDITEUR"), nil, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if be.calls.Load() != 0 {
		t.Fatalf("backend must not be called")
	}
}
