package guard

import (
	"testing"

	"backoffice.app/internal/auth"
	"backoffice.app/internal/auth/authtest"
)

type recorder struct {
	navigations []string
	notices     []string
}

func (r *recorder) Navigate(path string)  { r.navigations = append(r.navigations, path) }
func (r *recorder) Notify(message string) { r.notices = append(r.notices, message) }

var staff = auth.NewRoleSet(auth.RoleAdmin, auth.RoleSuperAdmin)

func TestResolveLoadingAlwaysChecking(t *testing.T) {
	inputs := []Input{
		{Loading: true},
		{Loading: true, Authenticated: true, Role: auth.RoleAdmin, Required: staff},
		{Loading: true, Authenticated: true, Role: auth.RoleAuditor, Required: staff},
		{Loading: true, Authenticated: false, Required: staff},
	}
	for _, in := range inputs {
		if got := Resolve(in); got != Checking {
			t.Fatalf("Resolve(%+v) = %s, want checking", in, got)
		}
		state, effects := Reduce(Checking, in)
		if state != Checking || len(effects) != 0 {
			t.Fatalf("loading must not produce effects: %s %v", state, effects)
		}
	}
}

func TestResolveTable(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want State
	}{
		{"unauthenticated", Input{Required: staff}, DeniedUnauthenticated},
		{"admin allowed", Input{Authenticated: true, Role: auth.RoleAdmin, Required: staff}, Allowed},
		{"auditor denied", Input{Authenticated: true, Role: auth.RoleAuditor, Required: staff}, DeniedUnauthorized},
		{"unknown role denied", Input{Authenticated: true, Role: auth.RoleUnknown, Required: staff}, DeniedUnauthorized},
		{"no requirement", Input{Authenticated: true, Role: auth.RoleAuditor}, Allowed},
		{"no requirement unknown role", Input{Authenticated: true, Role: auth.RoleUnknown}, DeniedUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.in); got != tc.want {
				t.Fatalf("Resolve = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGuardRedirectsToLoginOnce(t *testing.T) {
	rec := &recorder{}
	g := New(rec, rec)

	if res := g.Update(Input{Loading: true, Required: staff}); !res.IsChecking || res.Allowed {
		t.Fatalf("unexpected result while loading: %+v", res)
	}
	for i := 0; i < 3; i++ {
		res := g.Update(Input{Required: staff})
		if res.IsChecking || res.Allowed {
			t.Fatalf("unexpected result: %+v", res)
		}
	}
	if len(rec.navigations) != 1 || rec.navigations[0] != LoginPath {
		t.Fatalf("expected one navigation to %s, got %v", LoginPath, rec.navigations)
	}
	if len(rec.notices) != 0 {
		t.Fatalf("no notice expected, got %v", rec.notices)
	}
}

func TestGuardUnauthorizedNotifiesOnce(t *testing.T) {
	rec := &recorder{}
	g := New(rec, rec)
	in := Input{Authenticated: true, Role: auth.RoleAuditor, Required: staff}

	for i := 0; i < 4; i++ {
		g.Update(in)
	}
	if g.State() != DeniedUnauthorized {
		t.Fatalf("unexpected state: %s", g.State())
	}
	if len(rec.notices) != 1 || rec.notices[0] != UnauthorizedMessage {
		t.Fatalf("expected exactly one notice, got %v", rec.notices)
	}
	if len(rec.navigations) != 1 || rec.navigations[0] != UnauthorizedPath {
		t.Fatalf("expected one navigation to %s, got %v", UnauthorizedPath, rec.navigations)
	}
}

func TestGuardReenteringStateRepeatsEffects(t *testing.T) {
	rec := &recorder{}
	g := New(rec, rec)

	g.Update(Input{Required: staff})
	g.Update(Input{Authenticated: true, Role: auth.RoleAdmin, Required: staff})
	g.Update(Input{Required: staff})

	if len(rec.navigations) != 2 {
		t.Fatalf("expected a navigation per state entry, got %v", rec.navigations)
	}
}

func TestGuardReevaluatesOnRequiredRolesChange(t *testing.T) {
	rec := &recorder{}
	g := New(rec, rec)

	res := g.Update(Input{Authenticated: true, Role: auth.RoleAdmin, Required: staff})
	if !res.Allowed {
		t.Fatalf("admin should pass staff screen")
	}
	res = g.Update(Input{Authenticated: true, Role: auth.RoleAdmin, Required: auth.NewRoleSet(auth.RoleSuperAdmin)})
	if res.Allowed {
		t.Fatalf("admin must be denied on super-admin screen")
	}
	if len(rec.notices) != 1 || len(rec.navigations) != 1 {
		t.Fatalf("unexpected effects: %v %v", rec.notices, rec.navigations)
	}
}

func TestAuditorScenario(t *testing.T) {
	session := auth.NewSession(auth.NewMemoryStore(authtest.Valid(t, "AUDITEUR")))
	rec := &recorder{}
	g := New(rec, rec)

	res := g.Update(InputFor(session, staff))
	if res.Allowed || g.State() != DeniedUnauthorized {
		t.Fatalf("auditor must be denied, state=%s", g.State())
	}
	id, ok := session.Current()
	if auth.CanCreate(id, ok) {
		t.Fatalf("auditor must not see the add client action")
	}
}

func TestInputForWithoutSession(t *testing.T) {
	session := auth.NewSession(auth.NewMemoryStore(""))
	in := InputFor(session, staff)
	if in.Authenticated || in.Loading {
		t.Fatalf("unexpected input: %+v", in)
	}
	if Resolve(in) != DeniedUnauthenticated {
		t.Fatalf("expected denied-unauthenticated")
	}
}
