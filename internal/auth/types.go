package auth

import (
	"sort"
	"strings"
	"time"
)

// Role is the capability tier carried by an identity token.
type Role int

const (
	// RoleUnknown covers every role string the console does not recognise.
	// No predicate and no required-role set ever admits it.
	RoleUnknown Role = iota
	RoleAdmin
	RoleSuperAdmin
	RoleAuditor
)

var roleNames = map[Role]string{
	RoleAdmin:      "ADMIN",
	RoleSuperAdmin: "SUPER_ADMIN",
	RoleAuditor:    "AUDITEUR",
}

// ParseRole classifies a raw role claim.
func ParseRole(raw string) Role {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	for role, name := range roleNames {
		if name == raw {
			return role
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// RoleSet is the set of roles a screen or action admits.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from roles. RoleUnknown is never stored.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r == RoleUnknown {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	if r == RoleUnknown {
		return false
	}
	_, ok := s[r]
	return ok
}

// Strings returns the sorted role names.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r.String())
	}
	sort.Strings(out)
	return out
}

// Identity is the decoded content of an identity token.
type Identity struct {
	Subject        string    `json:"sub"`
	UserID         string    `json:"id"`
	Name           string    `json:"name"`
	Role           Role      `json:"-"`
	RawRole        string    `json:"role"`
	AccountExpired bool      `json:"accountExpired"`
	IssuedAt       time.Time `json:"iat"`
	ExpiresAt      time.Time `json:"exp"`
}

// ValidAt reports whether the token is still usable at now.
// A token without an expiry is never valid.
func (id Identity) ValidAt(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.Before(id.ExpiresAt)
}
