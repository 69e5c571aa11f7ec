package auth

// Action names a protected console operation.
type Action string

const (
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionCreate       Action = "create"
	ActionSuspend      Action = "suspend"
	ActionManageUsers  Action = "manage_users"
	ActionApprove      Action = "approve"
	ActionReject       Action = "reject"
	ActionCreateTicket Action = "create_ticket"
	ActionUpdateTicket Action = "update_ticket"
)

// Auditors appear nowhere below: they never mutate.
var policy = map[Action]RoleSet{
	ActionEdit:         NewRoleSet(RoleAdmin, RoleSuperAdmin),
	ActionDelete:       NewRoleSet(RoleSuperAdmin),
	ActionCreate:       NewRoleSet(RoleAdmin, RoleSuperAdmin),
	ActionSuspend:      NewRoleSet(RoleSuperAdmin),
	ActionManageUsers:  NewRoleSet(RoleSuperAdmin),
	ActionApprove:      NewRoleSet(RoleAdmin, RoleSuperAdmin),
	ActionReject:       NewRoleSet(RoleAdmin, RoleSuperAdmin),
	ActionCreateTicket: NewRoleSet(RoleAdmin, RoleSuperAdmin),
	ActionUpdateTicket: NewRoleSet(RoleAdmin, RoleSuperAdmin),
}

// Actions lists every protected action in a stable order.
func Actions() []Action {
	return []Action{
		ActionEdit, ActionDelete, ActionCreate, ActionSuspend, ActionManageUsers,
		ActionApprove, ActionReject, ActionCreateTicket, ActionUpdateTicket,
	}
}

// Allowed reports whether the identity may perform action. ok=false means no
// session, which denies everything. Unknown actions are denied.
func Allowed(action Action, id Identity, ok bool) bool {
	if !ok {
		return false
	}
	roles, found := policy[action]
	if !found {
		return false
	}
	return roles.Contains(id.Role)
}

// Capabilities evaluates every action for the identity.
func Capabilities(id Identity, ok bool) map[Action]bool {
	out := make(map[Action]bool, len(policy))
	for _, a := range Actions() {
		out[a] = Allowed(a, id, ok)
	}
	return out
}

func CanEdit(id Identity, ok bool) bool          { return Allowed(ActionEdit, id, ok) }
func CanDelete(id Identity, ok bool) bool        { return Allowed(ActionDelete, id, ok) }
func CanCreate(id Identity, ok bool) bool        { return Allowed(ActionCreate, id, ok) }
func CanSuspend(id Identity, ok bool) bool       { return Allowed(ActionSuspend, id, ok) }
func CanManageUsers(id Identity, ok bool) bool   { return Allowed(ActionManageUsers, id, ok) }
func CanApprove(id Identity, ok bool) bool       { return Allowed(ActionApprove, id, ok) }
func CanReject(id Identity, ok bool) bool        { return Allowed(ActionReject, id, ok) }
func CanCreateTickets(id Identity, ok bool) bool { return Allowed(ActionCreateTicket, id, ok) }
func CanUpdateTickets(id Identity, ok bool) bool { return Allowed(ActionUpdateTicket, id, ok) }
