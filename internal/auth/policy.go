// Package auth implements the authorization gate: a declarative
// (role × action) policy table plus bearer-token identity verification.
//
// The gate is pure and stateless. It trusts the role/identity supplied by the
// caller (authentication belongs to the external account service) and only
// answers whether that role may perform an action.
package auth

import "github.com/campusconnect/event-portal/internal/model"

// Action is a capability a caller may attempt.
type Action string

const (
	ActionCreateRegistration     Action = "create-registration"
	ActionListOwnRegistrations   Action = "list-own-registrations"
	ActionListEventRegistrations Action = "list-event-registrations"
	ActionMarkAttendance         Action = "mark-attendance"
	ActionCancelRegistration     Action = "cancel-registration"
	ActionManageEvents           Action = "manage-events"
	ActionManageAccounts         Action = "manage-accounts"
)

// Identity is the authenticated caller, as supplied by the account service.
type Identity struct {
	AccountID string
	Role      model.Role
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// allow is the shared "yes" decision.
var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// policy maps each action to the roles permitted to perform it. Adding a role
// or action is a data change here, not a code change at every call site.
var policy = map[Action]map[model.Role]bool{
	ActionCreateRegistration:     {model.RoleStudent: true},
	ActionListOwnRegistrations:   {model.RoleStudent: true, model.RoleAdmin: true},
	ActionListEventRegistrations: {model.RoleOrganizer: true, model.RoleAdmin: true},
	ActionMarkAttendance:         {model.RoleOrganizer: true, model.RoleAdmin: true},
	ActionCancelRegistration:     {model.RoleStudent: true, model.RoleOrganizer: true, model.RoleAdmin: true},
	ActionManageEvents:           {model.RoleAdmin: true},
	ActionManageAccounts:         {model.RoleAdmin: true},
}

// ownerScoped lists the actions where a student may only act on resources
// they own. Organizers and admins are never owner-scoped.
var ownerScoped = map[Action]bool{
	ActionListOwnRegistrations: true,
	ActionCancelRegistration:   true,
}

// Authorize decides whether the caller may perform action. For owner-scoped
// actions, resourceOwner is the account that owns the target resource; pass
// "" for actions without a specific owner.
func Authorize(caller Identity, action Action, resourceOwner string) Decision {
	roles, ok := policy[action]
	if !ok {
		return deny("unknown action " + string(action))
	}
	if !roles[caller.Role] {
		return deny(string(caller.Role) + " may not perform " + string(action))
	}
	if ownerScoped[action] && caller.Role == model.RoleStudent && caller.AccountID != resourceOwner {
		return deny("students may only act on their own registrations")
	}
	return allow
}

// Err converts a denial into a *model.ForbiddenError, or nil when allowed.
// Services use it to surface denials as first-class results.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &model.ForbiddenError{Reason: d.Reason}
}
