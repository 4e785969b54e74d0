package auth

import (
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
)

// Admin permission codes.
const (
	PermContactsView      = "admin.contacts.view"
	PermContactsCreate    = "admin.contacts.create"
	PermContactsEdit      = "admin.contacts.edit"
	PermContactsDelete    = "admin.contacts.delete"
	PermContactsAssign    = "admin.contacts.assign"
	PermContactsUnassign  = "admin.contacts.unassign"
	PermStatusesView      = "admin.contact_statuses.view"
	PermStatusesCreate    = "admin.contact_statuses.create"
	PermStatusesEdit      = "admin.contact_statuses.edit"
	PermStatusesDelete    = "admin.contact_statuses.delete"
	PermTelephonistesView = "admin.telephonistes.view"
	PermUsersView         = "admin.users.view"
	PermUsersCreate       = "admin.users.create"
	PermUsersEdit         = "admin.users.edit"
	PermUsersDelete       = "admin.users.delete"
	PermRolesView         = "admin.roles.view"
	PermRolesCreate       = "admin.roles.create"
	PermRolesEdit         = "admin.roles.edit"
	PermRolesDelete       = "admin.roles.delete"
	PermReservationsView  = "admin.reservations.view"
	PermReservationsEdit  = "admin.reservations.edit"
	PermHistoryView       = "admin.history.view"
)

// Agent permission codes.
const (
	PermAgentReservationsViewOwn = "agent.reservations.view_own"
	PermAgentReservationsNotes   = "agent.reservations.add_notes"
	PermAgentReservationsEditOwn = "agent.reservations.edit_own"
	PermAgentScheduleManage      = "agent.schedule.manage_availability"
)

// Principal represents the authenticated caller with resolved roles.
type Principal struct {
	User       *domain.User
	AdminRoles []*domain.Role
	AgentRoles []*domain.Role
	Metadata   *domain.HistoryMetadata
}

// UserID returns the caller id.
func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// Actor builds the history actor context for mutations made by p.
func (p *Principal) Actor() history.ActorContext {
	if p == nil {
		return history.SystemActor()
	}
	return history.NewActor(p.User, p.Metadata)
}

// HasAdminPermission requires the admin flag plus the permission, granted
// directly or through an admin role, exactly or by wildcard.
func (p *Principal) HasAdminPermission(permission string) bool {
	if p == nil || p.User == nil || !p.User.IsAdmin {
		return false
	}
	return grants(p.User.AdminDirectPermissions, p.AdminRoles, permission)
}

// HasAgentPermission is the agent-side counterpart of HasAdminPermission.
func (p *Principal) HasAgentPermission(permission string) bool {
	if p == nil || p.User == nil || !p.User.IsAgent {
		return false
	}
	return grants(p.User.AgentDirectPermissions, p.AgentRoles, permission)
}

// IsTelephoniste reports whether the caller works the contact queue.
func (p *Principal) IsTelephoniste() bool {
	return p != nil && p.User != nil && p.User.IsTelephoniste
}

// CanWorkContact allows the assigned telephoniste or an admin able to edit contacts.
func (p *Principal) CanWorkContact(c *domain.Contact) bool {
	if p.IsTelephoniste() && c.IsAssignedTo(p.User.ID) {
		return true
	}
	return p.HasAdminPermission(PermContactsEdit)
}

func grants(direct []string, roles []*domain.Role, permission string) bool {
	if domain.HasPermission(direct, permission) {
		return true
	}
	for _, role := range roles {
		if role != nil && role.Grants(permission) {
			return true
		}
	}
	return false
}
