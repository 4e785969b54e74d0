package domain

// RoleActor tells which side of the product a role applies to.
type RoleActor string

const (
	RoleActorAdmin RoleActor = "admin"
	RoleActorAgent RoleActor = "agent"
)

// WildcardPermission grants every permission of its actor.
const WildcardPermission = "*"

// Role is a named permission bundle.
type Role struct {
	Tracking

	Actor       RoleActor `json:"actor" validate:"required,oneof=admin agent"`
	Name        string    `json:"name" validate:"required,max=100"`
	Code        string    `json:"code" validate:"required,max=50"`
	Permissions []string  `json:"permissions"`
}

func (r *Role) Kind() EntityType { return EntityRole }

// Grants reports whether the role holds permission directly or by wildcard.
func (r *Role) Grants(permission string) bool {
	return HasPermission(r.Permissions, permission)
}

// HasPermission reports whether perms contains permission or the wildcard.
func HasPermission(perms []string, permission string) bool {
	for _, p := range perms {
		if p == WildcardPermission || p == permission {
			return true
		}
	}
	return false
}
