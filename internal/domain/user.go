package domain

// User is any person able to sign in: telephoniste, admin, field agent.
type User struct {
	Tracking

	Name                   string   `json:"name" validate:"required,max=200"`
	Email                  string   `json:"email" validate:"required,email"`
	PasswordHash           string   `json:"passwordHash" validate:"required"`
	IsTelephoniste         bool     `json:"isTelephoniste"`
	IsAdmin                bool     `json:"isAdmin"`
	IsAgent                bool     `json:"isAgent"`
	AdminRoles             []string `json:"adminRoles"`
	AgentRoles             []string `json:"agentRoles"`
	AdminDirectPermissions []string `json:"adminDirectPermissions"`
	AgentDirectPermissions []string `json:"agentDirectPermissions"`
}

// NewUser returns a user with empty role lists.
func NewUser(name, email string) *User {
	return &User{
		Name:                   name,
		Email:                  email,
		AdminRoles:             []string{},
		AgentRoles:             []string{},
		AdminDirectPermissions: []string{},
		AgentDirectPermissions: []string{},
	}
}

func (u *User) Kind() EntityType { return EntityUser }

// RedactedFields keeps the password hash out of history.
func (u *User) RedactedFields() []string { return []string{"passwordHash"} }

// Snapshot captures the user's identity for a history entry.
func (u *User) Snapshot() *UserSnapshot {
	return &UserSnapshot{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		IsTelephoniste:         u.IsTelephoniste,
		IsAdmin:                u.IsAdmin,
		IsAgent:                u.IsAgent,
		AdminRoles:             append([]string(nil), u.AdminRoles...),
		AgentRoles:             append([]string(nil), u.AgentRoles...),
		AdminDirectPermissions: append([]string(nil), u.AdminDirectPermissions...),
		AgentDirectPermissions: append([]string(nil), u.AgentDirectPermissions...),
	}
}
