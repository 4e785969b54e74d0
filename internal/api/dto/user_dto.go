package dto

import (
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserResponse is the public view of a user. The password hash never leaves the service.
type UserResponse struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Email                  string    `json:"email"`
	IsTelephoniste         bool      `json:"isTelephoniste"`
	IsAdmin                bool      `json:"isAdmin"`
	IsAgent                bool      `json:"isAgent"`
	AdminRoles             []string  `json:"adminRoles"`
	AgentRoles             []string  `json:"agentRoles"`
	AdminDirectPermissions []string  `json:"adminDirectPermissions"`
	AgentDirectPermissions []string  `json:"agentDirectPermissions"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		IsTelephoniste:         u.IsTelephoniste,
		IsAdmin:                u.IsAdmin,
		IsAgent:                u.IsAgent,
		AdminRoles:             u.AdminRoles,
		AgentRoles:             u.AgentRoles,
		AdminDirectPermissions: u.AdminDirectPermissions,
		AgentDirectPermissions: u.AgentDirectPermissions,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
	}
}

// NewUserResponses maps a list of users.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateUserRequest payload for user creation.
type CreateUserRequest struct {
	Name                   string   `json:"name" validate:"required,max=200"`
	Email                  string   `json:"email" validate:"required,email"`
	Password               string   `json:"password" validate:"required,min=8"`
	IsTelephoniste         bool     `json:"isTelephoniste"`
	IsAdmin                bool     `json:"isAdmin"`
	IsAgent                bool     `json:"isAgent"`
	AdminRoles             []string `json:"adminRoles"`
	AgentRoles             []string `json:"agentRoles"`
	AdminDirectPermissions []string `json:"adminDirectPermissions"`
	AgentDirectPermissions []string `json:"agentDirectPermissions"`
}

// UpdateUserRequest payload for user edits. Omitted fields stay unchanged.
type UpdateUserRequest struct {
	Name                   *string   `json:"name" validate:"omitempty,max=200"`
	Email                  *string   `json:"email" validate:"omitempty,email"`
	Password               *string   `json:"password" validate:"omitempty,min=8"`
	IsTelephoniste         *bool     `json:"isTelephoniste"`
	IsAdmin                *bool     `json:"isAdmin"`
	IsAgent                *bool     `json:"isAgent"`
	AdminRoles             *[]string `json:"adminRoles"`
	AgentRoles             *[]string `json:"agentRoles"`
	AdminDirectPermissions *[]string `json:"adminDirectPermissions"`
	AgentDirectPermissions *[]string `json:"agentDirectPermissions"`
}

// RoleRequest payload for role creation.
type RoleRequest struct {
	Actor       domain.RoleActor `json:"actor" validate:"required,oneof=admin agent"`
	Name        string           `json:"name" validate:"required,max=100"`
	Code        string           `json:"code" validate:"required,max=50"`
	Permissions []string         `json:"permissions"`
}

// UpdateRoleRequest payload for role edits.
type UpdateRoleRequest struct {
	Name        *string   `json:"name" validate:"omitempty,max=100"`
	Permissions *[]string `json:"permissions"`
}

// AgentProfileRequest replaces an agent's availability.
type AgentProfileRequest struct {
	Availability []domain.AvailabilitySlot `json:"availability" validate:"dive"`
}
