package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// UsersHandler manages users, roles and agent profiles.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	list, err := h.users.ListUsers(c.UserContext(), repository.UserFilter{
		IsTelephoniste: queryBool(c, "isTelephoniste"),
		IsAdmin:        queryBool(c, "isAdmin"),
		IsAgent:        queryBool(c, "isAgent"),
		Search:         c.Query("search"),
		Limit:          queryInt(c, "limit", 50),
		Offset:         queryInt(c, "offset", 0),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(list)})
}

// Telephonistes GET /telephonistes.
func (h *UsersHandler) Telephonistes(c *fiber.Ctx) error {
	list, err := h.users.ListTelephonistes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(list)})
}

// Agents GET /agents.
func (h *UsersHandler) Agents(c *fiber.Ctx) error {
	list, err := h.users.ListAgents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(list)})
}

// Get GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.CreateUser(c.UserContext(), p, service.UserInput{
		Name:                   req.Name,
		Email:                  req.Email,
		Password:               req.Password,
		IsTelephoniste:         req.IsTelephoniste,
		IsAdmin:                req.IsAdmin,
		IsAgent:                req.IsAgent,
		AdminRoles:             req.AdminRoles,
		AgentRoles:             req.AgentRoles,
		AdminDirectPermissions: req.AdminDirectPermissions,
		AgentDirectPermissions: req.AgentDirectPermissions,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.UserContext(), p, c.Params("id"), service.UserUpdateInput{
		Name:                   req.Name,
		Email:                  req.Email,
		Password:               req.Password,
		IsTelephoniste:         req.IsTelephoniste,
		IsAdmin:                req.IsAdmin,
		IsAgent:                req.IsAgent,
		AdminRoles:             req.AdminRoles,
		AgentRoles:             req.AgentRoles,
		AdminDirectPermissions: req.AdminDirectPermissions,
		AgentDirectPermissions: req.AgentDirectPermissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Delete DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoles GET /roles?actor=.
func (h *UsersHandler) ListRoles(c *fiber.Ctx) error {
	list, err := h.users.ListRoles(c.UserContext(), domain.RoleActor(strings.ToLower(c.Query("actor"))))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// CreateRole POST /roles.
func (h *UsersHandler) CreateRole(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.users.CreateRole(c.UserContext(), p, service.RoleInput{
		Actor:       req.Actor,
		Name:        req.Name,
		Code:        req.Code,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": role})
}

// UpdateRole PATCH /roles/:id.
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := h.users.UpdateRole(c.UserContext(), p, c.Params("id"), service.RoleUpdateInput{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": role})
}

// DeleteRole DELETE /roles/:id.
func (h *UsersHandler) DeleteRole(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteRole(c.UserContext(), p, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAgentProfiles GET /agent-profiles.
func (h *UsersHandler) ListAgentProfiles(c *fiber.Ctx) error {
	list, err := h.users.ListAgentProfiles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

// GetAgentProfile GET /agent-profiles/:userId.
func (h *UsersHandler) GetAgentProfile(c *fiber.Ctx) error {
	profile, err := h.users.GetAgentProfile(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// SaveAgentProfile PUT /agent-profiles/:userId.
func (h *UsersHandler) SaveAgentProfile(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AgentProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	profile, err := h.users.SaveAgentProfile(c.UserContext(), p, c.Params("userId"), req.Availability)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profile})
}

// DeleteAgentProfile DELETE /agent-profiles/:userId.
func (h *UsersHandler) DeleteAgentProfile(c *fiber.Ctx) error {
	p, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteAgentProfile(c.UserContext(), p, c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
