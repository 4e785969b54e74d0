package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

// UserService manages users, roles and field-agent profiles.
type UserService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	profiles   repository.AgentProfileRepository
	engine     *history.Engine
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo         repository.UserRepository
	RoleRepo         repository.RoleRepository
	AgentProfileRepo repository.AgentProfileRepository
	Engine           *history.Engine
	BcryptCost       int
	Logger           *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		profiles:   deps.AgentProfileRepo,
		engine:     deps.Engine,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// UserInput is the user creation payload.
type UserInput struct {
	Name                   string
	Email                  string
	Password               string
	IsTelephoniste         bool
	IsAdmin                bool
	IsAgent                bool
	AdminRoles             []string
	AgentRoles             []string
	AdminDirectPermissions []string
	AgentDirectPermissions []string
}

// UserUpdateInput lists editable user fields. Nil means unchanged.
type UserUpdateInput struct {
	Name                   *string
	Email                  *string
	Password               *string
	IsTelephoniste         *bool
	IsAdmin                *bool
	IsAgent                *bool
	AdminRoles             *[]string
	AgentRoles             *[]string
	AdminDirectPermissions *[]string
	AgentDirectPermissions *[]string
}

// RoleInput is the role payload.
type RoleInput struct {
	Actor       domain.RoleActor
	Name        string
	Code        string
	Permissions []string
}

// RoleUpdateInput lists editable role fields. Nil means unchanged.
type RoleUpdateInput struct {
	Name        *string
	Permissions *[]string
}

// ListUsers returns users matching filter.
func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]*domain.User, error) {
	list, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// ListTelephonistes returns every telephoniste.
func (s *UserService) ListTelephonistes(ctx context.Context) ([]*domain.User, error) {
	yes := true
	return s.ListUsers(ctx, repository.UserFilter{IsTelephoniste: &yes, Limit: 500})
}

// ListAgents returns every field agent.
func (s *UserService) ListAgents(ctx context.Context) ([]*domain.User, error) {
	yes := true
	return s.ListUsers(ctx, repository.UserFilter{IsAgent: &yes, Limit: 500})
}

// GetUser returns one user.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("user", id, err)
	}
	return user, nil
}

// CreateUser hashes the password and stores the user.
func (s *UserService) CreateUser(ctx context.Context, p *auth.Principal, input UserInput) (*domain.User, error) {
	return s.createUser(ctx, p.Actor(), input)
}

func (s *UserService) createUser(ctx context.Context, actor history.ActorContext, input UserInput) (*domain.User, error) {
	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}
	if err := s.checkRoles(ctx, domain.RoleActorAdmin, input.AdminRoles); err != nil {
		return nil, err
	}
	if err := s.checkRoles(ctx, domain.RoleActorAgent, input.AgentRoles); err != nil {
		return nil, err
	}

	user := domain.NewUser(strings.TrimSpace(input.Name), strings.ToLower(strings.TrimSpace(input.Email)))
	user.PasswordHash = hash
	user.IsTelephoniste = input.IsTelephoniste
	user.IsAdmin = input.IsAdmin
	user.IsAgent = input.IsAgent
	user.AdminRoles = nonNil(input.AdminRoles)
	user.AgentRoles = nonNil(input.AgentRoles)
	user.AdminDirectPermissions = nonNil(input.AdminDirectPermissions)
	user.AgentDirectPermissions = nonNil(input.AgentDirectPermissions)

	if err := s.engine.Create(ctx, actor, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID()))
	return user, nil
}

// UpdateUser edits a user. A new password is re-hashed.
func (s *UserService) UpdateUser(ctx context.Context, p *auth.Principal, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if v := trimmed(input.Name); v != nil {
		updates["name"] = *v
	}
	if v := trimmed(input.Email); v != nil {
		updates["email"] = strings.ToLower(*v)
	}
	if input.Password != nil {
		hash, err := s.hash(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["passwordHash"] = hash
	}
	if input.IsTelephoniste != nil {
		updates["isTelephoniste"] = *input.IsTelephoniste
	}
	if input.IsAdmin != nil {
		if !*input.IsAdmin && id == p.UserID() {
			return nil, apperrors.NewValidationError("you cannot remove your own admin access", nil)
		}
		updates["isAdmin"] = *input.IsAdmin
	}
	if input.IsAgent != nil {
		updates["isAgent"] = *input.IsAgent
	}
	if input.AdminRoles != nil {
		if err := s.checkRoles(ctx, domain.RoleActorAdmin, *input.AdminRoles); err != nil {
			return nil, err
		}
		updates["adminRoles"] = nonNil(*input.AdminRoles)
	}
	if input.AgentRoles != nil {
		if err := s.checkRoles(ctx, domain.RoleActorAgent, *input.AgentRoles); err != nil {
			return nil, err
		}
		updates["agentRoles"] = nonNil(*input.AgentRoles)
	}
	if input.AdminDirectPermissions != nil {
		updates["adminDirectPermissions"] = nonNil(*input.AdminDirectPermissions)
	}
	if input.AgentDirectPermissions != nil {
		updates["agentDirectPermissions"] = nonNil(*input.AgentDirectPermissions)
	}
	if _, err := s.engine.Update(ctx, p.Actor(), user, updates); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user other than the caller.
func (s *UserService) DeleteUser(ctx context.Context, p *auth.Principal, id string) error {
	if id == p.UserID() {
		return apperrors.NewValidationError("you cannot delete your own account", nil)
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return s.engine.Delete(ctx, p.Actor(), user)
}

// SeedAdmin creates the bootstrap admin with a wildcard admin role when no
// user holds email yet.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (*domain.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, false, nil
	}
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, apperrors.NewPersistenceError(err)
	}

	role, err := s.roles.GetByCode(ctx, "super_admin")
	if errors.Is(err, repository.ErrNotFound) {
		role = &domain.Role{
			Actor:       domain.RoleActorAdmin,
			Name:        "Super admin",
			Code:        "super_admin",
			Permissions: []string{domain.WildcardPermission},
		}
		err = s.engine.Create(ctx, history.SystemActor(), role)
	}
	if err != nil {
		return nil, false, err
	}

	if name == "" {
		name = "Administrator"
	}
	user, err := s.createUser(ctx, history.SystemActor(), UserInput{
		Name:       name,
		Email:      email,
		Password:   password,
		IsAdmin:    true,
		AdminRoles: []string{role.ID},
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// ListRoles returns the roles for actor, or every role when actor is empty.
func (s *UserService) ListRoles(ctx context.Context, actor domain.RoleActor) ([]*domain.Role, error) {
	list, err := s.roles.List(ctx, actor)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// GetRole returns one role.
func (s *UserService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, loadError("role", id, err)
	}
	return role, nil
}

// CreateRole stores a new role.
func (s *UserService) CreateRole(ctx context.Context, p *auth.Principal, input RoleInput) (*domain.Role, error) {
	if err := checkPermissions(input.Actor, input.Permissions); err != nil {
		return nil, err
	}
	role := &domain.Role{
		Actor:       input.Actor,
		Name:        strings.TrimSpace(input.Name),
		Code:        strings.ToLower(strings.TrimSpace(input.Code)),
		Permissions: nonNil(input.Permissions),
	}
	if err := s.engine.Create(ctx, p.Actor(), role); err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateRole edits a role's name or permissions.
func (s *UserService) UpdateRole(ctx context.Context, p *auth.Principal, id string, input RoleUpdateInput) (*domain.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if v := trimmed(input.Name); v != nil {
		updates["name"] = *v
	}
	if input.Permissions != nil {
		if err := checkPermissions(role.Actor, *input.Permissions); err != nil {
			return nil, err
		}
		updates["permissions"] = nonNil(*input.Permissions)
	}
	if _, err := s.engine.Update(ctx, p.Actor(), role, updates); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole removes a role no user holds.
func (s *UserService) DeleteRole(ctx context.Context, p *auth.Principal, id string) error {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	users, err := s.users.List(ctx, repository.UserFilter{Limit: 10000})
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	for _, u := range users {
		if contains(u.AdminRoles, id) || contains(u.AgentRoles, id) {
			return apperrors.NewValidationError("role is assigned to users", map[string]any{"userId": u.ID})
		}
	}
	return s.engine.Delete(ctx, p.Actor(), role)
}

// GetAgentProfile returns the profile of a field agent.
func (s *UserService) GetAgentProfile(ctx context.Context, userID string) (*domain.AgentProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, loadError("agent profile", userID, err)
	}
	return profile, nil
}

// ListAgentProfiles returns every agent profile.
func (s *UserService) ListAgentProfiles(ctx context.Context) ([]*domain.AgentProfile, error) {
	list, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	return list, nil
}

// SaveAgentProfile creates or replaces the availability of agent userID.
// Agents may only edit their own schedule.
func (s *UserService) SaveAgentProfile(ctx context.Context, p *auth.Principal, userID string, availability []domain.AvailabilitySlot) (*domain.AgentProfile, error) {
	self := userID == p.UserID() && p.HasAgentPermission(auth.PermAgentScheduleManage)
	if !self && !p.HasAdminPermission(auth.PermUsersEdit) {
		return nil, apperrors.NewForbidden("cannot manage this schedule")
	}
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAgent {
		return nil, apperrors.NewValidationError("user is not a field agent", map[string]any{"userId": userID})
	}
	if availability == nil {
		availability = []domain.AvailabilitySlot{}
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		profile = &domain.AgentProfile{UserID: userID, Availability: availability}
		if err := s.engine.Create(ctx, p.Actor(), profile); err != nil {
			return nil, err
		}
		return profile, nil
	case err != nil:
		return nil, apperrors.NewPersistenceError(err)
	}
	if _, err := s.engine.Update(ctx, p.Actor(), profile, map[string]any{"availability": availability}); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteAgentProfile removes the profile of agent userID.
func (s *UserService) DeleteAgentProfile(ctx context.Context, p *auth.Principal, userID string) error {
	profile, err := s.GetAgentProfile(ctx, userID)
	if err != nil {
		return err
	}
	return s.engine.Delete(ctx, p.Actor(), profile)
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrWeakPassword) {
		return "", apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

func (s *UserService) checkRoles(ctx context.Context, actor domain.RoleActor, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	roles, err := s.roles.ListByIDs(ctx, ids)
	if err != nil {
		return apperrors.NewPersistenceError(err)
	}
	found := make(map[string]bool, len(roles))
	for _, r := range roles {
		if r.Actor == actor {
			found[r.ID] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			return apperrors.NewValidationError("invalid role id", map[string]any{"roleId": id, "actor": actor})
		}
	}
	return nil
}

func checkPermissions(actor domain.RoleActor, perms []string) error {
	prefix := string(actor) + "."
	for _, perm := range perms {
		if perm != domain.WildcardPermission && !strings.HasPrefix(perm, prefix) {
			return apperrors.NewValidationError("permission does not belong to role actor", map[string]any{"permission": perm, "actor": actor})
		}
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
