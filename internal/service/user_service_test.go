package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/history"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util/errorutil"
)

func TestUpdateUserRehashesPassword(t *testing.T) {
	f := newFixture(t)
	oldHash := f.tel.User.PasswordHash

	name, email, password := " Tel Renamed ", "  Tel2@Example.com ", "fresh-pass-1"
	updated, err := f.users.UpdateUser(f.ctx, f.admin, f.tel.User.ID, UserUpdateInput{Name: &name, Email: &email, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Tel Renamed", updated.Name)
	assert.Equal(t, "tel2@example.com", updated.Email)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, password))

	entries, err := f.reader.ForDocument(f.ctx, domain.EntityUser, f.tel.User.ID, history.Query{Action: domain.ActionUpdate})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var hashChange *domain.FieldChange
	for i := range entries[0].Changes {
		if entries[0].Changes[i].Field == "passwordHash" {
			hashChange = &entries[0].Changes[i]
		}
	}
	require.NotNil(t, hashChange)
	assert.Equal(t, "[redacted]", hashChange.OldValue)
	assert.Equal(t, "[redacted]", hashChange.NewValue)
}

func TestUpdateUserRejections(t *testing.T) {
	f := newFixture(t)

	no := false
	_, err := f.users.UpdateUser(f.ctx, f.admin, f.admin.User.ID, UserUpdateInput{IsAdmin: &no})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	short := "short"
	_, err = f.users.UpdateUser(f.ctx, f.admin, f.tel.User.ID, UserUpdateInput{Password: &short})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	unknown := []string{"missing-role"}
	_, err = f.users.UpdateUser(f.ctx, f.admin, f.tel.User.ID, UserUpdateInput{AdminRoles: &unknown})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	agentRole, err := f.users.CreateRole(f.ctx, f.admin, RoleInput{
		Actor: domain.RoleActorAgent, Name: "Closer", Code: "closer",
		Permissions: []string{auth.PermAgentReservationsEditOwn},
	})
	require.NoError(t, err)
	wrongActor := []string{agentRole.ID}
	_, err = f.users.UpdateUser(f.ctx, f.admin, f.tel.User.ID, UserUpdateInput{AdminRoles: &wrongActor})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.users.UpdateUser(f.ctx, f.admin, "missing", UserUpdateInput{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	reloaded, err := f.users.GetUser(f.ctx, f.tel.User.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.AdminRoles)
	assert.Equal(t, f.tel.User.PasswordHash, reloaded.PasswordHash)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)

	err := f.users.DeleteUser(f.ctx, f.admin, f.admin.User.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	require.NoError(t, f.users.DeleteUser(f.ctx, f.admin, f.tel.User.ID))
	_, err = f.users.GetUser(f.ctx, f.tel.User.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	entries, err := f.reader.ForDocument(f.ctx, domain.EntityUser, f.tel.User.ID, history.Query{Action: domain.ActionDelete})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "[redacted]", entries[0].DeletedDocument["passwordHash"])
}

func TestRoleLifecycle(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.CreateRole(f.ctx, f.admin, RoleInput{
		Actor: domain.RoleActorAgent, Name: "Bad", Code: "bad",
		Permissions: []string{auth.PermReservationsEdit},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	role, err := f.users.CreateRole(f.ctx, f.admin, RoleInput{
		Actor: domain.RoleActorAgent, Name: " Closer ", Code: " CLOSER ",
		Permissions: []string{auth.PermAgentReservationsEditOwn},
	})
	require.NoError(t, err)
	assert.Equal(t, "Closer", role.Name)
	assert.Equal(t, "closer", role.Code)

	perms := []string{auth.PermAgentReservationsEditOwn, auth.PermAgentReservationsNotes}
	name := "Senior closer"
	updated, err := f.users.UpdateRole(f.ctx, f.admin, role.ID, RoleUpdateInput{Name: &name, Permissions: &perms})
	require.NoError(t, err)
	assert.Equal(t, "Senior closer", updated.Name)
	assert.Equal(t, perms, updated.Permissions)

	adminPerms := []string{auth.PermReservationsEdit}
	_, err = f.users.UpdateRole(f.ctx, f.admin, role.ID, RoleUpdateInput{Permissions: &adminPerms})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	held := []string{role.ID}
	_, err = f.users.UpdateUser(f.ctx, f.admin, f.agent.User.ID, UserUpdateInput{AgentRoles: &held})
	require.NoError(t, err)

	err = f.users.DeleteRole(f.ctx, f.admin, role.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	none := []string{}
	_, err = f.users.UpdateUser(f.ctx, f.admin, f.agent.User.ID, UserUpdateInput{AgentRoles: &none})
	require.NoError(t, err)
	require.NoError(t, f.users.DeleteRole(f.ctx, f.admin, role.ID))
	_, err = f.users.GetRole(f.ctx, role.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestDeleteAgentProfile(t *testing.T) {
	f := newFixture(t)

	err := f.users.DeleteAgentProfile(f.ctx, f.admin, f.agent.User.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.users.SaveAgentProfile(f.ctx, f.agent, f.agent.User.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.users.DeleteAgentProfile(f.ctx, f.admin, f.agent.User.ID))

	_, err = f.users.GetAgentProfile(f.ctx, f.agent.User.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
