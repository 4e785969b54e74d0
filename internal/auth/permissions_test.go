package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func adminUser(direct ...string) *domain.User {
	u := domain.NewUser("Admin", "admin@example.com")
	u.ID = "admin-1"
	u.IsAdmin = true
	u.AdminDirectPermissions = direct
	return u
}

func TestHasAdminPermission(t *testing.T) {
	direct := &Principal{User: adminUser(PermContactsView)}
	assert.True(t, direct.HasAdminPermission(PermContactsView))
	assert.False(t, direct.HasAdminPermission(PermContactsDelete))

	wildcard := &Principal{User: adminUser(domain.WildcardPermission)}
	assert.True(t, wildcard.HasAdminPermission(PermHistoryView))

	viaRole := &Principal{
		User:       adminUser(),
		AdminRoles: []*domain.Role{{Actor: domain.RoleActorAdmin, Permissions: []string{PermContactsAssign}}},
	}
	assert.True(t, viaRole.HasAdminPermission(PermContactsAssign))
	assert.False(t, viaRole.HasAdminPermission(PermUsersCreate))

	notAdmin := &Principal{User: adminUser(domain.WildcardPermission)}
	notAdmin.User.IsAdmin = false
	assert.False(t, notAdmin.HasAdminPermission(PermContactsView))

	var nobody *Principal
	assert.False(t, nobody.HasAdminPermission(PermContactsView))
}

func TestCanWorkContact(t *testing.T) {
	tel := domain.NewUser("Tel", "tel@example.com")
	tel.ID = "tel-1"
	tel.IsTelephoniste = true
	p := &Principal{User: tel}

	c := domain.NewContact("5141234567")
	assert.False(t, p.CanWorkContact(c))

	id := "tel-1"
	c.AssignedToTelephonisteID = &id
	assert.True(t, p.CanWorkContact(c))

	editor := &Principal{User: adminUser(PermContactsEdit)}
	c.AssignedToTelephonisteID = nil
	assert.True(t, editor.CanWorkContact(c))
}

func TestPrincipalActor(t *testing.T) {
	p := &Principal{User: adminUser(), Metadata: &domain.HistoryMetadata{RequestID: "req-1"}}
	actor := p.Actor()
	require.NotNil(t, actor.ActorID)
	assert.Equal(t, "admin-1", *actor.ActorID)
	assert.Equal(t, "req-1", actor.Metadata.RequestID)
	assert.True(t, (*Principal)(nil).Actor().IsSystem())
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, exp, err := tm.GenerateToken("user-1", true, false, false)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.IsTelephoniste)

	_, err = NewTokenManager("other", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := tm.GenerateToken("user-1", false, true, false)
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short", 4)
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("long-enough", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "long-enough"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}
