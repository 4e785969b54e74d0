package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/repository"
)

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	ctx        context.Context
	clock      *testClock
	store      repository.DocumentStore
	dispatcher events.Dispatcher
	engine     *history.Engine
	reader     *history.Reader

	userRepo    repository.UserRepository
	contactRepo repository.ContactRepository
	statusRepo  repository.StatusRepository

	contacts     *ContactService
	assignments  *AssignmentService
	statuses     *StatusService
	reservations *ReservationService
	users        *UserService
	queue        *QueueService

	admin *auth.Principal
	tel   *auth.Principal
	agent *auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC)}
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher(nil)
	engine := history.NewEngine(history.EngineDependencies{Store: store, Dispatcher: dispatcher, Now: clock.Now})

	f := &fixture{
		ctx:         ctx,
		clock:       clock,
		store:       store,
		dispatcher:  dispatcher,
		engine:      engine,
		reader:      history.NewReader(store),
		userRepo:    repository.NewUserRepository(store),
		contactRepo: repository.NewContactRepository(store),
		statusRepo:  repository.NewStatusRepository(store, nil),
	}
	profileRepo := repository.NewAgentProfileRepository(store)

	f.statuses = NewStatusService(StatusDependencies{StatusRepo: f.statusRepo, ContactRepo: f.contactRepo, Engine: engine})
	f.users = NewUserService(UserDependencies{
		UserRepo:         f.userRepo,
		RoleRepo:         repository.NewRoleRepository(store),
		AgentProfileRepo: profileRepo,
		Engine:           engine,
		BcryptCost:       4,
	})
	f.contacts = NewContactService(ContactDependencies{
		ContactRepo:      f.contactRepo,
		StatusRepo:       f.statusRepo,
		UserRepo:         f.userRepo,
		AgentProfileRepo: profileRepo,
		Engine:           engine,
		Dispatcher:       dispatcher,
		Now:              clock.Now,
	})
	f.assignments = NewAssignmentService(AssignmentDependencies{
		ContactRepo: f.contactRepo,
		UserRepo:    f.userRepo,
		Engine:      engine,
		Dispatcher:  dispatcher,
		Now:         clock.Now,
	})
	f.reservations = NewReservationService(ReservationDependencies{
		ReservationRepo: repository.NewReservationRepository(store),
		Engine:          engine,
		Now:             clock.Now,
	})
	f.queue = NewQueueService(QueueDependencies{
		ContactRepo: f.contactRepo,
		StatusRepo:  f.statusRepo,
		History:     f.reader,
		Location:    time.UTC,
		Now:         clock.Now,
	})

	_, err := f.statuses.SeedDefaults(ctx)
	require.NoError(t, err)

	admin, created, err := f.users.SeedAdmin(ctx, "Admin", "admin@example.com", "secret-pass")
	require.NoError(t, err)
	require.True(t, created)
	f.admin = &auth.Principal{User: admin, AdminRoles: []*domain.Role{{Actor: domain.RoleActorAdmin, Permissions: []string{domain.WildcardPermission}}}}

	tel, err := f.users.CreateUser(ctx, f.admin, UserInput{Name: "Tel", Email: "tel@example.com", Password: "secret-pass", IsTelephoniste: true})
	require.NoError(t, err)
	f.tel = &auth.Principal{User: tel}

	agent, err := f.users.CreateUser(ctx, f.admin, UserInput{
		Name:                   "Agent",
		Email:                  "agent@example.com",
		Password:               "secret-pass",
		IsAgent:                true,
		AgentDirectPermissions: []string{auth.PermAgentReservationsViewOwn, auth.PermAgentReservationsNotes, auth.PermAgentScheduleManage},
	})
	require.NoError(t, err)
	f.agent = &auth.Principal{User: agent}
	return f
}

func (f *fixture) status(t *testing.T, code string) *domain.ContactStatus {
	t.Helper()
	s, err := f.statusRepo.GetByCode(f.ctx, code)
	require.NoError(t, err)
	return s
}

func (f *fixture) assignedContact(t *testing.T, phone string) *domain.Contact {
	t.Helper()
	c, err := f.contacts.Create(f.ctx, f.admin, ContactCreateInput{Phone: phone, Name: "Lead " + phone, AssignedToTelephonisteID: &f.tel.User.ID})
	require.NoError(t, err)
	return c
}
