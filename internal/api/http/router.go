package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Contacts       *handlers.ContactsHandler
	Statuses       *handlers.StatusesHandler
	Queue          *handlers.QueueHandler
	Reservations   *handlers.ReservationsHandler
	History        *handlers.HistoryHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Registry       *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/auth/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	contacts := protected.Group("/contacts")
	contacts.Get("", auth.RequireAdminPermission(auth.PermContactsView), cfg.Contacts.List)
	contacts.Post("", auth.RequireAdminPermission(auth.PermContactsCreate), cfg.Contacts.Create)
	contacts.Post("/assign", auth.RequireAdminPermission(auth.PermContactsAssign), cfg.Contacts.Assign)
	contacts.Post("/unassign", auth.RequireAdminPermission(auth.PermContactsUnassign), cfg.Contacts.Unassign)
	contacts.Get("/:id", cfg.Contacts.Get)
	contacts.Patch("/:id", auth.RequireAdminPermission(auth.PermContactsEdit), cfg.Contacts.Update)
	contacts.Delete("/:id", auth.RequireAdminPermission(auth.PermContactsDelete), cfg.Contacts.Delete)
	contacts.Post("/:id/status", cfg.Contacts.UpdateStatus)
	contacts.Post("/:id/call-log", cfg.Contacts.LogCall)
	contacts.Post("/:id/notes", cfg.Contacts.AddNote)
	contacts.Post("/:id/convert", cfg.Contacts.Convert)

	statuses := protected.Group("/contact-statuses")
	statuses.Get("", cfg.Statuses.List)
	statuses.Post("", auth.RequireAdminPermission(auth.PermStatusesCreate), cfg.Statuses.Create)
	statuses.Patch("/:id", auth.RequireAdminPermission(auth.PermStatusesEdit), cfg.Statuses.Update)
	statuses.Delete("/:id", auth.RequireAdminPermission(auth.PermStatusesDelete), cfg.Statuses.Delete)

	protected.Get("/telephoniste/contacts/random", auth.RequireTelephoniste(), cfg.Queue.Next)
	protected.Get("/telephoniste/contacts/activity-history", auth.RequireTelephoniste(), cfg.Queue.ActivityHistory)
	protected.Get("/telephonistes", auth.RequireAdminPermission(auth.PermTelephonistesView), cfg.Users.Telephonistes)
	protected.Get("/agents", auth.RequireAdminPermission(auth.PermUsersView), cfg.Users.Agents)

	users := protected.Group("/users")
	users.Get("", auth.RequireAdminPermission(auth.PermUsersView), cfg.Users.List)
	users.Post("", auth.RequireAdminPermission(auth.PermUsersCreate), cfg.Users.Create)
	users.Get("/:id", auth.RequireAdminPermission(auth.PermUsersView), cfg.Users.Get)
	users.Patch("/:id", auth.RequireAdminPermission(auth.PermUsersEdit), cfg.Users.Update)
	users.Delete("/:id", auth.RequireAdminPermission(auth.PermUsersDelete), cfg.Users.Delete)

	roles := protected.Group("/roles")
	roles.Get("", auth.RequireAdminPermission(auth.PermRolesView), cfg.Users.ListRoles)
	roles.Post("", auth.RequireAdminPermission(auth.PermRolesCreate), cfg.Users.CreateRole)
	roles.Patch("/:id", auth.RequireAdminPermission(auth.PermRolesEdit), cfg.Users.UpdateRole)
	roles.Delete("/:id", auth.RequireAdminPermission(auth.PermRolesDelete), cfg.Users.DeleteRole)

	profiles := protected.Group("/agent-profiles")
	profiles.Get("", auth.RequireAdminPermission(auth.PermUsersView), cfg.Users.ListAgentProfiles)
	profiles.Get("/:userId", cfg.Users.GetAgentProfile)
	profiles.Put("/:userId", cfg.Users.SaveAgentProfile)
	profiles.Delete("/:userId", auth.RequireAdminPermission(auth.PermUsersEdit), cfg.Users.DeleteAgentProfile)

	protected.Get("/agent/reservations", auth.RequireAgent(), cfg.Reservations.Mine)
	reservations := protected.Group("/reservations")
	reservations.Get("", auth.RequireAdminPermission(auth.PermReservationsView), cfg.Reservations.ListByAgent)
	reservations.Get("/:id", cfg.Reservations.Get)
	reservations.Post("/:id/status", cfg.Reservations.UpdateStatus)
	reservations.Post("/:id/notes", cfg.Reservations.AddNote)

	hist := protected.Group("/history")
	hist.Get("/recent", cfg.History.Recent)
	hist.Get("/user/:userId", cfg.History.ForUser)
	hist.Get("/:model/:id", cfg.History.ForDocument)
}
