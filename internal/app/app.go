package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/callcenter-service/internal/api/http"
	"github.com/spec-kit/callcenter-service/internal/api/http/handlers"
	"github.com/spec-kit/callcenter-service/internal/auth"
	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/history"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/persistence"
	"github.com/spec-kit/callcenter-service/internal/queue"
	"github.com/spec-kit/callcenter-service/internal/repository"
	"github.com/spec-kit/callcenter-service/internal/service"
	"github.com/spec-kit/callcenter-service/internal/worker"
)

// App holds the wired HTTP server and the resources it owns.
type App struct {
	Fiber   *fiber.App
	Metrics *observability.Metrics

	logger    *zap.Logger
	postgres  *persistence.Postgres
	redis     *persistence.Redis
	publisher *events.NATSPublisher
}

// New connects the backing services named in cfg and wires every layer.
// Without POSTGRES_DSN the in-memory store is used.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger, Metrics: observability.NewMetrics()}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.postgres = pg

	var store repository.DocumentStore
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				a.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		store = repository.NewPostgresStore(pool)
	} else {
		store = repository.NewMemoryStore()
	}

	a.redis = persistence.NewRedis(ctx, cfg.Redis, logger)
	var statusCache repository.StatusCache
	if a.redis != nil {
		statusCache = repository.NewRedisStatusCache(a.redis.Client, cfg.Redis.StatusCacheTTL(), logger)
	}

	location, err := cfg.Queue.Location()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("queue timezone: %w", err)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	if cfg.NATS.URL != "" {
		a.publisher, err = events.NewNATSPublisher(ctx, cfg.NATS.URL, cfg.NATS.Stream, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	notificationService := service.NewNotificationService(dispatcher, logger, a.Metrics)
	worker.StartNotificationWorker(notificationService, a.publisher, dispatcher)

	engine := history.NewEngine(history.EngineDependencies{
		Store:           store,
		Dispatcher:      dispatcher,
		Logger:          logger,
		CaptureMetadata: cfg.History.CaptureMetadata,
	})

	contactRepo := repository.NewContactRepository(store)
	statusRepo := repository.NewStatusRepository(store, statusCache)
	userRepo := repository.NewUserRepository(store)
	roleRepo := repository.NewRoleRepository(store)
	profileRepo := repository.NewAgentProfileRepository(store)
	reservationRepo := repository.NewReservationRepository(store)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo, Engine: engine, Logger: logger})
	statusService := service.NewStatusService(service.StatusDependencies{
		StatusRepo:  statusRepo,
		ContactRepo: contactRepo,
		Engine:      engine,
		Logger:      logger,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:         userRepo,
		RoleRepo:         roleRepo,
		AgentProfileRepo: profileRepo,
		Engine:           engine,
		BcryptCost:       cfg.Auth.BcryptCost,
		Logger:           logger,
	})
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo:      contactRepo,
		StatusRepo:       statusRepo,
		UserRepo:         userRepo,
		AgentProfileRepo: profileRepo,
		Engine:           engine,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ContactRepo: contactRepo,
		UserRepo:    userRepo,
		Engine:      engine,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	reservationService := service.NewReservationService(service.ReservationDependencies{
		ReservationRepo: reservationRepo,
		Engine:          engine,
	})
	historyReader := history.NewReader(store)
	historyService := service.NewHistoryService(historyReader)
	queueService := service.NewQueueService(service.QueueDependencies{
		ContactRepo: contactRepo,
		StatusRepo:  statusRepo,
		Selector:    queue.NewSelector(nil),
		History:     historyReader,
		Location:    location,
		Metrics:     a.Metrics,
		Logger:      logger,
	})

	if cfg.Seed.OnStart {
		if _, err := statusService.SeedDefaults(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed statuses: %w", err)
		}
		if _, created, err := userService.SeedAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			a.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		} else if created {
			logger.Info("seeded admin user", zap.String("email", cfg.Seed.AdminEmail))
		}
	}

	a.Fiber = fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(a.Fiber, logger, a.Metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(a.Fiber, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, a.redis),
		Auth:           handlers.NewAuthHandler(authService),
		Contacts:       handlers.NewContactsHandler(contactService, assignmentService),
		Statuses:       handlers.NewStatusesHandler(statusService),
		Queue:          handlers.NewQueueHandler(queueService),
		Reservations:   handlers.NewReservationsHandler(reservationService),
		History:        handlers.NewHistoryHandler(historyService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo, roleRepo),
		Registry:       a.Metrics.Registry,
	})
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	a.publisher.Close()
	a.redis.Close()
	a.postgres.Close()
}
