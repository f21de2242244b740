package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/outlet-ops/internal/api/http"
	"github.com/spec-kit/outlet-ops/internal/api/http/handlers"
	"github.com/spec-kit/outlet-ops/internal/auth"
	"github.com/spec-kit/outlet-ops/internal/cache"
	"github.com/spec-kit/outlet-ops/internal/completion"
	"github.com/spec-kit/outlet-ops/internal/config"
	"github.com/spec-kit/outlet-ops/internal/events"
	"github.com/spec-kit/outlet-ops/internal/notify"
	"github.com/spec-kit/outlet-ops/internal/observability"
	"github.com/spec-kit/outlet-ops/internal/persistence"
	"github.com/spec-kit/outlet-ops/internal/repository"
	"github.com/spec-kit/outlet-ops/internal/routing"
	"github.com/spec-kit/outlet-ops/internal/service"
	"github.com/spec-kit/outlet-ops/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	rules, err := routing.NewRuleTable(cfg.Routing.Rules)
	if err != nil {
		logger.Fatal("invalid routing rule table", zap.Error(err))
	}

	loc, err := cfg.Checklist.Location()
	if err != nil {
		logger.Fatal("invalid reporting timezone", zap.Error(err))
	}
	whitelist := make([]completion.OutletRef, 0, len(cfg.Checklist.Outlets))
	for _, outlet := range cfg.Checklist.Outlets {
		whitelist = append(whitelist, completion.OutletRef{
			Code: outlet.Code,
			Name: outlet.Name,
			Type: outlet.Type,
		})
	}
	engine, err := completion.NewEngine(cfg.Checklist.Slots, whitelist, loc)
	if err != nil {
		logger.Fatal("invalid checklist configuration", zap.Error(err))
	}

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	rosterRepo := repository.NewRosterRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.RegisterEventLoggers(dispatcher, logger)
	notifier := notify.NewWebhookNotifier(cfg.Notification, logger)
	snapshotCache := cache.NewCompletionCache(redis.Client, cfg.Checklist.CacheTTL())

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		HistoryRepo:  historyRepo,
		EmployeeRepo: employeeRepo,
		Rules:        rules,
		Notifier:     notifier,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	completionService := service.NewCompletionService(service.CompletionDependencies{
		SubmissionRepo: submissionRepo,
		RosterRepo:     rosterRepo,
		Engine:         engine,
		Cache:          snapshotCache,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Location:       loc,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		StaffRepo:  staffRepo,
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Completion:     handlers.NewCompletionHandler(completionService),
		Reports:        handlers.NewReportsHandler(completionService),
		Staff:          handlers.NewStaffHandler(authService),
		Intake:         handlers.NewIntakeHandler(ticketService, completionService),
		AuthMiddleware: authMiddleware,
		IntakeToken:    cfg.Intake.Token,
	})

	refreshWorker := worker.NewRefreshWorker(completionService, cfg.Checklist.RefreshInterval(), logger)
	go refreshWorker.Run(ctx)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
