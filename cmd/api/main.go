package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-triage/internal/api/http"
	"github.com/spec-kit/ticket-triage/internal/api/http/handlers"
	"github.com/spec-kit/ticket-triage/internal/classification"
	"github.com/spec-kit/ticket-triage/internal/config"
	"github.com/spec-kit/ticket-triage/internal/events"
	"github.com/spec-kit/ticket-triage/internal/observability"
	"github.com/spec-kit/ticket-triage/internal/persistence"
	"github.com/spec-kit/ticket-triage/internal/service"
	"github.com/spec-kit/ticket-triage/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.App, cfg.Tracing)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	store, err := persistence.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer store.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := worker.NewNotificationWorker(service.NewNotificationService(logger), logger.Named("notifications"), 0)
	notifications.Start(dispatcher)

	if !cfg.Classifier.Configured() {
		logger.Warn("classifier credential not configured; suggestions will be empty",
			zap.String("provider", cfg.Classifier.Provider))
	}
	gateway, err := classification.NewFromConfig(
		cfg.Classifier,
		classification.NewRedisCache(redis.ClientHandle(), cfg.Classifier.CacheTTL()),
		logger.Named("classifier"),
		metrics,
	)
	if err != nil {
		logger.Fatal("failed to build classifier", zap.Error(err))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: store.Tickets,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		Classifier: gateway,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{Reader: store.Tickets})

	refresher, err := worker.NewStatsRefresher(statsService, metrics, logger.Named("stats"), cfg.Stats.RefreshSchedule)
	if err != nil {
		logger.Fatal("failed to schedule stats refresh", zap.Error(err))
	}
	refresher.Start()

	deps := map[string]handlers.Pinger{store.Driver(): store}
	if redis != nil {
		deps["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Tickets: handlers.NewTicketsHandler(ticketService),
		Triage:  handlers.NewTriageHandler(triageService, statsService),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	_ = app.ShutdownWithContext(shutdownCtx)
	refresher.Stop(shutdownCtx)
	if err := notifications.Stop(shutdownCtx); err != nil {
		logger.Warn("notification drain", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
