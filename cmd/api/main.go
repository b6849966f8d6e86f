package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contratos_backend/internal/contracts"
	"contratos_backend/internal/crm"
	"contratos_backend/internal/events"
	apphttp "contratos_backend/internal/http"
	"contratos_backend/internal/http/router"
	"contratos_backend/internal/notification"
	"contratos_backend/internal/sales"
	salesdomain "contratos_backend/internal/sales/domain"
	"contratos_backend/internal/scheduler"
	"contratos_backend/internal/stats"
	"contratos_backend/internal/tombstones"
	tombstonesvc "contratos_backend/internal/tombstones/service"
	"contratos_backend/migrations"
	"contratos_backend/platform/config"
	"contratos_backend/platform/db"
	"contratos_backend/platform/logger"
	"contratos_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	classifier, err := loadClassifier(cfg)
	if err != nil {
		log.Error("failed to load status rules", "error", err, "path", cfg.GetStatusRulesPath())
		panic("failed to load status rules: " + err.Error())
	}

	crmClient := crm.NewClient(cfg, log)

	syncEnqueuer, closeEnqueuer := initSyncEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	tombstonesModule := tombstones.NewModule(pool, eventBus, syncEnqueuer, val, log)
	salesModule := sales.NewModule(pool, crmClient, tombstonesModule.Service(), classifier, eventBus, val, log)
	contractsModule := contracts.NewModule(pool, crmClient, eventBus, val, log)
	statsModule := stats.NewModule(salesModule.Service(), val)

	// Late wiring breaks the sales<->tombstones and sales<->contracts cycles:
	// both sides only see small interfaces.
	tombstonesModule.Service().SetRecordSource(salesModule.Service())
	contractsModule.Service().SetRecordSetProvider(salesModule.Service())

	salesModule.RegisterHandlers(eventBus)

	// Notification module subscribes to domain events (not HTTP-facing)
	var sender notification.ContractEmailSender
	if cfg.GetEmailEnabled() {
		sender = notification.NewSMTPSender(cfg)
	} else {
		log.Warn("EMAIL_ENABLED is false; contract emails disabled")
	}
	notificationModule := notification.NewModule(sender, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			salesModule,
			tombstonesModule,
			contractsModule,
			statsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func loadClassifier(cfg config.ClassifierConfig) (salesdomain.Classifier, error) {
	path := cfg.GetStatusRulesPath()
	if path == "" {
		return salesdomain.NewClassifier(), nil
	}
	return salesdomain.NewClassifierFromYAML(path)
}

func initSyncEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (tombstonesvc.SyncEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; CRM delete sync disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
