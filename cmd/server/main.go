package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	applending "github.com/fieldcredit/backend/internal/application/lending"
	apptreasury "github.com/fieldcredit/backend/internal/application/treasury"
	"github.com/fieldcredit/backend/internal/domain/shared"
	"github.com/fieldcredit/backend/internal/infrastructure/auth"
	"github.com/fieldcredit/backend/internal/infrastructure/cache"
	"github.com/fieldcredit/backend/internal/infrastructure/config"
	"github.com/fieldcredit/backend/internal/infrastructure/event"
	"github.com/fieldcredit/backend/internal/infrastructure/logger"
	"github.com/fieldcredit/backend/internal/infrastructure/persistence"
	"github.com/fieldcredit/backend/internal/infrastructure/scheduler"
	"github.com/fieldcredit/backend/internal/infrastructure/telemetry"
	"github.com/fieldcredit/backend/internal/interfaces/http/handler"
	"github.com/fieldcredit/backend/internal/interfaces/http/middleware"
	"github.com/fieldcredit/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("Starting fieldcredit backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down meter provider", zap.Error(err))
		}
	}()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Warn("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if log, err = lp.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)); err != nil {
		return err
	}

	ledgerMetrics, err := telemetry.NewLedgerMetrics(mp.Meter("fieldcredit/ledger"))
	if err != nil {
		return err
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentGorm(db.DB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to instrument database tracing", zap.Error(err))
		}
	}
	switch schema, dirty, err := db.SchemaVersion(ctx); {
	case err != nil:
		return fmt.Errorf("check schema (run `migrate up` first): %w", err)
	case dirty:
		return fmt.Errorf("schema version %d is dirty, fix it with `migrate force`", schema)
	default:
		log.Info("Database connected", zap.Uint("schema_version", schema))
	}

	idempotencyStore, redisClient := cache.NewIdempotencyStore(ctx, cfg.Redis, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Event bus with an audit trail; redelivered events are logged once
	eventBus := event.NewInMemoryEventBus(log)
	audit := event.NewDedupHandler(event.NewAuditLogHandler(log), idempotencyStore, event.DefaultDedupTTL, log)
	eventBus.Subscribe(audit, audit.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	// Lending context
	loanRepo := persistence.NewGormLoanAccountRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	lendingScope := persistence.NewGormLendingTransactionScope(db.DB)

	loanService := applending.NewLoanService(lendingScope, loanRepo, paymentRepo)
	loanService.SetEventPublisher(eventBus)
	paymentService := applending.NewPaymentService(lendingScope)
	paymentService.SetEventPublisher(eventBus)
	paymentService.SetMetrics(ledgerMetrics)
	overdueService := applending.NewOverdueService(loanRepo)

	// Treasury context
	treasuryRepos := persistence.TreasuryRepositories(db.DB)
	cashBoxRegistry := apptreasury.NewCashBoxRegistry(treasuryRepos)
	cashBoxRegistry.SetEventPublisher(eventBus)
	transferService := apptreasury.NewTransferService(persistence.NewGormTreasuryTransactionScope(db.DB), treasuryRepos.Transfers)
	transferService.SetEventPublisher(eventBus)
	transferService.SetMetrics(ledgerMetrics)
	ledgerService := apptreasury.NewLedgerService(treasuryRepos.LedgerTransactions)
	balanceService := apptreasury.NewCollectorBalanceService(treasuryRepos.CollectorLedger, treasuryRepos.Directory)

	if created, err := cashBoxRegistry.EnsureAllRouteCashBoxes(ctx); err != nil {
		log.Warn("Route cash box backfill failed", zap.Error(err))
	} else if created > 0 {
		log.Info("Route cash boxes provisioned", zap.Int("created", created))
	}

	// Overdue sweep, coordinated through Redis when it is available
	var locker scheduler.Locker = scheduler.NewLocalLocker()
	if redisClient != nil {
		locker = scheduler.NewRedisLocker(redisClient)
	}
	sweeper, err := scheduler.NewOverdueSweepScheduler(overdueService, locker, cfg.Scheduler, log)
	if err != nil {
		return err
	}
	sweeper.SetMetrics(ledgerMetrics)
	if cfg.Scheduler.Enabled {
		if err := sweeper.Start(); err != nil {
			return err
		}
		log.Info("Overdue sweep scheduled",
			zap.String("schedule", cfg.Scheduler.OverdueCronSchedule),
			zap.Time("next_run", sweeper.NextRun()))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			log.Warn("Overdue sweep did not stop cleanly", zap.Error(err))
		}
	}()

	checks := map[string]handler.HealthChecker{"database": db}
	if redisClient != nil {
		checks["redis"] = redisHealth{client: redisClient}
	}
	handlers := router.Handlers{
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		Loans:     handler.NewLoanHandler(loanService, paymentService, sweeper),
		CashBoxes: handler.NewCashBoxHandler(cashBoxRegistry),
		Transfers: handler.NewTransferHandler(transferService),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Collector: handler.NewCollectorHandler(balanceService),
	}

	engine, err := newEngine(cfg, log, handlers, idempotencyStore)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// newEngine assembles the middleware chain and the routes
func newEngine(cfg *config.Config, log *zap.Logger, h router.Handlers, store shared.IdempotencyStore) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodyBytes),
		middleware.Timeout(cfg.HTTP.RequestTimeout),
	)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.SpanEnricher())
	}

	engine.GET("/health", h.System.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		Verifier: auth.NewJWTService(cfg.JWT),
		SkipPaths: []string{
			r.BasePath() + "/system/ping",
			r.BasePath() + "/system/info",
		},
		Logger: log,
	}))

	idempotent := middleware.Idempotency(store, cfg.HTTP.IdempotencyTTL)
	lendingRoutes := router.LendingRoutes(h, idempotent)
	treasuryRoutes := router.TreasuryRoutes(h, idempotent)
	systemRoutes := router.SystemRoutes(h)

	r.Register(lendingRoutes, systemRoutes)
	for _, g := range treasuryRoutes {
		r.Register(g)
	}
	r.Setup()

	for _, g := range append([]*router.DomainGroup{lendingRoutes, systemRoutes}, treasuryRoutes...) {
		log.Debug("Routes registered",
			zap.String("group", g.Name()),
			zap.Int("routes", len(g.Routes())))
	}
	return engine, nil
}

// redisHealth adapts the Redis client to handler.HealthChecker
type redisHealth struct {
	client *redis.Client
}

func (r redisHealth) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
