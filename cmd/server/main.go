package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pricingapp "github.com/erp/pricing/internal/application/pricing"
	settlementapp "github.com/erp/pricing/internal/application/settlement"
	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/cache"
	"github.com/erp/pricing/internal/infrastructure/config"
	"github.com/erp/pricing/internal/infrastructure/event"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/infrastructure/migration"
	"github.com/erp/pricing/internal/infrastructure/persistence"
	"github.com/erp/pricing/internal/infrastructure/telemetry"
	"github.com/erp/pricing/internal/interfaces/http/handler"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/erp/pricing/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Telemetry comes first so the database and HTTP layers can be instrumented
	provider, err := telemetry.New(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.ExportInterval,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, provider.LogCore())
	}))
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting pricing service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Driver == "sqlite" {
		if err := migrateSQLite(db, log); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
	}

	dbMetrics, err := telemetry.InstrumentDB(db.DB, provider, log)
	if err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Caches
	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStores()
	if err != nil {
		log.Fatal("Failed to create cache stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cache stores", zap.Error(err))
		}
	}()

	idemConfig := shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL}

	// Event bus with a deduplicated audit trail
	eventBus := event.NewInMemoryEventBus(log, event.WithErrorHook(func(eventType string, err error) {
		log.Warn("Event handler failed", zap.String("event_type", eventType), zap.Error(err))
	}))
	audit := event.NewIdempotentHandler(event.NewAuditLogHandler(log), stores.Idempotency, idemConfig, log)
	eventBus.Subscribe(audit, audit.EventTypes()...)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	metrics, err := telemetry.NewPricingMetrics(provider.Meter("pos.pricing"))
	if err != nil {
		log.Fatal("Failed to create pricing metrics", zap.Error(err))
	}

	// Application services
	currencies, err := cfg.Pricing.Currencies()
	if err != nil {
		log.Fatal("Invalid pricing currencies", zap.Error(err))
	}
	engine, err := pricing.NewEngine(cfg.Pricing.RoundingPrecision())
	if err != nil {
		log.Fatal("Invalid pricing precision", zap.Error(err))
	}

	modifierService := pricingapp.NewModifierService(pricingapp.ModifierServiceConfig{
		Repository:        persistence.NewGormModifierRepository(db.DB),
		Cache:             stores.Modifiers,
		EnabledCurrencies: currencies,
		EventPublisher:    eventBus,
		Logger:            log,
	})
	quoteService := pricingapp.NewQuoteService(pricingapp.QuoteServiceConfig{
		Engine:            engine,
		Modifiers:         modifierService,
		EnabledCurrencies: currencies,
		Metrics:           metrics,
		Logger:            log,
	})
	settlementService := settlementapp.NewService(settlementapp.ServiceConfig{
		Pricer:            quoteService,
		Repository:        persistence.NewGormSettlementRepository(db.DB),
		IdempotencyStore:  stores.Idempotency,
		IdempotencyConfig: &idemConfig,
		Locker:            cache.NewStoreLocker(stores.Idempotency, 30*time.Second),
		EventPublisher:    eventBus,
		Metrics:           metrics,
		Logger:            log,
	})

	// HTTP
	httpMetrics, err := middleware.HTTPMetrics(provider.Meter("pos.http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	tenant := middleware.DefaultTenantConfig()
	tenant.Required = cfg.App.Env == "production"
	tenant.Logger = log

	tracing := middleware.DefaultTracingConfig()
	tracing.ServiceName = cfg.Telemetry.ServiceName
	tracing.TracerProvider = provider.TracerProvider()
	tracing.Enabled = provider.IsEnabled()

	ginEngine, err := router.NewEngine(router.EngineConfig{
		Logger:         log,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tenant:         tenant,
		Tracing:        tracing,
		Metrics:        httpMetrics,
	}, router.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": db.Ping,
			"cache":    stores.Ping,
		}, 2*time.Second),
		System:      handler.NewSystemHandler(cfg.App.Name, version),
		Pricing:     handler.NewPricingHandler(quoteService),
		Modifiers:   handler.NewModifierHandler(modifierService),
		Settlements: handler.NewSettlementHandler(settlementService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("cache", stores.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := provider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully", zap.Any("event_dedup", audit.Stats()))
}

// migrateSQLite brings a local development database up to date on startup.
// Postgres schemas are managed with cmd/migrate.
func migrateSQLite(db *persistence.Database, log *zap.Logger) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, "sqlite", log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection
	return m.Up()
}
