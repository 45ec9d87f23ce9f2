package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appbillpay "github.com/Daniel159642/pos-sub005/internal/application/billpay"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/cache"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/config"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/event"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/logger"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/persistence/tenant"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/storage"
	"github.com/Daniel159642/pos-sub005/internal/infrastructure/telemetry"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/handler"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/middleware"
	"github.com/Daniel159642/pos-sub005/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/Daniel159642/pos-sub005/docs"
)

const version = "1.0.0"

//	@title			Bill Payment API
//	@version		1.0
//	@description	Vendor bill payment allocation, validation and lifecycle API
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/Daniel159642/pos-sub005

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	log := logger.New(logCfg)

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// OTLP log export is opt-in on top of tracing
	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
		log = telemetry.NewBridgedLogger(log, otelCore)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting bill payment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", tracerProvider.IsEnabled()),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:              cfg.Profiling.Enabled,
		ServerAddress:        cfg.Profiling.ServerAddress,
		ApplicationName:      cfg.Profiling.ApplicationName,
		BasicAuthUser:        cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:    cfg.Profiling.BasicAuthPassword,
		ProfileTypes:         cfg.Profiling.ProfileTypes,
		MutexProfileFraction: cfg.Profiling.MutexProfileFraction,
		BlockProfileRate:     cfg.Profiling.BlockProfileRate,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := tenant.RegisterGuard(db.DB, tenant.Config{}); err != nil {
		log.Fatal("Failed to register tenant guard", zap.Error(err))
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	billRepo := persistence.NewGormBillRepository(db.DB)
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	paymentRepo := persistence.NewGormBillPaymentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	stores, err := cache.NewStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStores()
	if err != nil {
		log.Fatal("Failed to create cache stores", zap.Error(err))
	}

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	httpMetrics, err := telemetry.NewHTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	paymentMetrics, err := telemetry.NewBillPaymentMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create bill payment metrics", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	invalidator := appbillpay.NewOutstandingBillsInvalidator(stores.Outstanding, log)
	metricsHandler := appbillpay.NewPaymentMetricsHandler(paymentMetrics)
	eventBus.Subscribe(invalidator, invalidator.EventTypes()...)
	eventBus.Subscribe(metricsHandler, metricsHandler.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	log.Info("Event handlers registered",
		zap.Strings("outstanding_bills_invalidator", invalidator.EventTypes()),
		zap.Strings("payment_metrics", metricsHandler.EventTypes()),
	)

	service := appbillpay.NewBillPaymentService(billRepo, vendorRepo, accountRepo, paymentRepo, txScope,
		settingsFrom(cfg.BillPay))
	service.SetEventPublisher(eventBus)
	service.SetOutstandingBillsCache(stores.Outstanding)
	service.SetIdempotencyStore(stores.Idempotency)
	service.SetMetrics(paymentMetrics)

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3CheckArchive(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to create check archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare check archive bucket", zap.Error(err))
		}
		service.SetCheckArchive(archive)
		log.Info("Check archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(cfg, router.EngineDeps{Logger: log, HTTPMetrics: httpMetrics})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	engine.GET("/health", systemHandler.Health)

	r := router.NewAPIRouter(engine, cfg)
	r.Register(handler.NewBillPaymentHandler(service))
	r.Register(router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		log.Error("Error closing cache stores", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// settingsFrom fills unset values from the service defaults
func settingsFrom(cfg config.BillPayConfig) appbillpay.Settings {
	s := appbillpay.DefaultSettings()
	s.PayablesAccountCode = cfg.PayablesAccountCode
	if cfg.VendorPaymentsLimit > 0 {
		s.VendorPaymentsLimit = cfg.VendorPaymentsLimit
	}
	if cfg.DefaultPageSize > 0 {
		s.DefaultPageSize = cfg.DefaultPageSize
	}
	if cfg.MaxPageSize > 0 {
		s.MaxPageSize = cfg.MaxPageSize
	}
	if cfg.OutstandingCacheTTL > 0 {
		s.OutstandingCacheTTL = cfg.OutstandingCacheTTL
	}
	if cfg.IdempotencyTTL > 0 {
		s.IdempotencyTTL = cfg.IdempotencyTTL
	}
	return s
}
