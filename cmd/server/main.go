package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appintegration "github.com/crmconsole/backend/internal/application/integration"
	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/crmconsole/backend/internal/infrastructure/auth"
	"github.com/crmconsole/backend/internal/infrastructure/cache"
	"github.com/crmconsole/backend/internal/infrastructure/config"
	"github.com/crmconsole/backend/internal/infrastructure/crypto"
	"github.com/crmconsole/backend/internal/infrastructure/logger"
	"github.com/crmconsole/backend/internal/infrastructure/persistence"
	"github.com/crmconsole/backend/internal/infrastructure/salesforce"
	"github.com/crmconsole/backend/internal/infrastructure/telemetry"
	"github.com/crmconsole/backend/internal/interfaces/http/handler"
	"github.com/crmconsole/backend/internal/interfaces/http/router"
	"github.com/crmconsole/backend/internal/interfaces/widget"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			CRM Integration Console API
//	@version		1.0
//	@description	Salesforce credentials and field mappings per record type

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const slowQueryThreshold = 200 * time.Millisecond

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

	log.Info("Starting CRM integration console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "tracer provider", tp.Shutdown)

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "meter provider", mp.Shutdown)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), slowQueryThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}
	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: dbSystem,
	}, log); err != nil {
		return err
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	var sealer persistence.Sealer
	if cfg.Crypto.SecretKey != "" {
		box, err := crypto.NewSecretBox(cfg.Crypto.SecretKey)
		if err != nil {
			return err
		}
		sealer = box
	} else {
		log.Warn("crypto.secret_key not set, integration secrets are stored unsealed")
	}

	// Repositories
	settingsRepo := persistence.NewGormSettingsRepository(db.DB, sealer)
	mappingRepo := persistence.NewGormMappingRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)

	// Change bus and field cache
	components := cache.Build(ctx, cfg.Redis, cfg.Salesforce.CacheTTL, log)
	defer func() {
		if err := components.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	var notifier appintegration.ChangeNotifier = components.Local
	if components.Redis != nil {
		notifier = components.Redis
		go func() {
			if err := components.Redis.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Redis change bus stopped", zap.Error(err))
			}
		}()
	}

	metrics, err := telemetry.NewIntegrationMetrics(mp.Meter(serviceName))
	if err != nil {
		return err
	}

	sf := salesforce.NewClient(cfg.Salesforce, log,
		salesforce.WithFieldCache(components.FieldCache),
		salesforce.WithDescribeRecorder(metrics),
	)

	// Application services
	settingsService := appintegration.NewSettingsService(settingsRepo, log)
	mappingService := appintegration.NewMappingService(mappingRepo, log,
		appintegration.WithChangeNotifier(notifier),
		appintegration.WithMappingMetrics(metrics),
	)
	catalogService := appintegration.NewCatalogService(settingsService, sf, integration.DefaultModelRegistry, log)
	roleService := appintegration.NewRoleService(roleRepo)

	// Handlers
	integrationHandler := handler.NewIntegrationHandler(settingsService, mappingService, catalogService, roleService)
	eventsHandler := handler.NewMappingEventsHandler(components.Local, log, handler.WithHeartbeat(cfg.HTTP.SSEHeartbeat))
	eventsHandler.Start()
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, map[string]handler.Pinger{
		"database": db,
	})

	loader, err := widget.NewLoader(cfg.Widget)
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine, err := router.NewEngine(router.Dependencies{
		Logger:      log,
		JWT:         auth.NewJWTService(cfg.JWT),
		HTTP:        cfg.HTTP,
		ServiceName: serviceName,
		Tracing:     tp.IsEnabled(),
		Meter:       mp.Meter(serviceName),
		Integration: integrationHandler,
		Events:      eventsHandler,
		System:      systemHandler,
		Public:      []router.RouteRegistrar{loader},
	})
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

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		eventsHandler.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	// Open event streams would hold Shutdown until its deadline.
	eventsHandler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
