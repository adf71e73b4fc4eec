package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corebank/backend/internal/application/accountingday"
	"github.com/corebank/backend/internal/application/cashops"
	ceilingapp "github.com/corebank/backend/internal/application/ceiling"
	postingapp "github.com/corebank/backend/internal/application/posting"
	tellerapp "github.com/corebank/backend/internal/application/teller"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/infrastructure/auth"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/directory"
	"github.com/corebank/backend/internal/infrastructure/event"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/corebank/backend/internal/interfaces/http/handler"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/corebank/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const apiVersion = "v1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry
	otelCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, otelCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Config:         otelCfg,
		ExportInterval: cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logsCfg := otelCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.Profiling.ApplicationName,
		ProfileTypes:    cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	log.Info("Starting custody backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := openDatabase(cfg, meter, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	custodyMetrics, err := telemetry.NewCustodyMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create custody metrics", zap.Error(err))
	}

	// Posting and denominations
	rules, err := ruleTable(cfg.Posting.Rules)
	if err != nil {
		log.Fatal("Invalid posting rules", zap.Error(err))
	}
	journal := posting.NewLedger(rules)
	engine := posting.NewEngine()
	denominations, err := cash.NewLedger(cfg.Cash.FaceValues)
	if err != nil {
		log.Fatal("Invalid face value table", zap.Error(err))
	}

	locker, idempotency, closeShared, err := sharedState(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize shared state", zap.Error(err))
	}
	log.Info("Key locker ready", zap.String("backend", cfg.Lock.Backend))

	repos := persistence.NewRepositories(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	branches := directory.NewGormBranchDirectory(db.DB)
	customers := directory.NewGormCustomerDirectory(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log, 10*time.Second)
	eventBus.Subscribe(cashops.NewNotificationHandler(customers, directory.NewLogNotifier(log), log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	postingService := postingapp.NewService(repos, journal, log)
	if _, err := postingService.EnsureScheme(ctx, schemeRequest(cfg.Posting.DefaultScheme)); err != nil {
		log.Fatal("Failed to seed default commission scheme", zap.Error(err))
	}
	dayService := accountingday.NewService(repos, txScope, locker, branches, eventBus, custodyMetrics, log)
	tellerService := tellerapp.NewService(repos, txScope, locker, log)
	ceilingService := ceilingapp.NewService(repos, txScope, locker, denominations, engine, journal, eventBus, custodyMetrics, log)
	cashService := cashops.NewService(cashops.Config{
		Repositories:  repos,
		TxScope:       txScope,
		Locker:        locker,
		Customers:     customers,
		Denominations: denominations,
		Engine:        engine,
		Journal:       journal,
		Events:        eventBus,
		Metrics:       custodyMetrics,
		Logger:        log,
		DefaultScheme: cfg.Posting.DefaultScheme.Code,
	})

	var jwtService *auth.JWTService
	if cfg.Auth.Enabled {
		jwtService = auth.NewJWTService(cfg.Auth)
	} else {
		log.Warn("Authentication disabled, trusting X-User-ID and X-Branch-ID headers")
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	httpEngine := gin.New()
	if err := httpEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	httpMetrics, err := middleware.HTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	httpEngine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled),
		middleware.TraceRequestID(),
		logger.GinMiddleware(log, "/health", "/ready"),
		httpMetrics,
		middleware.Secure(cfg.App.Env == "production"),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, db)
	httpEngine.GET("/health", systemHandler.Health)
	httpEngine.GET("/ready", systemHandler.Ready)
	httpEngine.GET("/api/"+apiVersion+"/system/info", systemHandler.GetSystemInfo)

	r := router.NewRouter(httpEngine,
		router.WithAPIVersion(apiVersion),
		router.WithMiddleware(middleware.Authenticate(middleware.AuthConfig{JWTService: jwtService, Logger: log})),
	)
	groups := router.CustodyGroups(router.Handlers{
		Days:    handler.NewDayHandler(dayService),
		Tellers: handler.NewTellerHandler(tellerService),
		Ceiling: handler.NewCeilingHandler(ceilingService),
		Cash:    handler.NewCashHandler(cashService, handler.WithIdempotency(idempotency, cfg.Cash.IdempotencyTTL)),
		Posting: handler.NewPostingHandler(postingService),
	}, middleware.RequireRole(cfg.Auth.Enabled, router.SupervisorRole))
	for _, g := range groups {
		r.Register(g)
	}
	routes := r.Setup()
	for _, rt := range routes {
		log.Debug("Route mounted", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
	}
	log.Info("Routes registered", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := closeShared(); err != nil {
		log.Error("Error closing shared state", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = loggerProvider.Shutdown(shutdownCtx)
	_ = profiler.Stop()

	log.Info("Server exited gracefully")
	_ = log.Sync()
}

// openDatabase connects, migrates sqlite in place and installs the
// metrics and tracing plugins. Postgres schemas come from cmd/migrate.
func openDatabase(cfg *config.Config, meter metric.Meter, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.SQLLevel),
		logger.WithSlowThreshold(cfg.Telemetry.SlowQueryThreshold),
		logger.WithRedactedParams(!cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.DB.AutoMigrate(models.All()...); err != nil {
			return nil, err
		}
	}

	dbMetrics, err := telemetry.NewDBMetricsPlugin(meter, cfg.Telemetry.SlowQueryThreshold, log)
	if err != nil {
		return nil, err
	}
	if err := db.DB.Use(dbMetrics); err != nil {
		return nil, err
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
		DBSystem:           dbSystem,
	}, log)
	if err := tracing.Register(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
