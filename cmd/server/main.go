package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/ratelimit"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	configPath := os.Getenv("SHOP_CONFIG_FILE")
	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	cfg := watcher.Config()

	log, level, err := logger.NewWithLevel(&logger.Config{
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

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
		LinkProfiles:      cfg.Telemetry.ProfilingEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServer,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingPass,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", zap.Error(err))
	} else {
		defer func() { _ = profiler.Stop() }()
	}

	log.Info("Starting shop backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:   log,
		LogLevel: cfg.Log.Level,
		Tracing: telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metrics, err := telemetry.NewMetrics(providers.Meter("shop"))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	app, err := buildApp(ctx, cfg, db, redisClient, log)
	if err != nil {
		log.Fatal("Failed to wire services", zap.Error(err))
	}
	defer app.Close(context.Background())

	if err := app.bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	if app.jobs != nil {
		app.jobs.Start()
	}

	// Limits follow config reloads; the store is fixed at startup.
	limiterStore, stopStore := newLimiterStore(cfg, redisClient)
	defer stopStore()
	apiLimiter, err := ratelimit.NewLimiter(limiterStore, "api", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	if err != nil {
		log.Fatal("Invalid API rate limit", zap.Error(err))
	}
	authLimiter, err := ratelimit.NewLimiter(limiterStore, "auth", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	if err != nil {
		log.Fatal("Invalid sign-in rate limit", zap.Error(err))
	}

	watcher.OnChange(func(old, updated *config.Config) {
		if old.Log.Level != updated.Log.Level {
			if err := logger.SetLevel(level, updated.Log.Level); err != nil {
				log.Warn("Ignoring log level change", zap.Error(err))
			} else {
				log.Info("Log level changed", zap.String("level", updated.Log.Level))
			}
		}
		if err := apiLimiter.Configure(updated.HTTP.RateLimitRequests, updated.HTTP.RateLimitWindow); err != nil {
			log.Warn("Ignoring API rate limit change", zap.Error(err))
		}
		if err := authLimiter.Configure(updated.HTTP.AuthRateLimitRequests, updated.HTTP.AuthRateLimitWindow); err != nil {
			log.Warn("Ignoring sign-in rate limit change", zap.Error(err))
		}
	})
	watcher.OnError(func(err error) {
		log.Warn("Config reload failed, keeping previous settings", zap.Error(err))
	})
	if watcher.Start() {
		log.Info("Watching config file", zap.String("file", watcher.ConfigFile()))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	uploadRoute := middleware.RouteKey(http.MethodPost, r.APIPath(router.MediaUploadPath))

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     providers.TracingEnabled(),
		}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(metrics),
		middleware.Profiling(),
		middleware.Secure(cfg.HTTP),
		middleware.CORS(cfg.HTTP),
		middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			MaxBytes: cfg.HTTP.MaxBodySize,
			Routes:   map[string]int64{uploadRoute: cfg.HTTP.UploadMaxBodySize},
		}),
		middleware.Timeout(cfg.HTTP.WriteTimeout),
	)

	system := handler.NewSystemHandler(cfg.App.Name, version, healthChecks(db, redisClient))
	engine.GET("/health", system.Health)

	jwtService := app.jwt
	guards := router.Guards{
		Admin:            middleware.JWTAuthMiddlewareWithConfig(middleware.AdminJWTConfig(jwtService, app.blacklist, log)),
		Customer:         middleware.JWTAuthMiddlewareWithConfig(middleware.CustomerJWTConfig(jwtService, app.blacklist, log)),
		OptionalCustomer: middleware.OptionalJWTAuthMiddleware(jwtService, auth.ScopeCustomer),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthRateLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: authLimiter,
			Scope:   "auth",
			KeyFunc: middleware.IPKey,
			Metrics: metrics,
			Logger:  log,
		})
	}

	if cfg.HTTP.RateLimitEnabled {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: apiLimiter,
			Scope:   "api",
			KeyFunc: middleware.ClientKey,
			Metrics: metrics,
			Logger:  log,
		}))
	}
	r.Register(router.AdminRoutes(app.handlers, guards)).
		Register(router.StoreRoutes(app.handlers, guards)).
		Register(router.NewDomainGroup("system", "/system").
			GET("/info", system.GetSystemInfo))
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
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// connectRedis returns nil when Redis is unreachable outside production; the
// cache, token blacklist and rate limiter then fall back to process memory.
func connectRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) *redis.Client {
	client, err := newRedisClient(ctx, cfg)
	if err == nil {
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		return client
	}
	if cfg.App.IsProduction() {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
	return nil
}

func newLimiterStore(cfg *config.Config, client *redis.Client) (ratelimit.Store, func()) {
	if cfg.HTTP.RateLimitStore == "redis" && client != nil {
		return ratelimit.NewRedisStore(client), func() {}
	}
	store := ratelimit.NewMemoryStore(time.Minute, 10*time.Minute)
	return store, store.Stop
}

func healthChecks(db *persistence.Database, client *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
