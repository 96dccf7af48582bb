package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apikeyapp "github.com/shopfront/backend/internal/application/apikey"
	catalogapp "github.com/shopfront/backend/internal/application/catalog"
	cmsapp "github.com/shopfront/backend/internal/application/cms"
	favoriteapp "github.com/shopfront/backend/internal/application/favorite"
	i18napp "github.com/shopfront/backend/internal/application/i18n"
	identityapp "github.com/shopfront/backend/internal/application/identity"
	mediaapp "github.com/shopfront/backend/internal/application/media"
	orderapp "github.com/shopfront/backend/internal/application/order"
	reviewapp "github.com/shopfront/backend/internal/application/review"
	themeapp "github.com/shopfront/backend/internal/application/theme"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/crypto"
	"github.com/shopfront/backend/internal/infrastructure/event"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/printing"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// app holds the wired services and the resources that need closing
type app struct {
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	bus       *event.InMemoryEventBus
	jobs      *scheduler.Scheduler
	handlers  router.Handlers
	closers   []func(context.Context) error
	logger    *zap.Logger
}

func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return cache.NewRedisClient(ctx, cfg.Redis)
}

func buildApp(ctx context.Context, cfg *config.Config, db *persistence.Database, redisClient *redis.Client, log *zap.Logger) (*app, error) {
	a := &app{logger: log}

	var store cache.Cache = cache.Noop{}
	a.blacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		a.blacklist = auth.NewRedisTokenBlacklist(redisClient)
		if cfg.Cache.Enabled {
			store = cache.NewRedisCache(redisClient)
		}
	} else if cfg.Cache.Enabled {
		mem := cache.NewMemoryCache(time.Minute)
		a.closers = append(a.closers, func(context.Context) error { return mem.Close() })
		store = mem
	}
	a.jwt = auth.NewJWTService(cfg.JWT)

	objects, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	sealer, err := crypto.NewAESGCM(cfg.Encryption.MasterKey, crypto.WithIterations(cfg.Encryption.Iterations))
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	var busOpts []event.Option
	if cfg.App.IsProduction() {
		busOpts = append(busOpts, event.WithAsyncWorkers(4, 256))
	}
	a.bus = event.NewInMemoryEventBus(log, busOpts...)
	a.closers = append(a.closers, a.bus.Stop)

	adminRepo := persistence.NewGormAdminUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	languageRepo := persistence.NewGormLanguageRepository(db.DB)
	translationRepo := persistence.NewGormTranslationRepository(db.DB)
	mediaRepo := persistence.NewGormMediaRepository(db.DB)

	authCfg := identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockoutDuration,
		RevocationTTL:    cfg.JWT.RefreshTokenExpiration,
	}
	authService := identityapp.NewAuthService(adminRepo, a.jwt, a.blacklist, authCfg, log)
	customerService := identityapp.NewCustomerService(customerRepo, a.jwt, a.blacklist, a.bus, log)
	userService := identityapp.NewUserService(adminRepo, a.blacklist, authCfg, a.bus, log)

	productService := catalogapp.NewProductService(productRepo, a.bus, log)

	var invoices orderapp.InvoiceRenderer
	if cfg.Printing.Enabled {
		renderer := printing.NewChromedpRenderer(cfg.Printing, log)
		a.closers = append(a.closers, func(context.Context) error { return renderer.Close() })
		invoices = printing.NewInvoicePrinter(renderer, cfg.Printing)
	}
	orderService := orderapp.NewOrderService(orderRepo, persistence.NewGormTransactionScope(db.DB), invoices,
		orderapp.Pricing{
			ShippingFee:      cfg.Pricing.ShippingFee,
			FreeShippingOver: cfg.Pricing.FreeShippingOver,
			TaxRate:          cfg.Pricing.TaxRate,
		}, a.bus, log)

	apiKeyService := apikeyapp.NewService(persistence.NewGormAPIKeyRepository(db.DB), sealer, a.bus, log)
	languageService := i18napp.NewLanguageService(languageRepo, translationRepo,
		persistence.NewGormI18nTransactionScope(db.DB), store, log)
	translationService := i18napp.NewTranslationService(translationRepo, languageRepo, store, cfg.Cache.TranslationTTL, log)
	themeService := themeapp.NewService(persistence.NewGormThemeRepository(db.DB), store, cfg.Cache.ThemeTTL, log)
	pageService := cmsapp.NewPageService(persistence.NewGormPageRepository(db.DB), languageRepo, store, cfg.Cache.PageTTL, a.bus, log)

	mediaCfg := mediaapp.DefaultServiceConfig()
	if cfg.Storage.PresignExpiry > 0 {
		mediaCfg.UploadURLExpiry = cfg.Storage.PresignExpiry
	}
	mediaService := mediaapp.NewService(mediaRepo, objects, mediaCfg, log)

	reviewService := reviewapp.NewService(reviewRepo, productRepo, orderRepo, a.bus, log)
	a.bus.Subscribe(reviewapp.NewRatingProjector(reviewRepo, productService, log))
	favoriteService := favoriteapp.NewService(persistence.NewGormFavoriteRepository(db.DB), productRepo, log)

	if cfg.Scheduler.Enabled {
		a.jobs = scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout}, log)
		err := a.jobs.Register(scheduler.Job{
			Name:     "media-pending-cleanup",
			Schedule: cfg.Scheduler.MediaCleanupSchedule,
			Run: func(ctx context.Context) error {
				purged, err := mediaService.PurgePendingUploads(ctx)
				if purged > 0 {
					log.Info("Purged abandoned uploads", zap.Int("count", purged))
				}
				return err
			},
		})
		if err != nil {
			return nil, fmt.Errorf("register media cleanup: %w", err)
		}
		a.closers = append(a.closers, a.jobs.Stop)
	}

	a.handlers = router.Handlers{
		AdminAuth:    handler.NewAdminAuthHandler(authService),
		CustomerAuth: handler.NewCustomerAuthHandler(customerService),
		User:         handler.NewUserHandler(userService),
		Product:      handler.NewProductHandler(productService),
		Order:        handler.NewOrderHandler(orderService, customerService),
		APIKey:       handler.NewAPIKeyHandler(apiKeyService),
		Language:     handler.NewLanguageHandler(languageService),
		Translation:  handler.NewTranslationHandler(translationService),
		Theme:        handler.NewThemeHandler(themeService),
		Media:        handler.NewMediaHandler(mediaService),
		Page:         handler.NewPageHandler(pageService, languageService),
		Review:       handler.NewReviewHandler(reviewService, customerService),
		Favorite:     handler.NewFavoriteHandler(favoriteService),
	}
	return a, nil
}

func newObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (mediaapp.ObjectStorage, error) {
	if cfg.Storage.Driver != "s3" {
		log.Warn("Using in-memory object storage; uploads are lost on restart")
		return storage.NewMemoryObjectStorage(cfg.App.BaseURL + "/media"), nil
	}
	opts := []storage.S3ObjectStorageOption{storage.WithLogger(log)}
	if cfg.Storage.PresignExpiry > 0 {
		opts = append(opts, storage.WithPresignExpiration(cfg.Storage.PresignExpiry))
	}
	s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, opts...)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage bucket: %w", err)
	}
	return s3, nil
}

// Close releases resources in reverse order of creation
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("Error during shutdown", zap.Error(err))
		}
	}
}
