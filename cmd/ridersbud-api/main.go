package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/sasetin42/RidersBUD-sub003/api/swagger"
	"github.com/sasetin42/RidersBUD-sub003/internal/handler"
	"github.com/sasetin42/RidersBUD-sub003/internal/middleware"
	"github.com/sasetin42/RidersBUD-sub003/internal/models"
	"github.com/sasetin42/RidersBUD-sub003/internal/repository"
	"github.com/sasetin42/RidersBUD-sub003/internal/router"
	"github.com/sasetin42/RidersBUD-sub003/internal/service"
	"github.com/sasetin42/RidersBUD-sub003/internal/store"
	"github.com/sasetin42/RidersBUD-sub003/internal/websocket"
	"github.com/sasetin42/RidersBUD-sub003/pkg/cache"
	"github.com/sasetin42/RidersBUD-sub003/pkg/config"
	"github.com/sasetin42/RidersBUD-sub003/pkg/database"
	"github.com/sasetin42/RidersBUD-sub003/pkg/logger"
	"github.com/sasetin42/RidersBUD-sub003/pkg/storage"
)

// @title RidersBUD API
// @version 1.0.0
// @description Mobile mechanic booking, mechanic scheduling and parts shop backend.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const exportCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()
	validate := validator.New()
	location := cfg.Location()

	persister, closePersister, err := newPersister(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer closePersister()

	db := store.New(service.NewMeasuredPersister(persister, metrics), logr.Named("store"))
	var seed func() *models.Database
	if cfg.Storage.Seed {
		seed = store.Seed
	}
	if err := db.Load(ctx, seed); err != nil {
		return fmt.Errorf("load database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Availability.CacheEnabled || cfg.Sync.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close() //nolint:errcheck
	}

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, service.CacheConfig{
		Enabled: cfg.Availability.CacheEnabled,
		TTL:     cfg.Availability.CacheTTL,
	}, logr)

	hub := websocket.NewHub(cfg.CORS.AllowedOrigins, logr.Named("ws"), metrics.SetRealtimeClients)
	go hub.Run(ctx)

	notifications := service.NewNotificationService(hub, service.NotificationConfig{
		Workers: cfg.Notifications.Workers,
		Retries: cfg.Notifications.Retries,
	}, logr.Named("notifications"))
	notifications.Start(ctx)
	defer notifications.Stop()

	availability := service.NewAvailabilityService(cfg.Booking.SlotPolicy, logr)
	matching := service.NewMatchingService(db, availability, cacheSvc, validate, location, logr)
	bookings := service.NewBookingService(db, availability, notifications, metrics, validate, location, logr)

	db.Subscribe(notifications.StoreChanged)
	db.Subscribe(func(store.Change) { matching.InvalidateCache(context.Background()) })
	if cfg.Sync.Enabled && redisClient != nil {
		startSync(ctx, cfg, db, redisClient, logr)
	}

	auth := service.NewAuthService(db, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "ridersbud",
	})

	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	imageFiles, err := storage.NewLocalStorage(filepath.Join(cfg.Uploads.Dir, "bookings"))
	if err != nil {
		return err
	}
	exportFiles, err := storage.NewLocalStorage(filepath.Join(cfg.Uploads.Dir, "exports"))
	if err != nil {
		return err
	}
	images := service.NewBookingImageService(db, imageFiles, signer, cfg.Uploads.MaxFileSize, cfg.APIPrefix, logr)
	exports := service.NewExportService(db, exportFiles, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr, nil, nil)
	go cleanupExports(ctx, exports, logr)

	engine := router.New(router.Options{
		Env:            cfg.Env,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Uploads.MaxFileSize,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         auth,
		BookingLimiter: middleware.NewRateLimiter(cfg.Booking.RateLimitPerMin, cfg.Booking.RateLimitBurst, logr),
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(auth),
		Availability: handler.NewAvailabilityHandler(matching),
		Mechanics:    handler.NewMechanicHandler(service.NewMechanicService(db, validate, logr)),
		Bookings:     handler.NewBookingHandler(bookings),
		Images:       handler.NewBookingImageHandler(images),
		Exports:      handler.NewExportHandler(exports),
		Catalog:      handler.NewCatalogHandler(service.NewCatalogService(db, validate, logr)),
		Customers:    handler.NewCustomerHandler(service.NewCustomerService(db, validate, logr)),
		Orders:       handler.NewOrderHandler(service.NewOrderService(db, validate, logr)),
		Admin:        handler.NewAdminHandler(service.NewAdminService(db, validate, logr)),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(db, cacheSvc, location, logr, service.DashboardServiceConfig{})),
		Realtime:     handler.NewRealtimeHandler(hub, logr),
		Health:       handler.NewHealthHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newPersister(ctx context.Context, cfg *config.Config, logr *zap.Logger) (store.Persister, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return store.NewMemoryPersister(), noop, nil
	case config.StoragePostgres:
		conn, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		repo := repository.NewPostgresSnapshotRepository(conn, cfg.Storage.Key)
		if err := repo.EnsureSchema(ctx); err != nil {
			conn.Close() //nolint:errcheck
			return nil, noop, err
		}
		return repo, func() { _ = conn.Close() }, nil
	default:
		logr.Info("using file storage", zap.String("path", cfg.Storage.FilePath))
		return repository.NewFileSnapshotRepository(cfg.Storage.FilePath), noop, nil
	}
}

// startSync publishes local commits to Redis and reloads when another instance commits.
func startSync(ctx context.Context, cfg *config.Config, db *store.Store, client *redis.Client, logr *zap.Logger) {
	notifier := repository.NewRedisSnapshotNotifier(client, cfg.Storage.Key, uuid.NewString(), logr.Named("sync"))
	db.Subscribe(func(change store.Change) {
		if change.Source != store.SourceLocal {
			return
		}
		if err := notifier.Publish(context.Background(), change.Version); err != nil {
			logr.Warn("snapshot publish failed", zap.Int64("version", change.Version), zap.Error(err))
		}
	})
	go func() {
		err := notifier.Listen(ctx, func(version int64) {
			if version <= db.Version() {
				return
			}
			if err := db.Refresh(ctx); err != nil {
				logr.Warn("snapshot refresh failed", zap.Int64("version", version), zap.Error(err))
			}
		})
		if err != nil {
			logr.Error("snapshot listener stopped", zap.Error(err))
		}
	}()
}

func cleanupExports(ctx context.Context, exports *service.ExportService, logr *zap.Logger) {
	ticker := time.NewTicker(exportCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
